package buffer

import (
	"errors"
	"image/color"
	"time"
)

// ErrShortPixelData indicates fewer RGB bytes than the pixel count claims.
var ErrShortPixelData = errors.New("pixel data shorter than pixel count")

// Frame is one timestamped color snapshot for a channel.
type Frame struct {
	Channel int
	Seconds uint64
	Micros  uint64
	Pixels  []color.RGBA

	populated bool
}

// Time returns the capture time carried by the frame.
func (f *Frame) Time() time.Time {
	return time.Unix(int64(f.Seconds), int64(f.Micros)*int64(time.Microsecond))
}

// HasTimestamp reports whether the frame carries a capture time.
func (f *Frame) HasTimestamp() bool {
	return f.Seconds != 0 || f.Micros != 0
}

// SameTime reports whether the frame was captured at exactly seconds/micros.
func (f *Frame) SameTime(seconds, micros uint64) bool {
	return f.Seconds == seconds && f.Micros == micros
}

// Populated reports whether pixel data has been written since the slot was
// last handed out.
func (f *Frame) Populated() bool {
	return f.populated
}

// Age returns now minus the capture time.
func (f *Frame) Age(now time.Time) time.Duration {
	return now.Sub(f.Time())
}

// Update stores count RGB triplets from rgb with the given capture time.
// Pixels beyond the channel length are dropped; missing pixels keep their
// previous value.
func (f *Frame) Update(seconds, micros uint64, count int, rgb []byte) error {
	if len(rgb) < count*3 {
		return ErrShortPixelData
	}
	if count > len(f.Pixels) {
		count = len(f.Pixels)
	}
	for i := 0; i < count; i++ {
		f.Pixels[i] = color.RGBA{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2], A: 0xFF}
	}
	f.Seconds = seconds
	f.Micros = micros
	f.populated = true
	return nil
}

func (f *Frame) reset() {
	f.Seconds = 0
	f.Micros = 0
	f.populated = false
}
