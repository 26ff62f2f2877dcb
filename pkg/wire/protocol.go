// Package wire implements the binary packet format LED senders use to push
// pixel frames and audio peaks to the device.
//
// Every packet starts with a 24 byte little-endian header:
//
//	[0:2]   command
//	[2:4]   channel mask (pixel data) or band count (peak data)
//	[4:8]   length
//	[8:16]  capture time, seconds
//	[16:24] capture time, microseconds
//
// followed by RGB triplets for pixel data or float64 magnitudes for peak
// data.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"
)

// HeaderSize is the fixed header length.
const HeaderSize = 24

const (
	CommandPixelData uint16 = 3
	CommandPeakData  uint16 = 4
)

var (
	ErrShortPacket    = errors.New("packet shorter than header and payload")
	ErrUnknownCommand = errors.New("unknown command")
)

// Header is the decoded fixed part of a packet.
type Header struct {
	Command uint16
	// Selector is the channel mask for pixel data and the band count for
	// peak data.
	Selector uint16
	Length   uint32
	Seconds  uint64
	Micros   uint64
}

// ParseHeader decodes the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	return Header{
		Command:  binary.LittleEndian.Uint16(b[0:2]),
		Selector: binary.LittleEndian.Uint16(b[2:4]),
		Length:   binary.LittleEndian.Uint32(b[4:8]),
		Seconds:  binary.LittleEndian.Uint64(b[8:16]),
		Micros:   binary.LittleEndian.Uint64(b[16:24]),
	}, nil
}

func (h Header) put(b []byte) {
	binary.LittleEndian.PutUint16(b[0:2], h.Command)
	binary.LittleEndian.PutUint16(b[2:4], h.Selector)
	binary.LittleEndian.PutUint32(b[4:8], h.Length)
	binary.LittleEndian.PutUint64(b[8:16], h.Seconds)
	binary.LittleEndian.PutUint64(b[16:24], h.Micros)
}

// ChannelMask returns the pixel channel mask. A zero mask comes from
// senders that addressed channel numbers and only knew channel 0, so it
// means channel 0.
func (h Header) ChannelMask() uint16 {
	if h.Selector == 0 {
		return 1
	}
	return h.Selector
}

// Bands returns the number of peaks in a peak data packet.
func (h Header) Bands() int {
	return int(h.Selector)
}

// Time returns the capture time.
func (h Header) Time() time.Time {
	return time.Unix(int64(h.Seconds), int64(h.Micros)*int64(time.Microsecond))
}

// PayloadSize returns the payload length the header announces.
func (h Header) PayloadSize() (int, error) {
	switch h.Command {
	case CommandPixelData:
		return int(h.Length) * 3, nil
	case CommandPeakData:
		return h.Bands() * 8, nil
	default:
		return 0, fmt.Errorf("%w: 0x%x", ErrUnknownCommand, h.Command)
	}
}

// ExpectedSize returns the full packet length announced by a header, for
// framing packets on a stream.
func ExpectedSize(header []byte) (int, error) {
	h, err := ParseHeader(header)
	if err != nil {
		return 0, err
	}
	n, err := h.PayloadSize()
	if err != nil {
		return 0, err
	}
	return HeaderSize + n, nil
}

// Packet is a decoded packet. Payload aliases the input buffer.
type Packet struct {
	Header
	Payload []byte
}

// Decode parses b. Trailing bytes beyond the announced payload are ignored.
func Decode(b []byte) (Packet, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Packet{}, err
	}
	n, err := h.PayloadSize()
	if err != nil {
		return Packet{}, err
	}
	if len(b)-HeaderSize < n {
		return Packet{}, fmt.Errorf("%w: want %d payload bytes, have %d", ErrShortPacket, n, len(b)-HeaderSize)
	}
	return Packet{Header: h, Payload: b[HeaderSize : HeaderSize+n]}, nil
}

// Peaks decodes the float64 magnitudes of a peak data packet.
func (p Packet) Peaks() []float64 {
	peaks := make([]float64, len(p.Payload)/8)
	for i := range peaks {
		peaks[i] = math.Float64frombits(binary.LittleEndian.Uint64(p.Payload[i*8:]))
	}
	return peaks
}

// EncodePixels builds a pixel data packet for the channels in mask.
func EncodePixels(mask uint16, t time.Time, pixels []color.RGBA) []byte {
	b := make([]byte, HeaderSize+len(pixels)*3)
	seconds, micros := split(t)
	Header{
		Command:  CommandPixelData,
		Selector: mask,
		Length:   uint32(len(pixels)),
		Seconds:  seconds,
		Micros:   micros,
	}.put(b)
	for i, c := range pixels {
		o := HeaderSize + i*3
		b[o], b[o+1], b[o+2] = c.R, c.G, c.B
	}
	return b
}

// EncodePeaks builds a peak data packet.
func EncodePeaks(t time.Time, peaks []float64) []byte {
	b := make([]byte, HeaderSize+len(peaks)*8)
	seconds, micros := split(t)
	Header{
		Command:  CommandPeakData,
		Selector: uint16(len(peaks)),
		Length:   uint32(len(peaks) * 8),
		Seconds:  seconds,
		Micros:   micros,
	}.put(b)
	for i, v := range peaks {
		binary.LittleEndian.PutUint64(b[HeaderSize+i*8:], math.Float64bits(v))
	}
	return b
}

func split(t time.Time) (seconds, micros uint64) {
	if t.IsZero() {
		return 0, 0
	}
	return uint64(t.Unix()), uint64(t.Nanosecond() / int(time.Microsecond))
}
