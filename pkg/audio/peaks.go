// Package audio receives spectrum peak data and fans it out to the
// analyzer and to optional consumers such as a serial display.
package audio

import (
	"math"
	"time"
)

// MaxBands is the widest spectrum accepted from the network.
const MaxBands = 64

// Source identifies where a set of peaks was measured, which decides the
// per-band scaling applied before use.
type Source int

const (
	// Microphone peaks come from a local ADC and favour the low end.
	Microphone Source = iota
	// PCRemote peaks were computed by a sender on the network and are
	// already normalised.
	PCRemote
)

// PeakData holds one magnitude per band in the range [0, 1].
type PeakData struct {
	Bands []float64
	Time  time.Time
}

// NewPeakData copies bands into a PeakData stamped with t.
func NewPeakData(bands []float64, t time.Time) PeakData {
	p := PeakData{Bands: make([]float64, len(bands)), Time: t}
	copy(p.Bands, bands)
	return p
}

// ApplyScalars scales every band for the given source and clamps the
// result to [0, 1].
func (p PeakData) ApplyScalars(src Source) {
	for i, v := range p.Bands {
		v *= scalar(src, i, len(p.Bands))
		switch {
		case v < 0 || math.IsNaN(v):
			v = 0
		case v > 1:
			v = 1
		}
		p.Bands[i] = v
	}
}

// scalar tapers microphone bands from 1.0 at the bottom of the spectrum to
// 2.0 at the top, since the treble reads weak on small mics.
func scalar(src Source, band, bands int) float64 {
	if src == PCRemote || bands < 2 {
		return 1.0
	}
	return 1.0 + float64(band)/float64(bands-1)
}

// Mean returns the average band magnitude, or 0 without bands.
func (p PeakData) Mean() float64 {
	if len(p.Bands) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Bands {
		sum += v
	}
	return sum / float64(len(p.Bands))
}

// PeakSink consumes decoded peaks. Implementations must not block.
type PeakSink interface {
	SetPeakData(p PeakData)
}

// MultiSink forwards peaks to every sink in order.
type MultiSink []PeakSink

func (m MultiSink) SetPeakData(p PeakData) {
	for _, s := range m {
		s.SetPeakData(p)
	}
}
