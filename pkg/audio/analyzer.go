package audio

import (
	"sync"
	"time"
)

// DefaultReactivity is how much faster the VU level rises than it falls.
const DefaultReactivity = 10.0

// Analyzer keeps the latest peaks and a smoothed VU level for effects and
// statistics.
type Analyzer struct {
	mu         sync.RWMutex
	peaks      PeakData
	vu         float64
	peakVU     float64
	minVU      float64
	reactivity float64
	frames     uint64
}

// NewAnalyzer returns an Analyzer with no peaks yet.
func NewAnalyzer() *Analyzer {
	return &Analyzer{reactivity: DefaultReactivity, minVU: 1}
}

// SetPeakData stores p and updates the VU level. The level jumps up to a
// louder reading and decays towards a quieter one.
func (a *Analyzer) SetPeakData(p PeakData) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.peaks = NewPeakData(p.Bands, p.Time)
	level := p.Mean()
	if level > a.vu {
		a.vu = level
	} else {
		a.vu += (level - a.vu) / a.reactivity
	}
	if a.vu > a.peakVU {
		a.peakVU = a.vu
	}
	if a.vu < a.minVU {
		a.minVU = a.vu
	}
	a.frames++
}

// Peaks returns a copy of the latest peaks.
func (a *Analyzer) Peaks() PeakData {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return NewPeakData(a.peaks.Bands, a.peaks.Time)
}

// Snapshot is the analyzer state reported by the statistics endpoint.
type Snapshot struct {
	Bands    int       `json:"bands"`
	VU       float64   `json:"vu"`
	PeakVU   float64   `json:"peak_vu"`
	MinVU    float64   `json:"min_vu"`
	Frames   uint64    `json:"frames"`
	LastPeak time.Time `json:"last_peak,omitempty"`
}

// Snapshot returns the current levels.
func (a *Analyzer) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Snapshot{
		Bands:    len(a.peaks.Bands),
		VU:       a.vu,
		PeakVU:   a.peakVU,
		MinVU:    a.minVU,
		Frames:   a.frames,
		LastPeak: a.peaks.Time,
	}
	if a.frames == 0 {
		s.MinVU = 0
	}
	return s
}

// VURatio returns the current level relative to the loudest seen so far.
func (a *Analyzer) VURatio() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.peakVU == 0 {
		return 0
	}
	return a.vu / a.peakVU
}
