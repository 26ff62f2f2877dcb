// Package buffer keeps a bounded, time-ordered pool of color frames per LED
// channel for data that arrives over the network.
package buffer

import (
	"image/color"
	"time"
)

// Manager owns the frame pool of one channel. Frames are kept in a ring in
// arrival order, oldest first. Manager is not safe for concurrent use on
// its own; all access goes through Set.WithLock.
type Manager struct {
	channel int
	leds    int
	min     int
	max     int
	now     func() time.Time

	pool  []*Frame
	head  int
	count int
}

func newManager(channel, leds, min, max int, now func() time.Time) *Manager {
	m := &Manager{channel: channel, leds: leds, min: min, max: max, now: now}
	m.pool = make([]*Frame, 0, max)
	for i := 0; i < min; i++ {
		m.pool = append(m.pool, m.newFrame())
	}
	return m
}

func (m *Manager) newFrame() *Frame {
	return &Frame{Channel: m.channel, Pixels: make([]color.RGBA, m.leds)}
}

func (m *Manager) Channel() int     { return m.channel }
func (m *Manager) LEDCount() int    { return m.leds }
func (m *Manager) Depth() int       { return m.count }
func (m *Manager) BufferCount() int { return len(m.pool) }
func (m *Manager) MaxBuffers() int  { return m.max }
func (m *Manager) IsEmpty() bool    { return m.count == 0 }

// GetNewBuffer hands out the next slot at the newest end of the ring. The
// pool grows up to the configured maximum; once there, the oldest frame is
// recycled. The returned frame is unpopulated with an empty timestamp.
func (m *Manager) GetNewBuffer() *Frame {
	var slot int
	switch {
	case m.count < len(m.pool):
		slot = (m.head + m.count) % len(m.pool)
		m.count++
	case len(m.pool) < m.max:
		// Insert right after the newest frame, which in a full ring sits
		// just before head.
		slot = m.head
		m.pool = append(m.pool, nil)
		copy(m.pool[slot+1:], m.pool[slot:])
		m.pool[slot] = m.newFrame()
		m.head = (m.head + 1) % len(m.pool)
		m.count++
	default:
		slot = m.head
		m.head = (m.head + 1) % len(m.pool)
	}

	f := m.pool[slot]
	f.reset()
	return f
}

// PeekNewestBuffer returns the most recently handed out frame, or nil.
func (m *Manager) PeekNewestBuffer() *Frame {
	if m.count == 0 {
		return nil
	}
	return m.pool[(m.head+m.count-1)%len(m.pool)]
}

// PeekOldestBuffer returns the oldest frame still queued, or nil.
func (m *Manager) PeekOldestBuffer() *Frame {
	if m.count == 0 {
		return nil
	}
	return m.pool[m.head]
}

// GetOldestBuffer removes and returns the oldest queued frame, or nil. The
// frame stays owned by the pool and is only valid until the next
// GetNewBuffer call.
func (m *Manager) GetOldestBuffer() *Frame {
	if m.count == 0 {
		return nil
	}
	f := m.pool[m.head]
	m.head = (m.head + 1) % len(m.pool)
	m.count--
	return f
}

// AgeOfNewestBuffer returns how far the newest frame's capture time lies in
// the past. ok is false when nothing is queued.
func (m *Manager) AgeOfNewestBuffer() (age time.Duration, ok bool) {
	f := m.PeekNewestBuffer()
	if f == nil {
		return 0, false
	}
	return f.Age(m.now()), true
}

// AgeOfOldestBuffer is AgeOfNewestBuffer for the oldest queued frame.
func (m *Manager) AgeOfOldestBuffer() (age time.Duration, ok bool) {
	f := m.PeekOldestBuffer()
	if f == nil {
		return 0, false
	}
	return f.Age(m.now()), true
}

// Clear drops every queued frame without shrinking the pool.
func (m *Manager) Clear() {
	m.head = 0
	m.count = 0
}

// Stats is a point-in-time view of one channel's pool.
type Stats struct {
	Channel     int   `json:"channel"`
	Depth       int   `json:"depth"`
	BufferCount int   `json:"buffer_count"`
	MaxBuffers  int   `json:"max_buffers"`
	NewestAgeMs int64 `json:"newest_age_ms,omitempty"`
}

func (m *Manager) stats() Stats {
	s := Stats{Channel: m.channel, Depth: m.count, BufferCount: len(m.pool), MaxBuffers: m.max}
	if age, ok := m.AgeOfNewestBuffer(); ok {
		s.NewestAgeMs = age.Milliseconds()
	}
	return s
}
