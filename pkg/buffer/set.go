package buffer

import (
	"sync"
	"time"
)

// Set holds one Manager per channel behind a single mutex, so a packet that
// touches several channels is applied atomically with respect to readers.
type Set struct {
	mu       sync.Mutex
	managers []*Manager
}

// NewSet creates channels managers of leds pixels each, preallocating min
// frames and never exceeding max. now supplies the clock used for ages; nil
// means time.Now.
func NewSet(channels, leds, min, max int, now func() time.Time) *Set {
	if now == nil {
		now = time.Now
	}
	if max < min {
		max = min
	}
	if max < 1 {
		max = 1
	}
	s := &Set{managers: make([]*Manager, channels)}
	for i := range s.managers {
		s.managers[i] = newManager(i, leds, min, max, now)
	}
	return s
}

// Len returns the number of channels.
func (s *Set) Len() int {
	return len(s.managers)
}

// WithLock runs fn with exclusive access to every channel manager.
func (s *Set) WithLock(fn func(managers []*Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.managers)
}

// Apply runs fn for every existing channel selected by mask, holding the
// lock once for the whole call. The first error stops the walk.
func (s *Set) Apply(mask uint16, fn func(m *Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch, m := range s.managers {
		if ch >= 16 || mask&(1<<uint(ch)) == 0 {
			continue
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops queued frames on every channel.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.managers {
		m.Clear()
	}
}

// Stats snapshots all channels.
func (s *Set) Stats() []Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Stats, len(s.managers))
	for i, m := range s.managers {
		out[i] = m.stats()
	}
	return out
}
