// Package netreader runs periodic network maintenance jobs ("readers") on
// a single goroutine, sleeping until the next one is due or until one is
// flagged from outside.
package netreader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultFloor is the longest the scheduler sleeps between ticks.
const DefaultFloor = time.Second

// Func is the work a reader does. It runs on the scheduler goroutine; a
// reader that never returns stalls every other reader.
type Func func(ctx context.Context)

// entry fields are individually atomic so Flag and Cancel never wait on a
// running reader.
type entry struct {
	name     string
	fn       atomic.Pointer[Func]
	interval atomic.Int64
	lastRun  atomic.Int64
	flag     atomic.Bool
	canceled atomic.Bool
}

// Scheduler owns the registered readers.
type Scheduler struct {
	regMu   sync.Mutex
	readers atomic.Pointer[[]*entry]
	wake    chan struct{}
	now     func() time.Time
	floor   time.Duration
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithFloor changes the maximum sleep between ticks.
func WithFloor(d time.Duration) Option {
	return func(s *Scheduler) { s.floor = d }
}

// New returns an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:  make(chan struct{}, 1),
		now:   time.Now,
		floor: DefaultFloor,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.readers.Store(&[]*entry{})
	return s
}

func (s *Scheduler) list() []*entry {
	return *s.readers.Load()
}

func (s *Scheduler) at(index int) *entry {
	readers := s.list()
	if index < 0 || index >= len(readers) {
		return nil
	}
	return readers[index]
}

// Register adds a reader and returns its index. A zero interval means the
// reader only runs when flagged. With flag set it runs on the next tick.
func (s *Scheduler) Register(name string, fn Func, interval time.Duration, flag bool) int {
	e := &entry{name: name}
	e.fn.Store(&fn)
	e.interval.Store(int64(interval))
	if interval > 0 {
		e.lastRun.Store(s.now().UnixNano())
	}

	s.regMu.Lock()
	old := s.list()
	readers := make([]*entry, len(old), len(old)+1)
	copy(readers, old)
	readers = append(readers, e)
	s.readers.Store(&readers)
	index := len(readers) - 1
	s.regMu.Unlock()

	log.Debug().Str("reader", name).Dur("interval", interval).Int("index", index).Msg("Registered network reader")

	if flag {
		s.Flag(index)
	}
	return index
}

// Flag asks for the reader to run on the next tick and wakes the
// scheduler. Unknown indices are ignored.
func (s *Scheduler) Flag(index int) {
	e := s.at(index)
	if e == nil {
		return
	}
	e.flag.Store(true)
	s.notify()
}

// Cancel permanently stops a reader. A run already in progress completes.
func (s *Scheduler) Cancel(index int) {
	e := s.at(index)
	if e == nil {
		return
	}
	e.canceled.Store(true)
	e.interval.Store(0)
	e.fn.Store(nil)
}

// SetInterval changes how often a reader runs.
func (s *Scheduler) SetInterval(index int, interval time.Duration) {
	e := s.at(index)
	if e == nil || e.canceled.Load() {
		return
	}
	if e.lastRun.Load() == 0 {
		e.lastRun.Store(s.now().UnixNano())
	}
	e.interval.Store(int64(interval))
	s.notify()
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick flags every reader whose interval has elapsed at now and runs the
// flagged ones. A reader also runs when now and its due time are further
// apart than its interval, which catches a clock that jumped.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	for _, e := range s.list() {
		if e.canceled.Load() {
			continue
		}

		interval := e.interval.Load()
		if interval > 0 {
			target := e.lastRun.Load() + interval
			diff := now.UnixNano() - target
			if diff >= 0 || -diff > interval {
				e.flag.Store(true)
			}
		}

		// Clear before running so a flag raised during the run survives.
		if !e.flag.CompareAndSwap(true, false) {
			continue
		}
		fn := e.fn.Load()
		if fn == nil {
			continue
		}
		(*fn)(ctx)
		e.lastRun.Store(s.now().UnixNano())
	}
}

// NextWait returns how long the scheduler may sleep at now before some
// reader is due.
func (s *Scheduler) NextWait(now time.Time) time.Duration {
	wait := s.floor
	n := now.UnixNano()
	for _, e := range s.list() {
		if e.canceled.Load() {
			continue
		}
		interval := e.interval.Load()
		if interval == 0 {
			continue
		}
		lastRun := e.lastRun.Load()
		if lastRun+interval <= n {
			return 0
		}
		if d := time.Duration(interval - (n - lastRun)); d < wait {
			wait = d
		}
	}
	return wait
}

// Run ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		case <-timer.C:
		}

		s.Tick(ctx, s.now())
		if ctx.Err() != nil {
			return nil
		}

		timer.Reset(s.NextWait(s.now()))
	}
}

// ReaderInfo describes one registered reader.
type ReaderInfo struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	LastRun  time.Time     `json:"last_run,omitempty"`
	Canceled bool          `json:"canceled"`
}

// Readers lists registered readers in index order.
func (s *Scheduler) Readers() []ReaderInfo {
	readers := s.list()
	out := make([]ReaderInfo, len(readers))
	for i, e := range readers {
		out[i] = ReaderInfo{
			Name:     e.name,
			Interval: time.Duration(e.interval.Load()),
			Canceled: e.canceled.Load(),
		}
		if last := e.lastRun.Load(); last != 0 {
			out[i].LastRun = time.Unix(0, last)
		}
	}
	return out
}
