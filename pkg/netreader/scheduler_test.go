package netreader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestFlaggedReaderRunsOnNextTick(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	runs := 0
	i := s.Register("once", func(context.Context) { runs++ }, 0, false)

	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 0, runs)

	s.Flag(i)
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 1, runs)

	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 1, runs, "flag is cleared by the run")
}

func TestRegisterWithFlagRunsImmediately(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	runs := 0
	s.Register("ntp", func(context.Context) { runs++ }, time.Minute, true)
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 1, runs)
}

func TestNextDueIsRunCompletionPlusInterval(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now), WithFloor(time.Hour))
	interval := 10 * time.Second

	s.Register("slow", func(context.Context) { clock.Advance(3 * time.Second) }, interval, true)

	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, interval, s.NextWait(clock.Now()))

	clock.Advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, s.NextWait(clock.Now()))

	clock.Advance(6 * time.Second)
	assert.Equal(t, time.Duration(0), s.NextWait(clock.Now()))
}

func TestIntervalElapsedFlagsReader(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	runs := 0
	s.Register("tick", func(context.Context) { runs++ }, 5*time.Second, false)

	clock.Advance(4 * time.Second)
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 0, runs)

	clock.Advance(time.Second)
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 1, runs)
}

func TestClockJumpBackwardsFlagsReader(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	runs := 0
	s.Register("tick", func(context.Context) { runs++ }, 5*time.Second, false)

	s.Tick(context.Background(), clock.Now().Add(-time.Minute))
	assert.Equal(t, 1, runs)
}

func TestCanceledReaderNeverRuns(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now), WithFloor(time.Second))

	runs := 0
	i := s.Register("gone", func(context.Context) { runs++ }, time.Millisecond, false)
	s.Cancel(i)
	s.Cancel(i)
	s.Flag(i)

	clock.Advance(time.Hour)
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 0, runs)
	assert.Equal(t, time.Second, s.NextWait(clock.Now()), "canceled readers do not shorten the sleep")
	assert.True(t, s.Readers()[i].Canceled)
}

func TestNextWaitDefaultsToFloor(t *testing.T) {
	s := New(WithFloor(250 * time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, s.NextWait(time.Now()))

	s.Register("manual", func(context.Context) {}, 0, false)
	assert.Equal(t, 250*time.Millisecond, s.NextWait(time.Now()))
}

func TestFlagDuringRunIsNotLost(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	runs := 0
	var i int
	i = s.Register("reflag", func(context.Context) {
		runs++
		if runs == 1 {
			s.Flag(i)
		}
	}, 0, true)

	s.Tick(context.Background(), clock.Now())
	s.Tick(context.Background(), clock.Now())
	assert.Equal(t, 2, runs)
}

func TestOutOfRangeIndicesIgnored(t *testing.T) {
	s := New()
	assert.NotPanics(t, func() {
		s.Flag(3)
		s.Cancel(-1)
		s.SetInterval(9, time.Second)
	})
}

func TestRunWakesOnFlag(t *testing.T) {
	s := New(WithFloor(time.Hour))

	var runs atomic.Int32
	i := s.Register("wake", func(context.Context) { runs.Add(1) }, 0, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.Flag(i)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
