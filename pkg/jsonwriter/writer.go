// Package jsonwriter coalesces persistence requests so that bursts of
// configuration changes produce one write per registered writer.
package jsonwriter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrCritical marks a writer failure that must stop the process.
var ErrCritical = errors.New("critical persistence failure")

// DefaultDelay is the coalescing window used when none is configured.
const DefaultDelay = time.Second

// WriteFunc persists one piece of state.
type WriteFunc func(ctx context.Context) error

type entry struct {
	name    string
	fn      WriteFunc
	pending atomic.Bool
}

// Writer runs flagged WriteFuncs at most once per coalescing window.
type Writer struct {
	mu      sync.RWMutex
	entries []*entry

	delay  time.Duration
	wake   chan struct{}
	halted atomic.Bool

	// runMu serializes flushes between Run and FlushWrites.
	runMu sync.Mutex
}

// New creates a Writer with the given coalescing window.
func New(delay time.Duration) *Writer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Writer{
		delay: delay,
		wake:  make(chan struct{}, 1),
	}
}

// RegisterWriter adds fn and returns the index used to flag it.
func (w *Writer) RegisterWriter(name string, fn WriteFunc) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, &entry{name: name, fn: fn})
	return len(w.entries) - 1
}

// FlagWriter marks the writer at index as dirty. Unknown indices are ignored.
func (w *Writer) FlagWriter(index int) {
	if w.halted.Load() {
		return
	}

	w.mu.RLock()
	if index < 0 || index >= len(w.entries) {
		w.mu.RUnlock()
		return
	}
	w.entries[index].pending.Store(true)
	w.mu.RUnlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether the writer at index is waiting to run.
func (w *Writer) Pending(index int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if index < 0 || index >= len(w.entries) {
		return false
	}
	return w.entries[index].pending.Load()
}

// FlushWrites runs every pending writer now. With halt set, later flags are
// ignored; this is used before a reset or shutdown.
func (w *Writer) FlushWrites(ctx context.Context, halt bool) error {
	if halt {
		w.halted.Store(true)
	}
	return w.flush(ctx)
}

// Run waits for flags and flushes after each coalescing window. It returns
// when ctx is done, after a final flush, or when a writer reports ErrCritical.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			// Final flush on a fresh context so shutdown does not lose changes.
			return w.flush(context.WithoutCancel(ctx))
		case <-w.wake:
		}

		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return w.flush(context.WithoutCancel(ctx))
		case <-timer.C:
		}

		if err := w.flush(ctx); err != nil {
			return err
		}
	}
}

func (w *Writer) flush(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.RLock()
	entries := append([]*entry(nil), w.entries...)
	w.mu.RUnlock()

	for _, e := range entries {
		// Clear before running so a flag raised during the write is kept.
		if !e.pending.CompareAndSwap(true, false) {
			continue
		}

		if err := e.fn(ctx); err != nil {
			if errors.Is(err, ErrCritical) {
				log.Error().Err(err).Str("writer", e.name).Msg("Critical persistence failure")
				return fmt.Errorf("writer %s: %w", e.name, err)
			}
			log.Warn().Err(err).Str("writer", e.name).Msg("Persistence write failed")
			continue
		}
		log.Debug().Str("writer", e.name).Msg("Persisted")
	}

	return nil
}
