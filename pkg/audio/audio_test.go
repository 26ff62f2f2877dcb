package audio

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyScalarsClamps(t *testing.T) {
	p := NewPeakData([]float64{-0.5, 0.25, 1.5}, time.Time{})
	p.ApplyScalars(PCRemote)
	assert.Equal(t, []float64{0, 0.25, 1}, p.Bands)
}

func TestApplyScalarsMicrophoneBoostsTreble(t *testing.T) {
	p := NewPeakData([]float64{0.2, 0.2, 0.2}, time.Time{})
	p.ApplyScalars(Microphone)
	assert.InDelta(t, 0.2, p.Bands[0], 1e-9)
	assert.InDelta(t, 0.3, p.Bands[1], 1e-9)
	assert.InDelta(t, 0.4, p.Bands[2], 1e-9)
}

func TestNewPeakDataCopies(t *testing.T) {
	src := []float64{0.1, 0.2}
	p := NewPeakData(src, time.Time{})
	src[0] = 0.9
	assert.Equal(t, 0.1, p.Bands[0])
}

func TestAnalyzerVURisesFastFallsSlow(t *testing.T) {
	a := NewAnalyzer()
	a.SetPeakData(NewPeakData([]float64{1, 1}, time.Unix(1, 0)))
	assert.Equal(t, 1.0, a.Snapshot().VU)

	a.SetPeakData(NewPeakData([]float64{0, 0}, time.Unix(2, 0)))
	snap := a.Snapshot()
	assert.InDelta(t, 0.9, snap.VU, 1e-9)
	assert.Equal(t, 1.0, snap.PeakVU)
	assert.Equal(t, uint64(2), snap.Frames)
	assert.Equal(t, 2, snap.Bands)
	assert.InDelta(t, 0.9, a.VURatio(), 1e-9)
}

func TestAnalyzerPeaksIsACopy(t *testing.T) {
	a := NewAnalyzer()
	a.SetPeakData(NewPeakData([]float64{0.5}, time.Time{}))
	p := a.Peaks()
	p.Bands[0] = 0
	assert.Equal(t, 0.5, a.Peaks().Bands[0])
}

type recordingSink struct{ got []PeakData }

func (r *recordingSink) SetPeakData(p PeakData) { r.got = append(r.got, p) }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, b}.SetPeakData(NewPeakData([]float64{0.3}, time.Time{}))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "0,50,99\n", string(FormatLine([]float64{0, 0.5, 1.2})))
	assert.Equal(t, "\n", string(FormatLine(nil)))
}

type syncBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSerialSinkWritesLatestFrame(t *testing.T) {
	port := &syncBuffer{}
	sink := NewSerialSink(port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sink.Run(ctx) }()

	sink.SetPeakData(NewPeakData([]float64{1, 0}, time.Time{}))
	require.Eventually(t, func() bool {
		return port.String() == "99,0\n"
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	port.mu.Lock()
	assert.True(t, port.closed)
	port.mu.Unlock()

	written, _ := sink.Counts()
	assert.Equal(t, uint64(1), written)
}
