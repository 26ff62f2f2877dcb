package socket

import (
	"context"
	"image/color"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/lightd/pkg/wire"
)

type recorder struct {
	mu      sync.Mutex
	packets [][]byte
}

func (r *recorder) ProcessIncomingData(b []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, append([]byte(nil), b...))
	return true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

func startServer(t *testing.T, status StatusFunc) (*Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := New("127.0.0.1:0", rec, MaxPacketSize(1, 8), status)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, srv.Listening, time.Second, 5*time.Millisecond)
	return srv, rec
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServerFramesPacketsOnStream(t *testing.T) {
	srv, rec := startServer(t, nil)
	conn := dial(t, srv)

	px := []color.RGBA{{R: 1}, {G: 2}}
	// two packets in one write must be split by their headers
	stream := append(wire.EncodePixels(1, time.Unix(1, 0), px), wire.EncodePixels(1, time.Unix(2, 0), px)...)
	_, err := conn.Write(stream)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(len(stream)), srv.Stats().BytesReceived)
}

func TestServerRepliesWithStatus(t *testing.T) {
	srv, _ := startServer(t, func() wire.Response {
		return wire.Response{BufferSize: 30, FPS: 60}
	})
	conn := dial(t, srv)

	_, err := conn.Write(wire.EncodePixels(1, time.Unix(1, 0), nil))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	reply := make([]byte, wire.ResponseSize)
	_, err = io.ReadFull(conn, reply)
	require.NoError(t, err)

	r, ok := wire.DecodeResponse(reply)
	require.True(t, ok)
	assert.Equal(t, uint32(30), r.BufferSize)
	assert.Equal(t, uint32(60), r.FPS)
}

func TestServerDropsSenderOnBadHeader(t *testing.T) {
	srv, rec := startServer(t, nil)
	conn := dial(t, srv)

	bad := wire.EncodePixels(1, time.Time{}, nil)
	bad[0] = 0x42
	_, err := conn.Write(bad)
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, uint64(1), srv.Stats().Dropped)
}

func TestServerDropsOversizedPacket(t *testing.T) {
	srv, rec := startServer(t, nil)
	conn := dial(t, srv)

	_, err := conn.Write(wire.EncodePixels(1, time.Time{}, make([]color.RGBA, 9)))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Equal(t, 0, rec.count())
}

func TestServerAcceptsPeaksLargerThanPixelBound(t *testing.T) {
	srv, rec := startServer(t, nil)
	conn := dial(t, srv)

	// 16 bands is 152 bytes, more than a 1x8 pixel packet.
	peaks := wire.EncodePeaks(time.Unix(1, 0), make([]float64, 16))
	require.Greater(t, len(peaks), MaxPacketSize(1, 8))
	_, err := conn.Write(peaks)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(0), srv.Stats().Dropped)
}

func TestServerDropsOversizedPeakPacket(t *testing.T) {
	srv, rec := startServer(t, nil)
	conn := dial(t, srv)

	_, err := conn.Write(wire.EncodePeaks(time.Unix(1, 0), make([]float64, 65)))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Equal(t, 0, rec.count())
}

func TestRestartRelistens(t *testing.T) {
	srv, _ := startServer(t, nil)
	require.Equal(t, uint64(1), srv.listens.Load())

	srv.Restart()
	require.Eventually(t, func() bool {
		return srv.listens.Load() == 2 && srv.Listening()
	}, time.Second, 5*time.Millisecond)

	conn := dial(t, srv)
	_, err := conn.Write(wire.EncodePixels(1, time.Time{}, nil))
	assert.NoError(t, err)
}
