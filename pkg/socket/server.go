// Package socket accepts wire protocol streams from LED senders over TCP.
package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/audio"
	"github.com/urmzd/lightd/pkg/wire"
)

// Processor applies one complete packet.
type Processor interface {
	ProcessIncomingData(b []byte) bool
}

// StatusFunc builds the reply sent after each accepted packet. A nil
// StatusFunc disables replies.
type StatusFunc func() wire.Response

// Server listens on one TCP address. When the listener dies, Serve waits
// for Restart before listening again.
type Server struct {
	addr      string
	proc      Processor
	maxPacket int
	status    StatusFunc

	mu       sync.Mutex
	ln       net.Listener
	conns    map[net.Conn]struct{}
	restart  chan struct{}
	received atomic.Uint64
	packets  atomic.Uint64
	dropped  atomic.Uint64
	listens  atomic.Uint64
}

// New returns a server for addr. maxPacket bounds a single pixel packet,
// header included; peak packets are bounded by MaxPeakPacketSize.
func New(addr string, proc Processor, maxPacket int, status StatusFunc) *Server {
	return &Server{
		addr:      addr,
		proc:      proc,
		maxPacket: maxPacket,
		status:    status,
		conns:     make(map[net.Conn]struct{}),
		restart:   make(chan struct{}, 1),
	}
}

// MaxPeakPacketSize is the largest peak data packet accepted.
const MaxPeakPacketSize = wire.HeaderSize + audio.MaxBands*8

// MaxPacketSize is the largest pixel packet for the given board.
func MaxPacketSize(channels, leds int) int {
	return wire.HeaderSize + channels*leds*3
}

// limit returns the largest packet accepted for the command in header.
func (s *Server) limit(header []byte) int {
	if h, err := wire.ParseHeader(header); err == nil && h.Command == wire.CommandPeakData {
		return MaxPeakPacketSize
	}
	return s.maxPacket
}

// Serve listens and accepts connections until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.closeAll()
	}()

	for {
		if err := s.listenAndAccept(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("addr", s.addr).Msg("Socket server stopped")
		}
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.restart:
			log.Info().Str("addr", s.addr).Msg("Restarting socket server")
		}
	}
}

// Restart closes the current listener, if any, and asks Serve to listen
// again.
func (s *Server) Restart() {
	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Unlock()

	select {
	case s.restart <- struct{}{}:
	default:
	}
}

// Listening reports whether the listener is up.
func (s *Server) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil
}

// Addr returns the bound address, or nil when not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) listenAndAccept(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listens.Add(1)
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Info().Str("addr", ln.Addr().String()).Msg("Socket server listening")

	defer func() {
		s.mu.Lock()
		if s.ln == ln {
			s.ln = nil
		}
		s.mu.Unlock()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept: %w", err)
		}
		if !s.track(conn) {
			_ = conn.Close()
			return nil
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer func() {
		s.untrack(conn)
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	log.Debug().Str("remote", remote).Msg("Sender connected")

	buf := make([]byte, max(s.maxPacket, MaxPeakPacketSize))
	for ctx.Err() == nil {
		if _, err := io.ReadFull(conn, buf[:wire.HeaderSize]); err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Debug().Err(err).Str("remote", remote).Msg("Sender read failed")
			}
			return
		}

		size, err := wire.ExpectedSize(buf[:wire.HeaderSize])
		if err != nil || size > s.limit(buf[:wire.HeaderSize]) {
			// The stream can't be reframed after a bad header.
			s.dropped.Add(1)
			log.Warn().Err(err).Int("size", size).Str("remote", remote).Msg("Dropping sender with bad packet")
			return
		}

		if _, err := io.ReadFull(conn, buf[wire.HeaderSize:size]); err != nil {
			log.Debug().Err(err).Str("remote", remote).Msg("Truncated packet")
			return
		}
		s.received.Add(uint64(size))

		if !s.proc.ProcessIncomingData(buf[:size]) {
			continue
		}
		s.packets.Add(1)

		if s.status != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
			if _, err := conn.Write(s.status().Encode()); err != nil {
				log.Debug().Err(err).Str("remote", remote).Msg("Failed to send status")
				return
			}
		}
	}
}

// Stats counts bytes and packets received.
type Stats struct {
	Listening     bool   `json:"listening"`
	BytesReceived uint64 `json:"bytes_received"`
	Packets       uint64 `json:"packets"`
	Dropped       uint64 `json:"dropped"`
	Connections   int    `json:"connections"`
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	listening, conns := s.ln != nil, len(s.conns)
	s.mu.Unlock()
	return Stats{
		Listening:     listening,
		BytesReceived: s.received.Load(),
		Packets:       s.packets.Load(),
		Dropped:       s.dropped.Load(),
		Connections:   conns,
	}
}
