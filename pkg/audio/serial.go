package audio

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// DefaultBaud is the rate expected by serial spectrum displays.
const DefaultBaud = 2400

// SerialSink writes peaks to a serial line, one frame per line as
// comma-separated levels from 0 to 99. Only the latest frame is kept, so
// a slow line drops frames instead of stalling the sender.
type SerialSink struct {
	port io.WriteCloser

	mu      sync.Mutex
	pending []float64
	wake    chan struct{}
	written uint64
	dropped uint64
}

// OpenSerialSink opens portPath at baud, 8N1.
func OpenSerialSink(portPath string, baud int) (*SerialSink, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	log.Info().Str("port", portPath).Int("baud", baud).Msg("Audio serial port opened")

	return NewSerialSink(port), nil
}

// NewSerialSink writes to an already open port.
func NewSerialSink(port io.WriteCloser) *SerialSink {
	return &SerialSink{port: port, wake: make(chan struct{}, 1)}
}

// SetPeakData queues p for the writer, replacing any frame not yet sent.
func (s *SerialSink) SetPeakData(p PeakData) {
	s.mu.Lock()
	if s.pending != nil {
		s.dropped++
	}
	s.pending = append(s.pending[:0:0], p.Bands...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run writes queued frames until ctx is done, then closes the port.
func (s *SerialSink) Run(ctx context.Context) error {
	defer func() {
		if err := s.port.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close audio serial port")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}

		s.mu.Lock()
		bands := s.pending
		s.pending = nil
		s.mu.Unlock()
		if bands == nil {
			continue
		}

		if _, err := s.port.Write(FormatLine(bands)); err != nil {
			return fmt.Errorf("write audio serial frame: %w", err)
		}
		s.mu.Lock()
		s.written++
		s.mu.Unlock()
	}
}

// Counts returns frames written and frames replaced before being sent.
func (s *SerialSink) Counts() (written, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written, s.dropped
}

// FormatLine renders bands as "12,0,99\n".
func FormatLine(bands []float64) []byte {
	line := make([]byte, 0, len(bands)*3+1)
	for i, v := range bands {
		if i > 0 {
			line = append(line, ',')
		}
		level := int(v*99 + 0.5)
		if level < 0 {
			level = 0
		} else if level > 99 {
			level = 99
		}
		line = strconv.AppendInt(line, int64(level), 10)
	}
	return append(line, '\n')
}
