// Command lightsend streams a scrolling rainbow to a lightd instance. It is
// useful for checking wiring, buffering and clock sync without a real
// content source.
package main

import (
	"context"
	"errors"
	"flag"
	"image/color"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/wire"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := flag.String("addr", "127.0.0.1:49152", "Address of the lightd color data socket")
	leds := flag.Int("leds", 144, "LEDs per channel")
	mask := flag.Uint("channels", 1, "Channel bit mask the frames are addressed to")
	fps := flag.Int("fps", 30, "Frames per second")
	ahead := flag.Duration("ahead", 500*time.Millisecond, "How far ahead of now each frame is timestamped")
	speed := flag.Float64("speed", 60, "Hue rotation in degrees per second")
	flag.Parse()

	if *fps <= 0 || *leds <= 0 {
		log.Fatal().Msg("fps and leds must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := net.DialTimeout("tcp", *addr, 5*time.Second)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("Failed to connect")
	}
	defer conn.Close()

	log.Info().Str("addr", *addr).Int("leds", *leds).Int("fps", *fps).Msg("Streaming rainbow")

	s := &sender{
		conn:  conn,
		mask:  uint16(*mask),
		leds:  *leds,
		ahead: *ahead,
		speed: *speed,
	}
	if err := s.run(ctx, time.Second/time.Duration(*fps)); err != nil {
		log.Fatal().Err(err).Msg("Streaming stopped")
	}
}

type sender struct {
	conn  net.Conn
	mask  uint16
	leds  int
	ahead time.Duration
	speed float64

	last wire.Response
}

func (s *sender) run(ctx context.Context, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			offset := now.Sub(start).Seconds() * s.speed
			if err := s.send(now, rainbow(s.leds, offset)); err != nil {
				return err
			}
		}
	}
}

// send writes one frame and reads the status reply. Rejected frames get no
// reply, so a read timeout is not an error.
func (s *sender) send(now time.Time, pixels []color.RGBA) error {
	if _, err := s.conn.Write(wire.EncodePixels(s.mask, now.Add(s.ahead), pixels)); err != nil {
		return err
	}

	buf := make([]byte, wire.ResponseSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Debug().Msg("No status reply, frame was probably rejected")
			return nil
		}
		return err
	}

	r, ok := wire.DecodeResponse(buf)
	if !ok {
		log.Warn().Msg("Malformed status reply")
		return nil
	}
	if r.BufferPos != s.last.BufferPos || r.FPS != s.last.FPS {
		log.Debug().
			Uint32("buffered", r.BufferPos).
			Uint32("capacity", r.BufferSize).
			Uint32("fps", r.FPS).
			Uint32("watts", r.Watts).
			Float64("clock_skew", r.Clock-float64(now.UnixMicro())/1e6).
			Msg("Status")
	}
	s.last = r
	return nil
}

// rainbow spreads a full hue circle over n pixels, rotated by offset degrees.
func rainbow(n int, offset float64) []color.RGBA {
	pixels := make([]color.RGBA, n)
	for i := range pixels {
		hue := offset + float64(i)*360/float64(n)
		for hue >= 360 {
			hue -= 360
		}
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return pixels
}
