// Package system wires the lightd components together. A System is built
// once at startup and handed to every task and control surface.
package system

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/audio"
	"github.com/urmzd/lightd/pkg/buffer"
	"github.com/urmzd/lightd/pkg/config"
	"github.com/urmzd/lightd/pkg/devicecfg"
	"github.com/urmzd/lightd/pkg/effect"
	"github.com/urmzd/lightd/pkg/jsonwriter"
	"github.com/urmzd/lightd/pkg/netreader"
	"github.com/urmzd/lightd/pkg/ntp"
	"github.com/urmzd/lightd/pkg/persist"
	"github.com/urmzd/lightd/pkg/render"
	"github.com/urmzd/lightd/pkg/socket"
	"github.com/urmzd/lightd/pkg/viewer"
	"github.com/urmzd/lightd/pkg/wire"
	"golang.org/x/sync/errgroup"
)

// ProtocolVersion is reported to senders in every status reply.
const ProtocolVersion = 1

// Intervals of the periodic readers other than clock sync.
const (
	SocketCheckInterval   = 5 * time.Second
	ViewerCleanupInterval = time.Second
)

// System holds every long-lived component.
type System struct {
	Config  *config.Config
	Gateway persist.Gateway
	Writer  *jsonwriter.Writer

	Device  *devicecfg.Config
	Effects *effect.Manager

	Buffers *buffer.Set
	Wire    *wire.Handler
	Socket  *socket.Server

	Scheduler *netreader.Scheduler
	Clock     *ntp.Clock
	NTP       *ntp.Client

	Analyzer *audio.Analyzer
	Serial   *audio.SerialSink

	Renderer *render.Renderer
	Viewer   *viewer.Hub

	started time.Time
}

// Options carries the pieces a caller may swap out.
type Options struct {
	// Output receives rendered frames. Nil discards them.
	Output render.Output
	// Serial replaces the audio serial port opened from config.
	Serial *audio.SerialSink
}

// New builds the component graph. gateway may be nil, in which case
// nothing is persisted. New does not start anything; call Load, then Run.
func New(cfg *config.Config, gateway persist.Gateway, opts Options) *System {
	s := &System{
		Config:  cfg,
		Gateway: gateway,
		Writer:  jsonwriter.New(cfg.WriteDelay()),
		Clock:   ntp.NewClock(),
		started: time.Now(),
	}

	defaults := deviceDefaults(cfg)
	if gateway != nil {
		s.Device = devicecfg.New(defaults, gateway, s.Writer)
	} else {
		s.Device = devicecfg.New(defaults, nil, nil)
	}

	count, leds := cfg.Channels.Count, cfg.Channels.LEDsPerStrip
	canvases := make([]*effect.Canvas, count)
	for i := range canvases {
		canvases[i] = effect.NewCanvas(i, leds)
	}

	s.Effects = effect.NewManager(effect.BuiltinRegistry(), canvases, effect.Options{
		Interval:              cfg.EffectInterval(),
		RememberCurrentEffect: cfg.Effects.RememberCurrentEffect,
		PersistenceCritical:   cfg.Effects.PersistenceCritical,
	})
	if gateway != nil {
		s.Effects.EnablePersistence(gateway, s.Writer)
	}

	s.Buffers = buffer.NewSet(count, leds, cfg.Channels.MinBuffers, cfg.Channels.MaxBuffers, s.Clock.Now)

	s.Analyzer = audio.NewAnalyzer()
	sinks := audio.MultiSink{s.Analyzer}
	s.Serial = opts.Serial
	if s.Serial == nil && cfg.AudioSerial.Enabled {
		sink, err := audio.OpenSerialSink(cfg.AudioSerial.Port, cfg.AudioSerial.Baud)
		if err != nil {
			log.Warn().Err(err).Str("port", cfg.AudioSerial.Port).Msg("Audio serial port unavailable, peaks stay local")
		} else {
			s.Serial = sink
		}
	}
	if s.Serial != nil {
		sinks = append(sinks, s.Serial)
	}

	s.Wire = wire.NewHandler(s.Buffers, sinks)
	s.Wire.SetEnabled(cfg.Network.IncomingEnabled)

	s.Renderer = render.New(s.Effects, s.Buffers, canvases, opts.Output, render.Options{
		FrameInterval:   cfg.FrameInterval(),
		TimeBeforeLocal: cfg.TimeBeforeLocal(),
		Now:             s.Clock.Now,
	})

	s.Socket = socket.New(cfg.Network.ListenAddr, s.Wire, socket.MaxPacketSize(count, leds), s.Status)

	if cfg.Viewer.Enabled {
		s.Viewer = viewer.NewHub()
		s.Renderer.AddFrameListener(s.Viewer)
		s.Effects.AddListener(s.Viewer)
	}

	s.NTP = ntp.NewClient(ntp.ServerAddress(cfg.Network.NTPServer), s.Clock)
	s.Scheduler = netreader.New()
	s.registerReaders()

	return s
}

func deviceDefaults(cfg *config.Config) devicecfg.Settings {
	defaults := devicecfg.DefaultSettings()
	defaults.NTPServer = cfg.Network.NTPServer
	defaults.RememberCurrentEffect = cfg.Effects.RememberCurrentEffect
	return defaults
}

// Seeds returns the documents written to a fresh database.
func Seeds(cfg *config.Config) (map[string]json.RawMessage, error) {
	device, err := json.Marshal(deviceDefaults(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to encode default device config: %w", err)
	}
	return map[string]json.RawMessage{devicecfg.ConfigKey: device}, nil
}

// Load restores persisted settings and effects and initializes the effect
// manager. An error here means the system must not run.
func (s *System) Load(ctx context.Context) error {
	if err := s.Device.Load(ctx); err != nil {
		return err
	}
	// Device settings decide whether the stored effect index is restored.
	s.Device.Attach(s.Effects, s.Renderer)
	if err := s.Effects.Load(ctx); err != nil {
		return fmt.Errorf("failed to load effects: %w", err)
	}
	if err := s.Effects.Init(); err != nil {
		return err
	}
	return nil
}

// Run starts every task and blocks until ctx is done or a task fails.
// Pending writes are flushed before Run returns.
func (s *System) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.Writer.Run(ctx) })
	g.Go(func() error { return s.Renderer.Run(ctx) })
	g.Go(func() error { return s.Scheduler.Run(ctx) })

	if s.Config.Network.IncomingEnabled {
		g.Go(func() error { return s.Socket.Serve(ctx) })
	}
	if s.Serial != nil {
		g.Go(func() error { return s.Serial.Run(ctx) })
	}
	if s.Viewer != nil {
		g.Go(func() error {
			<-ctx.Done()
			s.Viewer.CloseAll()
			return nil
		})
	}

	log.Info().
		Int("channels", s.Buffers.Len()).
		Str("listen_addr", s.Config.Network.ListenAddr).
		Bool("incoming", s.Config.Network.IncomingEnabled).
		Msg("System started")

	return g.Wait()
}

// registerReaders adds the periodic network tasks to the scheduler.
func (s *System) registerReaders() {
	ntpInterval := s.Config.NTPInterval()
	var ntpIdx int
	ntpIdx = s.Scheduler.Register("ntp", func(ctx context.Context) {
		if server := s.Device.Get().NTPServer; server != "" {
			s.NTP.SetServer(ntp.ServerAddress(server))
		}
		if err := s.NTP.Sync(ctx); err != nil {
			log.Warn().Err(err).Str("server", s.NTP.Server()).Msg("Failed to sync clock")
			if !s.Clock.IsSet() {
				s.Scheduler.SetInterval(ntpIdx, ntp.RetryInterval)
			}
			return
		}
		s.Scheduler.SetInterval(ntpIdx, ntpInterval)
	}, ntpInterval, true)

	s.Scheduler.Register("socket", func(context.Context) {
		if s.Wire.Enabled() && !s.Socket.Listening() {
			s.Socket.Restart()
		}
	}, SocketCheckInterval, false)

	if s.Viewer != nil {
		s.Scheduler.Register("viewer", func(context.Context) {
			s.Viewer.CleanupClients()
		}, ViewerCleanupInterval, false)
	}
}

// Status is the reply sent to senders after each accepted packet. Ages
// come from channel 0.
func (s *System) Status() wire.Response {
	r := wire.Response{
		Version:    ProtocolVersion,
		Clock:      float64(s.Clock.Now().UnixMicro()) / 1e6,
		Brightness: float64(s.Renderer.Stats().Brightness) * 100 / 255,
		FPS:        s.Renderer.FPS(),
		Watts:      s.Renderer.Milliwatts() / 1000,
	}
	_ = s.Buffers.WithLock(func(managers []*buffer.Manager) error {
		if len(managers) == 0 {
			return nil
		}
		m := managers[0]
		r.BufferSize = uint32(m.MaxBuffers())
		r.BufferPos = uint32(m.Depth())
		if age, ok := m.AgeOfOldestBuffer(); ok {
			r.OldestAge = age.Seconds()
		}
		if age, ok := m.AgeOfNewestBuffer(); ok {
			r.NewestAge = age.Seconds()
		}
		return nil
	})
	return r
}

// Reset removes persisted configuration and restores defaults in place.
func (s *System) Reset(ctx context.Context, effectsConfig, deviceConfig bool) error {
	// Write out anything pending first so a late flush cannot recreate
	// what is about to be removed.
	if err := s.Writer.FlushWrites(ctx, false); err != nil {
		return err
	}

	if deviceConfig {
		if err := s.Device.RemovePersisted(ctx, deviceDefaults(s.Config)); err != nil {
			return err
		}
		s.Device.Attach(s.Effects, s.Renderer)
	}

	if effectsConfig {
		if err := s.Effects.RemoveConfig(ctx); err != nil {
			return err
		}
		s.Effects.LoadDefaultEffects()
		if err := s.Effects.Init(); err != nil {
			return err
		}
	}

	log.Info().Bool("effects", effectsConfig).Bool("device", deviceConfig).Msg("Configuration reset")
	return nil
}
