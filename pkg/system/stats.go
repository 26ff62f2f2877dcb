package system

import (
	"time"

	"github.com/urmzd/lightd/pkg/audio"
	"github.com/urmzd/lightd/pkg/buffer"
	"github.com/urmzd/lightd/pkg/netreader"
	"github.com/urmzd/lightd/pkg/render"
	"github.com/urmzd/lightd/pkg/socket"
	"github.com/urmzd/lightd/pkg/viewer"
	"github.com/urmzd/lightd/pkg/wire"
)

// Statistics is a point-in-time view of the running system.
type Statistics struct {
	UptimeSeconds float64 `json:"uptime_seconds"`

	Effects EffectStats `json:"effects"`
	Clock   ClockStats  `json:"clock"`

	Buffers []buffer.Stats         `json:"buffers"`
	Wire    wire.Stats             `json:"wire"`
	Socket  socket.Stats           `json:"socket"`
	Render  render.Stats           `json:"render"`
	Audio   audio.Snapshot         `json:"audio"`
	Serial  *SerialStats           `json:"serial,omitempty"`
	Viewer  *viewer.Stats          `json:"viewer,omitempty"`
	Readers []netreader.ReaderInfo `json:"readers"`
}

// EffectStats summarizes the effect manager.
type EffectStats struct {
	Count       int   `json:"count"`
	Current     int   `json:"current"`
	IntervalMs  int64 `json:"interval_ms"`
	RemainingMs int64 `json:"remaining_ms"`
	Override    bool  `json:"override"`
}

// ClockStats describes network time sync.
type ClockStats struct {
	Synced   bool      `json:"synced"`
	OffsetMs int64     `json:"offset_ms"`
	LastSync time.Time `json:"last_sync,omitempty"`
	Server   string    `json:"server"`
}

// SerialStats counts audio lines forwarded to the serial port.
type SerialStats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
}

// Statistics collects stats from every component.
func (s *System) Statistics() Statistics {
	st := Statistics{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Effects: EffectStats{
			Count:       s.Effects.EffectCount(),
			Current:     s.Effects.CurrentIndex(),
			IntervalMs:  s.Effects.Interval().Milliseconds(),
			RemainingMs: s.Effects.TimeRemainingForCurrentEffect().Milliseconds(),
			Override:    s.Effects.HasOverride(),
		},
		Clock: ClockStats{
			Synced:   s.Clock.IsSet(),
			OffsetMs: s.Clock.Offset().Milliseconds(),
			LastSync: s.Clock.LastSync(),
			Server:   s.NTP.Server(),
		},
		Buffers: s.Buffers.Stats(),
		Wire:    s.Wire.Stats(),
		Socket:  s.Socket.Stats(),
		Render:  s.Renderer.Stats(),
		Audio:   s.Analyzer.Snapshot(),
		Readers: s.Scheduler.Readers(),
	}
	if s.Serial != nil {
		written, dropped := s.Serial.Counts()
		st.Serial = &SerialStats{Written: written, Dropped: dropped}
	}
	if s.Viewer != nil {
		vs := s.Viewer.Stats()
		st.Viewer = &vs
	}
	return st
}

// SocketState is "listening", "stopped" or "disabled".
func (s *System) SocketState() string {
	switch {
	case !s.Wire.Enabled():
		return "disabled"
	case s.Socket.Listening():
		return "listening"
	default:
		return "stopped"
	}
}

// ClockState is "synced" or "unsynced".
func (s *System) ClockState() string {
	if s.Clock.IsSet() {
		return "synced"
	}
	return "unsynced"
}
