package wire

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/audio"
	"github.com/urmzd/lightd/pkg/buffer"
)

// Handler applies decoded packets to the channel buffers and the peak sink.
type Handler struct {
	buffers *buffer.Set
	peaks   audio.PeakSink
	enabled atomic.Bool

	pixelPackets atomic.Uint64
	peakPackets  atomic.Uint64
	rejected     atomic.Uint64
}

// NewHandler returns an enabled handler. peaks may be nil to discard peak
// data.
func NewHandler(buffers *buffer.Set, peaks audio.PeakSink) *Handler {
	h := &Handler{buffers: buffers, peaks: peaks}
	h.enabled.Store(true)
	return h
}

// SetEnabled turns ingestion on or off.
func (h *Handler) SetEnabled(enabled bool) {
	h.enabled.Store(enabled)
}

func (h *Handler) Enabled() bool {
	return h.enabled.Load()
}

// ProcessIncomingData applies one complete packet. It returns false without
// touching any state when ingestion is disabled, the command is unknown or
// the packet is malformed, and false when a buffer update fails.
func (h *Handler) ProcessIncomingData(b []byte) bool {
	if !h.enabled.Load() {
		return false
	}

	p, err := Decode(b)
	if err != nil {
		h.rejected.Add(1)
		if errors.Is(err, ErrUnknownCommand) {
			log.Debug().Err(err).Msg("Rejected incoming packet")
		} else {
			log.Debug().Err(err).Int("len", len(b)).Msg("Malformed incoming packet")
		}
		return false
	}

	switch p.Command {
	case CommandPixelData:
		return h.processPixels(p)
	case CommandPeakData:
		return h.processPeaks(p)
	}
	return false
}

func (h *Handler) processPixels(p Packet) bool {
	log.Trace().
		Uint16("mask", p.ChannelMask()).
		Uint32("length", p.Length).
		Uint64("seconds", p.Seconds).
		Uint64("micros", p.Micros).
		Msg("Pixel data")

	err := h.buffers.Apply(p.ChannelMask(), func(m *buffer.Manager) error {
		// A resend of the newest frame, or data for a slot that was handed
		// out but never stamped, completes that frame in place.
		if newest := m.PeekNewestBuffer(); newest != nil &&
			(!newest.HasTimestamp() || newest.SameTime(p.Seconds, p.Micros)) {
			return newest.Update(p.Seconds, p.Micros, int(p.Length), p.Payload)
		}
		return m.GetNewBuffer().Update(p.Seconds, p.Micros, int(p.Length), p.Payload)
	})
	if err != nil {
		h.rejected.Add(1)
		log.Debug().Err(err).Msg("Failed to update channel buffer")
		return false
	}

	h.pixelPackets.Add(1)
	return true
}

func (h *Handler) processPeaks(p Packet) bool {
	if p.Bands() > audio.MaxBands {
		h.rejected.Add(1)
		log.Debug().Int("bands", p.Bands()).Msg("Too many peak bands")
		return false
	}

	if h.peaks != nil {
		peaks := audio.NewPeakData(p.Peaks(), p.Time())
		peaks.ApplyScalars(audio.PCRemote)
		h.peaks.SetPeakData(peaks)
	}

	h.peakPackets.Add(1)
	return true
}

// Stats counts processed packets.
type Stats struct {
	Enabled      bool   `json:"enabled"`
	PixelPackets uint64 `json:"pixel_packets"`
	PeakPackets  uint64 `json:"peak_packets"`
	Rejected     uint64 `json:"rejected"`
}

func (h *Handler) Stats() Stats {
	return Stats{
		Enabled:      h.enabled.Load(),
		PixelPackets: h.pixelPackets.Load(),
		PeakPackets:  h.peakPackets.Load(),
		Rejected:     h.rejected.Load(),
	}
}
