package render

import (
	"context"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/buffer"
	"github.com/urmzd/lightd/pkg/effect"
)

// Options configures a Renderer.
type Options struct {
	// FrameInterval is the render cadence.
	FrameInterval time.Duration
	// TimeBeforeLocal is how long the last network frame stays on the LEDs
	// before local effects take over.
	TimeBeforeLocal time.Duration
	// Now returns the synchronized clock used to decide when a buffered
	// frame is due. Defaults to time.Now.
	Now func() time.Time
}

// Renderer composes one frame per tick.
type Renderer struct {
	effects  *effect.Manager
	buffers  *buffer.Set
	canvases []*effect.Canvas
	shown    []*effect.Canvas
	output   Output
	opts     Options
	now      func() time.Time

	mu        sync.Mutex
	listeners []FrameListener
	lastWire  time.Time
	source    Source

	brightness atomic.Uint32
	powerLimit atomic.Uint32
	milliwatts atomic.Uint32
	frames     atomic.Uint64
	fps        atomic.Uint32
	errors     atomic.Uint64
}

// New returns a renderer at full brightness. output may be nil.
func New(effects *effect.Manager, buffers *buffer.Set, canvases []*effect.Canvas, output Output, opts Options) *Renderer {
	if output == nil {
		output = NullOutput{}
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	r := &Renderer{
		effects:  effects,
		buffers:  buffers,
		canvases: canvases,
		output:   output,
		opts:     opts,
		now:      now,
		source:   SourceNone,
	}
	for _, c := range canvases {
		r.shown = append(r.shown, effect.NewCanvas(c.Channel, len(c.Pixels)))
	}
	r.brightness.Store(255)
	return r
}

// AddFrameListener registers l for finished frames.
func (r *Renderer) AddFrameListener(l FrameListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// SetBrightness scales every frame by b/255.
func (r *Renderer) SetBrightness(b uint8) {
	r.brightness.Store(uint32(b))
}

// SetPowerLimit caps the estimated draw in milliwatts; zero removes the cap.
func (r *Renderer) SetPowerLimit(milliwatts uint32) {
	r.powerLimit.Store(milliwatts)
}

// Milliwatts returns the estimated draw of the last shown frame.
func (r *Renderer) Milliwatts() uint32 {
	return r.milliwatts.Load()
}

// Run renders until ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.FrameInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", r.opts.FrameInterval).Msg("Render loop started")

	second := time.NewTicker(time.Second)
	defer second.Stop()
	var lastFrames uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-second.C:
			n := r.frames.Load()
			r.fps.Store(uint32(n - lastFrames))
			lastFrames = n
		case <-ticker.C:
			r.RenderFrame()
		}
	}
}

// RenderFrame composes, shows and publishes one frame.
func (r *Renderer) RenderFrame() Source {
	now := r.now()

	source := SourceEffect
	if r.drawWire(now) {
		source = SourceWire
	} else {
		r.effects.AdvanceIfExpired()
		if !r.effects.Render(now, r.canvases) {
			for _, c := range r.canvases {
				c.Fill(color.RGBA{A: 0xFF})
			}
			source = SourceNone
		}
	}

	r.scale()

	if err := r.output.Show(r.shown); err != nil {
		if r.errors.Add(1) == 1 {
			log.Warn().Err(err).Msg("Failed to show frame")
		}
	}

	r.mu.Lock()
	r.source = source
	listeners := r.listeners
	r.mu.Unlock()
	for _, l := range listeners {
		l.OnNewFrame(r.shown)
	}

	r.frames.Add(1)
	return source
}

// drawWire copies the newest due frame of each channel onto its canvas and
// reports whether network data owns the LEDs this frame. Frames stamped in
// the future stay queued until their time comes.
func (r *Renderer) drawWire(now time.Time) bool {
	drew := false
	_ = r.buffers.WithLock(func(managers []*buffer.Manager) error {
		for i, m := range managers {
			if i >= len(r.canvases) {
				break
			}
			var due *buffer.Frame
			for f := m.PeekOldestBuffer(); f != nil && !f.Time().After(now); f = m.PeekOldestBuffer() {
				due = m.GetOldestBuffer()
			}
			if due == nil || !due.Populated() {
				continue
			}
			copy(r.canvases[i].Pixels, due.Pixels)
			drew = true
		}
		return nil
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if drew {
		r.lastWire = now
		return true
	}
	return !r.lastWire.IsZero() && now.Sub(r.lastWire) < r.opts.TimeBeforeLocal
}

// scale copies the composed canvases to the shown ones at the current
// brightness, lowered as needed to stay within the power limit. The composed
// canvases keep full intensity so a held network frame is not dimmed again
// every tick.
func (r *Renderer) scale() {
	b := limitBrightness(r.canvases, uint8(r.brightness.Load()), r.powerLimit.Load())
	r.milliwatts.Store(EstimatePower(r.canvases, b))
	for ci, c := range r.canvases {
		dst := r.shown[ci].Pixels
		if b == 255 {
			copy(dst, c.Pixels)
			continue
		}
		for i, p := range c.Pixels {
			dst[i] = color.RGBA{
				R: uint8(uint32(p.R) * uint32(b) / 255),
				G: uint8(uint32(p.G) * uint32(b) / 255),
				B: uint8(uint32(p.B) * uint32(b) / 255),
				A: p.A,
			}
		}
	}
}

// Stats describes the render loop.
type Stats struct {
	FPS        uint32 `json:"fps"`
	Frames     uint64 `json:"frames"`
	Source     Source `json:"source"`
	Brightness uint8  `json:"brightness"`
	ShowErrors uint64 `json:"show_errors"`
	Milliwatts uint32 `json:"milliwatts"`
	PowerLimit uint32 `json:"power_limit,omitempty"`
}

func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	source := r.source
	r.mu.Unlock()
	return Stats{
		FPS:        r.fps.Load(),
		Frames:     r.frames.Load(),
		Source:     source,
		Brightness: uint8(r.brightness.Load()),
		ShowErrors: r.errors.Load(),
		Milliwatts: r.milliwatts.Load(),
		PowerLimit: r.powerLimit.Load(),
	}
}

// FPS returns frames rendered during the last full second.
func (r *Renderer) FPS() uint32 {
	return r.fps.Load()
}
