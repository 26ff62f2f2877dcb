package effect

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/urmzd/lightd/pkg/setting"
)

// Effect type numbers. These are persisted and must stay stable.
const (
	NumberColorFill   = 1
	NumberPalette     = 2
	NumberRainbowFill = 3
	NumberStrobe      = 4
)

// ErrEmptyPalette is returned by Init for a palette effect without colors.
var ErrEmptyPalette = errors.New("palette has no colors")

// ColorFill paints every pixel one color.
type ColorFill struct {
	Base
	color color.RGBA
}

func NewColorFill(name string, c color.RGBA) *ColorFill {
	return &ColorFill{Base: NewBase(NumberColorFill, name), color: c}
}

func colorFillFromRecord(r Record) (Effect, error) {
	return &ColorFill{
		Base:  BaseFromRecord(NumberColorFill, "Color Fill", r),
		color: r.Color("clr", color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	}, nil
}

func (e *ColorFill) Render(now time.Time, c *Canvas) {
	c.Fill(e.color)
}

func (e *ColorFill) Serialize() (Record, error) {
	r := e.baseRecord()
	r["clr"] = setting.PackColor(e.color)
	return r, nil
}

func (e *ColorFill) SettingSpecs() []setting.Spec {
	return append(e.baseSpecs(), setting.New("color", "Color", "The fill color", setting.Color))
}

func (e *ColorFill) Settings() map[string]any {
	s := e.baseSettings()
	s["color"] = setting.PackColor(e.color)
	return s
}

func (e *ColorFill) SetSetting(name, value string) (bool, error) {
	if e.setBaseSetting(name, value) {
		return true, nil
	}
	if name != "color" {
		return false, nil
	}
	c, err := setting.ParseColor(value)
	if err != nil {
		return true, err
	}
	e.color = c
	return true, nil
}

// Palette scrolls a blended color palette along the strip.
type Palette struct {
	Base
	palette []color.RGBA
	global  []color.RGBA
	speed   float64
	density float64
}

func NewPalette(name string, palette []color.RGBA, speed, density float64) *Palette {
	return &Palette{
		Base:    NewBase(NumberPalette, name),
		palette: palette,
		speed:   speed,
		density: density,
	}
}

func paletteFromRecord(r Record) (Effect, error) {
	return &Palette{
		Base:    BaseFromRecord(NumberPalette, "Palette", r),
		palette: r.Colors("pal"),
		speed:   r.Float("spd", 0.25),
		density: r.Float("dns", 1),
	}, nil
}

func (e *Palette) Init([]*Canvas) error {
	if len(e.palette) == 0 {
		return fmt.Errorf("%s: %w", e.Name(), ErrEmptyPalette)
	}
	return nil
}

// SetGlobalPalette overrides the effect's own palette; nil restores it.
func (e *Palette) SetGlobalPalette(p []color.RGBA) {
	e.global = p
}

func (e *Palette) colors() []color.RGBA {
	if len(e.global) > 0 {
		return e.global
	}
	return e.palette
}

func (e *Palette) Render(now time.Time, c *Canvas) {
	pal := e.colors()
	if len(pal) == 0 || len(c.Pixels) == 0 {
		return
	}
	shift := e.speed * float64(now.UnixMilli()%1_000_000) / 1000
	for i := range c.Pixels {
		pos := float64(i)*e.density/float64(len(c.Pixels)) + shift
		c.Pixels[i] = samplePalette(pal, pos-math.Floor(pos))
	}
}

func (e *Palette) Serialize() (Record, error) {
	r := e.baseRecord()
	r["pal"] = packColors(e.palette)
	r["spd"] = e.speed
	r["dns"] = e.density
	return r, nil
}

func (e *Palette) SettingSpecs() []setting.Spec {
	return append(e.baseSpecs(),
		setting.New("speed", "Speed", "Palette rotations per second", setting.Float).WithRange(0, 10),
		setting.New("density", "Density", "Palette repetitions along the strip", setting.Float).WithRange(0.1, 16),
	)
}

func (e *Palette) Settings() map[string]any {
	s := e.baseSettings()
	s["speed"] = e.speed
	s["density"] = e.density
	return s
}

func (e *Palette) SetSetting(name, value string) (bool, error) {
	if e.setBaseSetting(name, value) {
		return true, nil
	}
	switch name {
	case "speed", "density":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("%s: %w", name, setting.ErrInvalidValue)
		}
		if name == "speed" {
			e.speed = v
		} else {
			e.density = v
		}
		return true, nil
	}
	return false, nil
}

// RainbowFill cycles the whole strip through the hue wheel.
type RainbowFill struct {
	Base
	deltaHue int
	speed    float64
}

func NewRainbowFill(name string, deltaHue int, speed float64) *RainbowFill {
	return &RainbowFill{Base: NewBase(NumberRainbowFill, name), deltaHue: deltaHue, speed: speed}
}

func rainbowFromRecord(r Record) (Effect, error) {
	return &RainbowFill{
		Base:     BaseFromRecord(NumberRainbowFill, "Rainbow", r),
		deltaHue: r.Int("dh", 4),
		speed:    r.Float("spd", 0.1),
	}, nil
}

func (e *RainbowFill) Render(now time.Time, c *Canvas) {
	start := math.Mod(e.speed*360*float64(now.UnixMilli()%1_000_000)/1000, 360)
	for i := range c.Pixels {
		hue := math.Mod(start+float64(i*e.deltaHue)*360/256, 360)
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		c.Pixels[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
}

func (e *RainbowFill) Serialize() (Record, error) {
	r := e.baseRecord()
	r["dh"] = e.deltaHue
	r["spd"] = e.speed
	return r, nil
}

func (e *RainbowFill) SettingSpecs() []setting.Spec {
	return append(e.baseSpecs(),
		setting.New("deltaHue", "Hue step", "Hue change between neighbouring pixels", setting.Integer).WithRange(0, 255),
		setting.New("speed", "Speed", "Hue wheel turns per second", setting.Float).WithRange(0, 10),
	)
}

func (e *RainbowFill) Settings() map[string]any {
	s := e.baseSettings()
	s["deltaHue"] = e.deltaHue
	s["speed"] = e.speed
	return s
}

func (e *RainbowFill) SetSetting(name, value string) (bool, error) {
	if e.setBaseSetting(name, value) {
		return true, nil
	}
	switch name {
	case "deltaHue":
		v, err := strconv.Atoi(value)
		if err != nil {
			return true, fmt.Errorf("%s: %w", name, setting.ErrInvalidValue)
		}
		e.deltaHue = v
		return true, nil
	case "speed":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("%s: %w", name, setting.ErrInvalidValue)
		}
		e.speed = v
		return true, nil
	}
	return false, nil
}

// Strobe flashes white. It has no JSON factory, so it always comes from the
// default list and cannot be copied.
type Strobe struct {
	Base
	period time.Duration
}

func NewStrobe(name string, period time.Duration) *Strobe {
	return &Strobe{Base: NewBase(NumberStrobe, name), period: period}
}

func (e *Strobe) Render(now time.Time, c *Canvas) {
	if e.period <= 0 {
		c.Fill(color.RGBA{A: 0xFF})
		return
	}
	if now.UnixNano()%int64(e.period) < int64(e.period)/2 {
		c.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	} else {
		c.Fill(color.RGBA{A: 0xFF})
	}
}

func (e *Strobe) Serialize() (Record, error) {
	r := e.baseRecord()
	r["per"] = e.period.Milliseconds()
	return r, nil
}

func (e *Strobe) SettingSpecs() []setting.Spec {
	return append(e.baseSpecs(),
		setting.New("period", "Period", "Flash period in milliseconds", setting.PositiveBigInteger))
}

func (e *Strobe) Settings() map[string]any {
	s := e.baseSettings()
	s["period"] = e.period.Milliseconds()
	return s
}

func (e *Strobe) SetSetting(name, value string) (bool, error) {
	if e.setBaseSetting(name, value) {
		return true, nil
	}
	if name != "period" {
		return false, nil
	}
	ms, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return true, fmt.Errorf("%s: %w", name, setting.ErrInvalidValue)
	}
	e.period = time.Duration(ms) * time.Millisecond
	return true, nil
}
