// Package effect holds the visual programs shown on the LED channels and the
// manager that decides which one is live.
package effect

import (
	"image/color"
	"time"

	"github.com/urmzd/lightd/pkg/setting"
)

// Canvas is the pixel surface of one LED channel.
type Canvas struct {
	Channel int
	Pixels  []color.RGBA
}

// NewCanvas allocates a canvas of n black pixels.
func NewCanvas(channel, n int) *Canvas {
	return &Canvas{Channel: channel, Pixels: make([]color.RGBA, n)}
}

// Fill sets every pixel to c.
func (c *Canvas) Fill(col color.RGBA) {
	for i := range c.Pixels {
		c.Pixels[i] = col
	}
}

// Effect is one visual program plus its configuration.
type Effect interface {
	Number() int
	Name() string

	Enabled() bool
	SetEnabled(enabled bool)
	IsCore() bool
	MarkCore()

	Init(canvases []*Canvas) error
	Render(now time.Time, c *Canvas)

	// Serialize returns the JSON record the effect's JSON factory accepts.
	Serialize() (Record, error)

	SettingSpecs() []setting.Spec
	Settings() map[string]any
	// SetSetting applies a single setting. It reports false for names the
	// effect does not know.
	SetSetting(name, value string) (bool, error)
}

// PaletteUser is implemented by effects that follow the global palette.
type PaletteUser interface {
	SetGlobalPalette(p []color.RGBA)
}

// Record keys shared by every effect.
const (
	keyType         = "t"
	keyFriendlyName = "fn"
	keyEnabled      = "es"
	keyCore         = "ce"
)

// Base implements the parts of Effect common to every effect type.
type Base struct {
	number  int
	name    string
	enabled bool
	core    bool
}

// NewBase returns an enabled, non-core Base.
func NewBase(number int, name string) Base {
	return Base{number: number, name: name, enabled: true}
}

// BaseFromRecord restores the shared fields from a record. The core flag is
// applied by the manager, not here.
func BaseFromRecord(number int, defaultName string, r Record) Base {
	b := NewBase(number, r.String(keyFriendlyName, defaultName))
	b.enabled = r.Bool(keyEnabled, true)
	return b
}

func (b *Base) Number() int          { return b.number }
func (b *Base) Name() string         { return b.name }
func (b *Base) Enabled() bool        { return b.enabled }
func (b *Base) SetEnabled(v bool)    { b.enabled = v }
func (b *Base) IsCore() bool         { return b.core }
func (b *Base) MarkCore()            { b.core = true }
func (b *Base) Init([]*Canvas) error { return nil }

func (b *Base) baseRecord() Record {
	return Record{
		keyType:         b.number,
		keyFriendlyName: b.name,
		keyEnabled:      b.enabled,
	}
}

func (b *Base) baseSpecs() []setting.Spec {
	return []setting.Spec{
		setting.New("friendlyName", "Friendly name", "The name shown for this effect", setting.String),
	}
}

func (b *Base) baseSettings() map[string]any {
	return map[string]any{"friendlyName": b.name}
}

func (b *Base) setBaseSetting(name, value string) bool {
	if name != "friendlyName" {
		return false
	}
	b.name = value
	return true
}
