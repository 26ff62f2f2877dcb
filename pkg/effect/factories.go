package effect

import (
	"image/color"
	"time"
)

// DefaultFactory builds one preconfigured built-in effect.
type DefaultFactory struct {
	Number int
	New    func() Effect
}

// JSONFactory rebuilds an effect from its persisted record.
type JSONFactory func(r Record) (Effect, error)

// Registry holds the two factory tables. The default list is ordered and may
// hold several variants of the same effect number; the JSON table has at
// most one factory per number.
type Registry struct {
	defaults []DefaultFactory
	json     map[int]JSONFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{json: make(map[int]JSONFactory)}
}

// AddDefault appends a built-in variant.
func (r *Registry) AddDefault(number int, fn func() Effect) {
	r.defaults = append(r.defaults, DefaultFactory{Number: number, New: fn})
}

// AddJSON registers the JSON factory for number, replacing any previous one.
func (r *Registry) AddJSON(number int, fn JSONFactory) {
	r.json[number] = fn
}

// Defaults returns the ordered default factory list.
func (r *Registry) Defaults() []DefaultFactory {
	return r.defaults
}

// JSONFactory looks up the JSON factory for number.
func (r *Registry) JSONFactory(number int) (JSONFactory, bool) {
	f, ok := r.json[number]
	return f, ok
}

var (
	red   = color.RGBA{R: 255, A: 255}
	warm  = color.RGBA{R: 255, G: 147, B: 41, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// BuiltinRegistry returns the registry of effects shipped with lightd.
func BuiltinRegistry() *Registry {
	r := NewRegistry()

	r.AddDefault(NumberColorFill, func() Effect { return NewColorFill("Warm White", warm) })
	r.AddDefault(NumberPalette, func() Effect {
		return NewPalette("Rainbow Palette", []color.RGBA{red, green, blue}, 0.25, 1)
	})
	r.AddDefault(NumberColorFill, func() Effect { return NewColorFill("Solid Red", red) })
	r.AddDefault(NumberRainbowFill, func() Effect { return NewRainbowFill("Rainbow", 4, 0.1) })
	r.AddDefault(NumberPalette, func() Effect {
		return NewPalette("Ocean", []color.RGBA{{B: 80, A: 255}, {G: 120, B: 200, A: 255}, {G: 200, B: 255, A: 255}}, 0.1, 2)
	})
	r.AddDefault(NumberStrobe, func() Effect { return NewStrobe("Strobe", 100*time.Millisecond) })

	r.AddJSON(NumberColorFill, colorFillFromRecord)
	r.AddJSON(NumberPalette, paletteFromRecord)
	r.AddJSON(NumberRainbowFill, rainbowFromRecord)

	return r
}
