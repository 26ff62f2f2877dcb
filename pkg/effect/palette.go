package effect

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// GlobalPaletteSize is the number of entries in a palette derived from the
// global colors.
const GlobalPaletteSize = 16

// GlobalPalette blends primary into secondary in Lab space. When both colors
// are equal the secondary is replaced by the primary rotated a quarter turn
// around the hue wheel, so the palette never collapses to a single color.
func GlobalPalette(primary, secondary color.RGBA) []color.RGBA {
	c1 := toColorful(primary)
	c2 := toColorful(secondary)

	if primary == secondary {
		h, s, v := c1.Hsv()
		c2 = colorful.Hsv(math.Mod(h+90, 360), s, v)
	}

	out := make([]color.RGBA, GlobalPaletteSize)
	for i := range out {
		r, g, b := c1.BlendLab(c2, float64(i)/float64(GlobalPaletteSize-1)).Clamped().RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return out
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// samplePalette returns the linearly interpolated palette color at pos in [0, 1).
func samplePalette(pal []color.RGBA, pos float64) color.RGBA {
	if len(pal) == 1 {
		return pal[0]
	}
	f := pos * float64(len(pal))
	i := int(f) % len(pal)
	j := (i + 1) % len(pal)
	t := f - math.Floor(f)

	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{
		R: lerp(pal[i].R, pal[j].R),
		G: lerp(pal[i].G, pal[j].G),
		B: lerp(pal[i].B, pal[j].B),
		A: 0xFF,
	}
}
