package render

import "github.com/urmzd/lightd/pkg/effect"

// Current drawn by one WS2812-class LED, in milliamps, with a color channel
// at full intensity, and with all channels off.
const (
	redMilliamps   = 16
	greenMilliamps = 11
	blueMilliamps  = 15
	idleMilliamps  = 1
	supplyVolts    = 5
)

// EstimatePower returns the draw in milliwatts of showing canvases at
// brightness b.
func EstimatePower(canvases []*effect.Canvas, b uint8) uint32 {
	var lit, leds uint64
	for _, c := range canvases {
		for _, p := range c.Pixels {
			lit += uint64(p.R)*redMilliamps + uint64(p.G)*greenMilliamps + uint64(p.B)*blueMilliamps
		}
		leds += uint64(len(c.Pixels))
	}
	// lit is in units of mA*255 at full brightness.
	milliamps := lit*uint64(b)/(255*255) + leds*idleMilliamps
	return uint32(milliamps * supplyVolts)
}

// limitBrightness lowers b until the estimated draw of canvases fits within
// limit milliwatts. A zero limit leaves b unchanged.
func limitBrightness(canvases []*effect.Canvas, b uint8, limit uint32) uint8 {
	if limit == 0 || b == 0 {
		return b
	}
	idle := EstimatePower(canvases, 0)
	full := EstimatePower(canvases, b)
	if full <= limit {
		return b
	}
	if limit <= idle {
		return 0
	}
	return uint8(uint64(b) * uint64(limit-idle) / uint64(full-idle))
}
