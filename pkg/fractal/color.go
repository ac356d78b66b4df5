package fractal

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HueScale is the hue reached by the slowest escaping points. Hues run from
// 0 to HueScale degrees of the colour wheel, so the palette never wraps
// past blue-magenta back to red.
const HueScale = 255.0

// Hue returns the hue in degrees for escape time n: trunc(n × HueScale / maxIter).
// Points far outside the set can smooth to a negative escape time; their hue
// saturates at 0.
func Hue(n float64, maxIter uint64) float64 {
	return math.Max(0, math.Trunc(n*HueScale/float64(maxIter)))
}

// Value returns the HSV value channel on a 0–255 scale: 255 for points that
// escaped before the cap, 0 for points presumed inside the set.
func Value(n float64, maxIter uint64) uint8 {
	if n < float64(maxIter) {
		return 255
	}
	return 0
}

// Colorize converts an escape time into an opaque RGB colour with maximum
// saturation, hue from [Hue] and brightness from [Value].
func Colorize(n float64, maxIter uint64) color.RGBA {
	v := float64(Value(n, maxIter)) / 255
	r, g, b := colorful.Hsv(Hue(n, maxIter), 1, v).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
