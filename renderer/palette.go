package renderer

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/streams/config"
)

// HCL returns the RGB colour for a hue in degrees and chroma / lightness on
// a 0-100 scale, clamped into gamut, with the given opacity.
func HCL(hue, chroma, lightness, opacity float64) color.RGBA {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hcl(h, chroma/100, lightness/100).Clamped()
	r, g, b := c.RGB255()
	return WithAlpha(color.RGBA{R: r, G: g, B: b}, opacity)
}

// LayerColor returns a stream layer's colour: the layer's palette entry
// rotated by the global cycling hue. Layers past the end of the palette
// reuse its last entry.
func LayerColor(palette []config.LayerStyle, layer int, globalHue, opacity float64) color.RGBA {
	if len(palette) == 0 {
		return HCL(globalHue, 40, 70, opacity)
	}
	if layer < 0 {
		layer = 0
	}
	if layer >= len(palette) {
		layer = len(palette) - 1
	}
	s := palette[layer]
	return HCL(s.Hue+globalHue, s.Chroma, s.Lightness, opacity)
}

// Background converts a configured [r, g, b] triple into an opaque colour.
func Background(rgb []int) color.RGBA {
	c := color.RGBA{A: 255}
	ch := []*uint8{&c.R, &c.G, &c.B}
	for i := 0; i < len(rgb) && i < 3; i++ {
		v := rgb[i]
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		*ch[i] = uint8(v)
	}
	return c
}
