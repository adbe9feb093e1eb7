// Package renderer draws engine state onto render targets.
package renderer

import (
	"errors"
	"image/color"

	"github.com/pthm-cable/streams/vmath"
)

// ErrNoContext is returned by Ready when a target has nothing to draw on.
var ErrNoContext = errors.New("renderer: no drawing context")

// Blend selects how drawn colours combine with the canvas.
type Blend int

const (
	BlendAlpha Blend = iota
	BlendAdditive
)

// Target is a drawing surface. Colours are straight (not premultiplied)
// alpha. Calls between Begin and End make up one frame.
type Target interface {
	// Ready reports whether the target can be drawn on.
	Ready() error
	Size() (width, height int)
	Resize(width, height int)

	Begin()
	End()

	// Fade washes the whole canvas with bg at the given alpha. An alpha of 1
	// clears it; smaller values leave fading trails.
	Fade(bg color.RGBA, alpha float64)
	SetBlend(b Blend)
	Circle(center vmath.Vec2, radius float64, c color.RGBA)
	Line(a, b vmath.Vec2, thickness float64, c color.RGBA)
}

// WithAlpha returns c with its alpha set from a [0, 1] opacity.
func WithAlpha(c color.RGBA, opacity float64) color.RGBA {
	c.A = uint8(vmath.Clamp(opacity, 0, 1)*255 + 0.5)
	return c
}
