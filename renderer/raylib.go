package renderer

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/streams/vmath"
)

// RaylibTarget draws into an off-screen render texture that persists between
// frames, so Fade can leave trails, and presents it to the window on End.
// All methods must be called from the thread that created the window.
type RaylibTarget struct {
	width, height int
	canvas        rl.RenderTexture2D
	loaded        bool
	blend         Blend
}

// NewRaylibTarget creates a target for an already opened window.
func NewRaylibTarget(width, height int) *RaylibTarget {
	return &RaylibTarget{width: width, height: height}
}

// Ready loads the canvas texture, failing if no window is open.
func (t *RaylibTarget) Ready() error {
	if !rl.IsWindowReady() {
		return fmt.Errorf("raylib window not initialised: %w", ErrNoContext)
	}
	if !t.loaded {
		t.load()
	}
	return nil
}

func (t *RaylibTarget) load() {
	t.canvas = rl.LoadRenderTexture(int32(t.width), int32(t.height))
	t.loaded = true

	rl.BeginTextureMode(t.canvas)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()
}

// Size returns the canvas size.
func (t *RaylibTarget) Size() (int, int) { return t.width, t.height }

// Resize reallocates the canvas texture. The old contents are dropped.
func (t *RaylibTarget) Resize(width, height int) {
	if width == t.width && height == t.height {
		return
	}
	t.width, t.height = width, height
	if t.loaded {
		rl.UnloadRenderTexture(t.canvas)
		t.load()
	}
}

// Begin redirects drawing into the canvas, loading it on first use.
func (t *RaylibTarget) Begin() {
	if !t.loaded {
		t.load()
	}
	rl.BeginTextureMode(t.canvas)
	t.blend = BlendAlpha
}

// End finishes drawing into the canvas. Present shows it.
func (t *RaylibTarget) End() {
	if t.blend != BlendAlpha {
		rl.EndBlendMode()
		t.blend = BlendAlpha
	}
	rl.EndTextureMode()
}

// Present draws the canvas to the window. Call it between rl.BeginDrawing
// and rl.EndDrawing.
func (t *RaylibTarget) Present() {
	if !t.loaded {
		return
	}
	// Render textures are stored upside down.
	src := rl.Rectangle{
		X:      0,
		Y:      0,
		Width:  float32(t.width),
		Height: -float32(t.height),
	}
	rl.DrawTextureRec(t.canvas.Texture, src, rl.Vector2{}, rl.White)
}

// Fade washes the canvas with bg. Alpha 1 clears it.
func (t *RaylibTarget) Fade(bg color.RGBA, alpha float64) {
	if alpha >= 1 {
		rl.ClearBackground(rlColor(bg))
		return
	}
	wash := WithAlpha(bg, alpha)
	rl.DrawRectangle(0, 0, int32(t.width), int32(t.height), rlColor(wash))
}

// SetBlend switches between alpha and additive blending.
func (t *RaylibTarget) SetBlend(b Blend) {
	if b == t.blend {
		return
	}
	if t.blend != BlendAlpha {
		rl.EndBlendMode()
	}
	if b == BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}
	t.blend = b
}

// Circle draws a filled circle.
func (t *RaylibTarget) Circle(center vmath.Vec2, radius float64, c color.RGBA) {
	rl.DrawCircleV(rl.Vector2{X: float32(center.X), Y: float32(center.Y)}, float32(radius), rlColor(c))
}

// Line draws a line of the given thickness.
func (t *RaylibTarget) Line(a, b vmath.Vec2, thickness float64, c color.RGBA) {
	rl.DrawLineEx(
		rl.Vector2{X: float32(a.X), Y: float32(a.Y)},
		rl.Vector2{X: float32(b.X), Y: float32(b.Y)},
		float32(thickness),
		rlColor(c),
	)
}

// Unload frees the canvas texture.
func (t *RaylibTarget) Unload() {
	if t.loaded {
		rl.UnloadRenderTexture(t.canvas)
		t.loaded = false
	}
}

func rlColor(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
