package renderer

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/spatial"
	"github.com/pthm-cable/streams/vmath"
)

// TestDrawParticleGlowThenCore verifies the glow rings precede the core and
// that a transparent particle draws nothing.
func TestDrawParticleGlowThenCore(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Begin()
	DrawParticle(r, vmath.V(50, 50), 3, color.RGBA{R: 255, A: 200}, Glow{Scale: 3, Alpha: 0.3})
	r.End()
	if got, want := r.Last().Circles, len(glowRings)+1; got != want {
		t.Errorf("circles = %d, want %d", got, want)
	}

	r.Begin()
	DrawParticle(r, vmath.V(50, 50), 3, color.RGBA{R: 255}, Glow{Scale: 3, Alpha: 0.3})
	r.End()
	if r.Last().Circles != 0 {
		t.Errorf("transparent particle drew %d circles", r.Last().Circles)
	}
}

// TestDrawStreamTrail verifies one line per trail segment.
func TestDrawStreamTrail(t *testing.T) {
	p := components.StreamParticle{Pos: vmath.V(10, 10), Size: 2, Trail: components.NewTrail(8)}
	for i := 0; i < 5; i++ {
		p.Trail.Push(vmath.V(float64(10-i), 10))
	}
	r := NewRecorder(100, 100)
	r.Begin()
	DrawStream(r, &p, color.RGBA{G: 255, A: 255}, Glow{})
	r.End()
	if r.Last().Lines != 4 {
		t.Errorf("lines = %d, want 4", r.Last().Lines)
	}
	if r.Last().Circles != 1 {
		t.Errorf("circles = %d, want 1 (no glow)", r.Last().Circles)
	}
}

type fixedGrid struct{}

func (fixedGrid) Cols() int                 { return 4 }
func (fixedGrid) Rows() int                 { return 3 }
func (fixedGrid) Resolution() float64       { return 20 }
func (fixedGrid) Cell(i, j int) vmath.Vec2 { return vmath.V(1, float64(i-j)) }

// TestDrawFlowLines verifies one line per grid cell at visible opacity.
func TestDrawFlowLines(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Begin()
	DrawFlowLines(r, fixedGrid{}, 0.3)
	r.End()
	if r.Last().Lines != 12 {
		t.Errorf("lines = %d, want 12", r.Last().Lines)
	}

	r.Begin()
	DrawFlowLines(r, fixedGrid{}, 0)
	r.End()
	if r.Last().Lines != 0 {
		t.Errorf("zero opacity drew %d lines", r.Last().Lines)
	}
}

// TestDrawQuadtree verifies each node is outlined with four lines.
func TestDrawQuadtree(t *testing.T) {
	tree := spatial.NewQuadtree[int](spatial.Rect{W: 100, H: 100}, 1)
	for i, p := range []vmath.Vec2{vmath.V(10, 10), vmath.V(90, 10), vmath.V(10, 90)} {
		tree.Insert(p, i)
	}
	nodes := 0
	tree.Walk(func(spatial.Rect, int) { nodes++ })
	if nodes < 5 {
		t.Fatalf("nodes = %d, want a subdivided tree", nodes)
	}

	r := NewRecorder(100, 100)
	r.Begin()
	DrawQuadtree(r, tree, 0.4)
	r.End()
	if got := r.Last().Lines; got != 4*nodes {
		t.Errorf("lines = %d, want %d", got, 4*nodes)
	}

	r.Begin()
	DrawQuadtree(r, tree, 0)
	r.End()
	if r.Last().Lines != 0 {
		t.Errorf("zero opacity drew %d lines", r.Last().Lines)
	}
}

// TestRecorderTracksAdditive verifies blend state is recorded per call.
func TestRecorderTracksAdditive(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Begin()
	r.Circle(vmath.Zero, 1, color.RGBA{A: 255})
	r.SetBlend(BlendAdditive)
	r.Circle(vmath.Zero, 1, color.RGBA{A: 255})
	r.Line(vmath.Zero, vmath.V(1, 1), 1, color.RGBA{A: 255})
	r.End()

	if got := r.Last(); got.Circles != 2 || got.Lines != 1 || got.Additive != 2 {
		t.Errorf("stats = %+v", got)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d, want 1", r.Frames())
	}

	r.FailWith(ErrNoContext)
	if err := r.Ready(); !errors.Is(err, ErrNoContext) {
		t.Errorf("Ready = %v, want ErrNoContext", err)
	}
}

// TestLayerColor verifies layers differ, the global hue rotates colours and
// out-of-range layers reuse the last palette entry.
func TestLayerColor(t *testing.T) {
	palette := config.Default().Render.LayerPalette
	back := LayerColor(palette, 0, 0, 1)
	front := LayerColor(palette, len(palette)-1, 0, 1)
	if back == front {
		t.Errorf("back and front layers share colour %v", back)
	}
	if shifted := LayerColor(palette, 0, 120, 1); shifted == back {
		t.Errorf("global hue did not change the colour %v", back)
	}
	if over := LayerColor(palette, 99, 0, 1); over != front {
		t.Errorf("layer past palette = %v, want %v", over, front)
	}
	if c := LayerColor(palette, 0, 0, 0.5); c.A != 128 {
		t.Errorf("alpha = %d, want 128", c.A)
	}
}

// TestHCLWrapsHue verifies hues are taken modulo 360.
func TestHCLWrapsHue(t *testing.T) {
	if a, b := HCL(30, 50, 60, 1), HCL(390, 50, 60, 1); a != b {
		t.Errorf("HCL(30) = %v, HCL(390) = %v", a, b)
	}
	if a, b := HCL(-30, 50, 60, 1), HCL(330, 50, 60, 1); a != b {
		t.Errorf("HCL(-30) = %v, HCL(330) = %v", a, b)
	}
}

// TestBackground verifies channel clamping.
func TestBackground(t *testing.T) {
	got := Background([]int{-5, 300, 20})
	want := color.RGBA{R: 0, G: 255, B: 20, A: 255}
	if got != want {
		t.Errorf("Background = %v, want %v", got, want)
	}
}

func newSimTarget(t *testing.T) (tcell.SimulationScreen, *TerminalTarget) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 20)
	return screen, NewTerminalTarget(screen, 400, 200)
}

// TestTerminalTargetCircle verifies circles colour the covered cells and
// reach the screen.
func TestTerminalTargetCircle(t *testing.T) {
	screen, target := newSimTarget(t)
	if err := target.Ready(); err != nil {
		t.Fatalf("Ready: %v", err)
	}

	bg := color.RGBA{R: 6, G: 9, B: 20, A: 255}
	red := color.RGBA{R: 255, A: 255}
	target.Begin()
	target.Fade(bg, 1)
	target.Circle(vmath.V(200, 100), 30, red)
	target.End()

	if got := target.CellColor(20, 10); got != red {
		t.Errorf("centre cell = %v, want %v", got, red)
	}
	if got := target.CellColor(0, 0); got != bg {
		t.Errorf("corner cell = %v, want background %v", got, bg)
	}

	cells, w, _ := screen.GetContents()
	want := tcell.StyleDefault.Background(tcell.NewRGBColor(255, 0, 0))
	if got := cells[10*w+20].Style; got != want {
		t.Errorf("screen cell style = %v, want %v", got, want)
	}
}

// TestTerminalTargetFadeLeavesTrail verifies partial fades decay toward the
// background over several frames.
func TestTerminalTargetFadeLeavesTrail(t *testing.T) {
	_, target := newSimTarget(t)
	bg := color.RGBA{A: 255}

	target.Begin()
	target.Fade(bg, 1)
	target.Circle(vmath.V(200, 100), 30, color.RGBA{G: 200, A: 255})
	target.End()

	prev := target.CellColor(20, 10).G
	for i := 0; i < 5; i++ {
		target.Begin()
		target.Fade(bg, 0.3)
		target.End()
		g := target.CellColor(20, 10).G
		if g >= prev && prev > 0 {
			t.Fatalf("frame %d: green %d did not decay from %d", i, g, prev)
		}
		prev = g
	}
	if prev == 0 {
		t.Error("trail vanished after partial fades")
	}
}

// TestTerminalTargetAdditive verifies additive blending saturates.
func TestTerminalTargetAdditive(t *testing.T) {
	_, target := newSimTarget(t)
	target.Begin()
	target.Fade(color.RGBA{A: 255}, 1)
	target.SetBlend(BlendAdditive)
	for i := 0; i < 4; i++ {
		target.Circle(vmath.V(200, 100), 30, color.RGBA{B: 100, A: 255})
	}
	target.End()
	if got := target.CellColor(20, 10).B; got != 255 {
		t.Errorf("blue = %d, want saturated 255", got)
	}
}

// TestTerminalTargetNoScreen verifies the missing context error.
func TestTerminalTargetNoScreen(t *testing.T) {
	if err := NewTerminalTarget(nil, 10, 10).Ready(); !errors.Is(err, ErrNoContext) {
		t.Errorf("Ready = %v, want ErrNoContext", err)
	}
}
