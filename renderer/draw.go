package renderer

import (
	"image/color"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/spatial"
	"github.com/pthm-cable/streams/vmath"
)

// Glow rings, outermost first. Overlapping rings give a soft falloff.
var glowRings = [...]float64{1, 0.72, 0.45}

// Glow configures the soft halo drawn under particles.
type Glow struct {
	Scale float64 // halo radius as a multiple of the particle size
	Alpha float64 // halo opacity relative to the core
}

// drawGlow draws the halo as overlapping translucent rings.
func drawGlow(t Target, pos vmath.Vec2, size float64, c color.RGBA, g Glow) {
	if g.Scale <= 1 || g.Alpha <= 0 {
		return
	}
	ring := c
	ring.A = uint8(float64(c.A) * g.Alpha / float64(len(glowRings)))
	if ring.A == 0 {
		return
	}
	for _, f := range glowRings {
		t.Circle(pos, size*(1+(g.Scale-1)*f), ring)
	}
}

// DrawParticle draws a glow pass followed by the solid core.
func DrawParticle(t Target, pos vmath.Vec2, size float64, c color.RGBA, g Glow) {
	if c.A == 0 {
		return
	}
	drawGlow(t, pos, size, c, g)
	t.Circle(pos, size, c)
}

// DrawStream draws a stream's trail as segments whose opacity and width fall
// off quadratically with age, then its glow and core.
func DrawStream(t Target, p *components.StreamParticle, c color.RGBA, g Glow) {
	if c.A == 0 {
		return
	}
	n := p.Trail.Len()
	for j := 0; j < n-1; j++ {
		fade := 1 - float64(j+1)/float64(n)
		fade *= fade
		seg := c
		seg.A = uint8(float64(c.A) * fade)
		if seg.A == 0 {
			continue
		}
		t.Line(p.Trail.At(j), p.Trail.At(j+1), p.Size*2*fade, seg)
	}
	DrawParticle(t, p.Pos, p.Size, c, g)
}

// FlowGrid is a grid of flow vectors, as exposed by the flow field.
type FlowGrid interface {
	Cols() int
	Rows() int
	Resolution() float64
	Cell(i, j int) vmath.Vec2
}

// DrawFlowLines draws one short line per grid cell along the flow.
func DrawFlowLines(t Target, grid FlowGrid, opacity float64) {
	c := WithAlpha(color.RGBA{R: 200, G: 220, B: 255}, opacity)
	if c.A == 0 {
		return
	}
	res := grid.Resolution()
	for j := 0; j < grid.Rows(); j++ {
		for i := 0; i < grid.Cols(); i++ {
			dir := grid.Cell(i, j).Normalize()
			if dir.IsZero() {
				continue
			}
			from := vmath.V(float64(i)*res, float64(j)*res)
			t.Line(from, from.Add(dir.Mul(res*0.45)), 1, c)
		}
	}
}

// NodeWalker visits the nodes of a spatial index.
type NodeWalker interface {
	Walk(fn func(bounds spatial.Rect, items int))
}

// DrawQuadtree outlines every node of the neighbour index.
func DrawQuadtree(t Target, tree NodeWalker, opacity float64) {
	c := WithAlpha(color.RGBA{R: 255, G: 190, B: 120}, opacity)
	if c.A == 0 {
		return
	}
	tree.Walk(func(b spatial.Rect, _ int) {
		tl, tr := vmath.V(b.X, b.Y), vmath.V(b.X+b.W, b.Y)
		bl, br := vmath.V(b.X, b.Y+b.H), vmath.V(b.X+b.W, b.Y+b.H)
		t.Line(tl, tr, 1, c)
		t.Line(tr, br, 1, c)
		t.Line(br, bl, 1, c)
		t.Line(bl, tl, 1, c)
	})
}
