package components

import "github.com/pthm-cable/streams/vmath"

// ConfluencePoint is a vortex attractor placed at a fraction of the canvas.
// Its influence falls off quadratically to zero at Radius.
type ConfluencePoint struct {
	FX, FY    float64 // position as a fraction of width / height
	Pos       vmath.Vec2
	Strength  float64
	Radius    float64
	Clockwise bool
}

// Place derives Pos from the canvas size.
func (c *ConfluencePoint) Place(w, h float64) {
	c.Pos = vmath.V(c.FX*w, c.FY*h)
}

// WindPuff is a short-lived gust emitted from a canvas edge. Times are seconds.
type WindPuff struct {
	Origin   vmath.Vec2
	Dir      vmath.Vec2 // unit
	Start    float64
	Duration float64
	Strength float64
	Radius   float64
	Speed    float64 // px/s the puff centre travels along Dir
}

// Age returns seconds since the puff started.
func (p WindPuff) Age(now float64) float64 { return now - p.Start }

// Expired reports whether the puff has run its course.
func (p WindPuff) Expired(now float64) bool { return p.Age(now) > p.Duration }

// Center returns the puff centre at time now.
func (p WindPuff) Center(now float64) vmath.Vec2 {
	return p.Origin.Add(p.Dir.Mul(p.Speed * p.Age(now)))
}

// Wave is a travelling band of force perpendicular to Dir.
type Wave struct {
	Origin    vmath.Vec2
	Dir       vmath.Vec2 // unit
	Start     float64
	Duration  float64
	Strength  float64
	Speed     float64 // px/s
	Amplitude float64
	Width     float64 // band half-width in px
}

// Front returns the wavefront position at time now.
func (w Wave) Front(now float64) vmath.Vec2 {
	return w.Origin.Add(w.Dir.Mul(w.Speed * (now - w.Start)))
}

// Expired reports whether the wave has timed out or its front has left the
// canvas (a width x height rectangle at the origin).
func (w Wave) Expired(now, width, height float64) bool {
	if now-w.Start > w.Duration {
		return true
	}
	f := w.Front(now)
	m := w.Width
	return f.X < -m || f.X > width+m || f.Y < -m || f.Y > height+m
}
