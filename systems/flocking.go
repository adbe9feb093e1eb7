package systems

import (
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

// Boid is the view of a particle the flocking rules need.
type Boid struct {
	Pos vmath.Vec2
	Vel vmath.Vec2
}

// Flocking computes separation, alignment and cohesion steering forces.
// Neighbour sets come from the caller's spatial query and must exclude self.
type Flocking struct {
	cfg config.FlockingConfig
}

// NewFlocking creates a flocking system.
func NewFlocking(cfg config.FlockingConfig) *Flocking {
	return &Flocking{cfg: cfg}
}

// Perception returns the neighbour query radius.
func (f *Flocking) Perception() float64 {
	return f.cfg.Perception
}

// Calculate returns the weighted sum of the three rules.
func (f *Flocking) Calculate(self Boid, neighbors []Boid) vmath.Vec2 {
	if len(neighbors) == 0 {
		return vmath.Zero
	}
	c := &f.cfg
	return f.Separation(self, neighbors).Mul(c.SeparationWeight).
		Add(f.Alignment(self, neighbors).Mul(c.AlignmentWeight)).
		Add(f.Cohesion(self, neighbors).Mul(c.CohesionWeight))
}

// steer turns a desired heading into a force: desired velocity at max speed
// minus the current velocity, limited to the max force.
func (f *Flocking) steer(self Boid, desired vmath.Vec2) vmath.Vec2 {
	return desired.SetMag(f.cfg.MaxSpeed).Sub(self.Vel).Limit(f.cfg.MaxForce)
}

// Separation steers away from neighbours closer than the separation
// distance, weighting nearer ones more.
func (f *Flocking) Separation(self Boid, neighbors []Boid) vmath.Vec2 {
	var sum vmath.Vec2
	n := 0
	for _, o := range neighbors {
		d := self.Pos.Dist(o.Pos)
		if d <= 0 || d >= f.cfg.SeparationDistance {
			continue
		}
		away := self.Pos.Sub(o.Pos).Normalize().Div(d)
		sum = sum.Add(away)
		n++
	}
	if n == 0 {
		return vmath.Zero
	}
	sum = sum.Div(float64(n))
	if sum.IsZero() {
		return vmath.Zero
	}
	return f.steer(self, sum)
}

// Alignment steers toward the average heading of neighbours in perception range.
func (f *Flocking) Alignment(self Boid, neighbors []Boid) vmath.Vec2 {
	var sum vmath.Vec2
	n := 0
	for _, o := range neighbors {
		if self.Pos.DistSq(o.Pos) >= f.cfg.Perception*f.cfg.Perception {
			continue
		}
		sum = sum.Add(o.Vel)
		n++
	}
	if n == 0 {
		return vmath.Zero
	}
	return f.steer(self, sum.Div(float64(n)))
}

// Cohesion steers toward the centroid of neighbours in perception range.
func (f *Flocking) Cohesion(self Boid, neighbors []Boid) vmath.Vec2 {
	var sum vmath.Vec2
	n := 0
	for _, o := range neighbors {
		if self.Pos.DistSq(o.Pos) >= f.cfg.Perception*f.cfg.Perception {
			continue
		}
		sum = sum.Add(o.Pos)
		n++
	}
	if n == 0 {
		return vmath.Zero
	}
	return f.steer(self, sum.Div(float64(n)).Sub(self.Pos))
}
