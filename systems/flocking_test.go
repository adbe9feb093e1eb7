package systems

import (
	"testing"

	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

func newTestFlocking() *Flocking {
	return NewFlocking(config.Default().Flocking)
}

// TestFlockingNoNeighbors verifies every rule is zero without neighbours.
func TestFlockingNoNeighbors(t *testing.T) {
	f := newTestFlocking()
	self := Boid{Pos: vmath.V(10, 10), Vel: vmath.V(1, 0)}

	if got := f.Calculate(self, nil); !got.IsZero() {
		t.Errorf("Calculate with no neighbours = %v, want zero", got)
	}

	// A neighbour outside every radius also contributes nothing.
	far := []Boid{{Pos: vmath.V(1000, 1000), Vel: vmath.V(0, 1)}}
	for name, got := range map[string]vmath.Vec2{
		"separation": f.Separation(self, far),
		"alignment":  f.Alignment(self, far),
		"cohesion":   f.Cohesion(self, far),
	} {
		if !got.IsZero() {
			t.Errorf("%s with out-of-range neighbour = %v, want zero", name, got)
		}
	}
}

// TestSeparationPushesAway verifies a close neighbour on the right pushes left.
func TestSeparationPushesAway(t *testing.T) {
	f := newTestFlocking()
	self := Boid{Pos: vmath.V(0, 0)}
	got := f.Separation(self, []Boid{{Pos: vmath.V(5, 0)}})
	if got.X >= 0 {
		t.Errorf("separation = %v, want negative X", got)
	}
	if got.Mag() > f.cfg.MaxForce+1e-9 {
		t.Errorf("separation magnitude %v exceeds max force %v", got.Mag(), f.cfg.MaxForce)
	}
}

// TestCoincidentNeighbor verifies overlapping positions do not produce NaN.
func TestCoincidentNeighbor(t *testing.T) {
	f := newTestFlocking()
	self := Boid{Pos: vmath.V(3, 3), Vel: vmath.V(0.5, 0)}
	got := f.Calculate(self, []Boid{{Pos: vmath.V(3, 3), Vel: vmath.V(0, 0.5)}})
	if !got.IsFinite() {
		t.Errorf("Calculate with coincident neighbour = %v", got)
	}
}

// TestAlignmentMatchesHeading verifies alignment steers toward the
// neighbours' average velocity.
func TestAlignmentMatchesHeading(t *testing.T) {
	f := newTestFlocking()
	self := Boid{Pos: vmath.V(0, 0), Vel: vmath.V(1, 0)}
	got := f.Alignment(self, []Boid{
		{Pos: vmath.V(10, 0), Vel: vmath.V(0, 1)},
		{Pos: vmath.V(-10, 0), Vel: vmath.V(0, 1)},
	})
	if got.Y <= 0 {
		t.Errorf("alignment = %v, want positive Y", got)
	}
	if got.Mag() > f.cfg.MaxForce+1e-9 {
		t.Errorf("alignment magnitude %v exceeds max force", got.Mag())
	}
}

// TestCohesionSeeksCentroid verifies cohesion points at the neighbour centroid.
func TestCohesionSeeksCentroid(t *testing.T) {
	f := newTestFlocking()
	self := Boid{Pos: vmath.V(0, 0)}
	got := f.Cohesion(self, []Boid{
		{Pos: vmath.V(30, 10)},
		{Pos: vmath.V(30, -10)},
	})
	if got.X <= 0 || got.Y > 1e-9 || got.Y < -1e-9 {
		t.Errorf("cohesion = %v, want +X only", got)
	}
}
