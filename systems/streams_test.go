package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

// constantFlow is a uniform field.
type constantFlow vmath.Vec2

func (c constantFlow) Flow(x, y float64) vmath.Vec2 { return vmath.Vec2(c) }

func newTestStreams(count, layers int) *StreamSystem {
	s := NewStreamSystem(config.Default().Streams, layers, rand.New(rand.NewSource(9)))
	s.Populate(count, layers, 800, 600)
	return s
}

// TestPopulateLayers verifies streams are spread across layers and start
// with a single trail point inside the canvas.
func TestPopulateLayers(t *testing.T) {
	s := newTestStreams(30, 3)
	if s.Count() != 30 {
		t.Fatalf("count = %d, want 30", s.Count())
	}
	perLayer := make([]int, 3)
	for _, p := range s.Particles() {
		perLayer[p.Layer]++
		if p.Trail.Len() != 1 {
			t.Errorf("fresh trail length = %d, want 1", p.Trail.Len())
		}
		if p.Pos.X < 0 || p.Pos.X > 800 || p.Pos.Y < 0 || p.Pos.Y > 600 {
			t.Errorf("spawned outside canvas at %v", p.Pos)
		}
	}
	for layer, n := range perLayer {
		if n != 10 {
			t.Errorf("layer %d has %d streams, want 10", layer, n)
		}
	}
	if s.LayerSpeed(0) >= s.LayerSpeed(2) {
		t.Error("back layer should be slower than the front layer")
	}
}

// TestStreamFollowsFlow verifies velocity converges toward the flow.
func TestStreamFollowsFlow(t *testing.T) {
	s := newTestStreams(1, 1)
	s.particles[0].Pos = vmath.V(100, 300)
	s.particles[0].Age = 0
	s.particles[0].Lifespan = 1e9
	flow := constantFlow(vmath.V(1, 0))

	for i := 0; i < 60; i++ {
		s.Update(testFrame(float64(i)*0.016), flow, nil)
	}
	p := s.Particles()[0]
	if p.Vel.X <= 0 || p.Pos.X <= 100 {
		t.Errorf("stream did not move with the flow: pos %v vel %v", p.Pos, p.Vel)
	}
	if p.Trail.Len() < 2 {
		t.Errorf("trail length = %d, want growth", p.Trail.Len())
	}
}

// TestStreamRespawnResetsTrail verifies a stream leaving the canvas comes
// back with exactly one trail point.
func TestStreamRespawnResetsTrail(t *testing.T) {
	s := newTestStreams(1, 1)
	p := &s.particles[0]
	p.Lifespan = 1e9
	for i := 0; i < 5; i++ {
		p.Trail.Push(vmath.V(float64(i), 0))
	}
	p.Pos = vmath.V(790, 300)
	p.Vel = vmath.V(200, 0)

	if n := s.Update(testFrame(0.016), constantFlow(vmath.V(200, 0)), nil); n != 1 {
		t.Fatalf("respawned %d, want 1", n)
	}
	if p.Trail.Len() != 1 {
		t.Errorf("trail length after respawn = %d, want 1", p.Trail.Len())
	}
	if p.Trail.At(0) != p.Pos {
		t.Errorf("trail head %v != position %v", p.Trail.At(0), p.Pos)
	}
	if p.Age != 0 {
		t.Errorf("age after respawn = %v, want 0", p.Age)
	}
}

// TestStreamRespawnOnLifeEnd verifies end of life respawns in place.
func TestStreamRespawnOnLifeEnd(t *testing.T) {
	s := newTestStreams(1, 1)
	p := &s.particles[0]
	p.Pos = vmath.V(400, 300)
	p.Age = p.Lifespan - 1

	s.Update(testFrame(0.016), constantFlow(vmath.Zero), nil)
	if p.Age != 0 || p.Trail.Len() != 1 {
		t.Errorf("after end of life: age %v trail %d", p.Age, p.Trail.Len())
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, streams are never destroyed", s.Count())
	}
}

// TestStreamExtraForce verifies the extra contribution is applied.
func TestStreamExtraForce(t *testing.T) {
	s := newTestStreams(1, 1)
	p := &s.particles[0]
	p.Pos = vmath.V(400, 300)
	p.Lifespan = 1e9
	s.Update(testFrame(0.016), constantFlow(vmath.Zero), func(int, *components.StreamParticle) vmath.Vec2 {
		return vmath.V(0, 1)
	})
	if p.Vel.Y <= 0 {
		t.Errorf("vel = %v, want positive Y", p.Vel)
	}
}

// TestStreamResize verifies streams outside a shrunken canvas are moved in.
func TestStreamResize(t *testing.T) {
	s := newTestStreams(50, 2)
	s.Resize(200, 150)
	for _, p := range s.Particles() {
		if (Bounds{Width: 200, Height: 150}).Outside(p.Pos, s.cfg.Margin) {
			t.Fatalf("stream left outside after resize at %v", p.Pos)
		}
	}
}
