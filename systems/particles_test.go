package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

func testFrame(now float64) Frame {
	return Frame{Now: now, DT: 0.016, Width: 800, Height: 600}
}

// TestIntegrateAgeIncreases verifies age advances by the frame delta and
// acceleration is consumed.
func TestIntegrateAgeIncreases(t *testing.T) {
	k := components.Kinematics{Pos: vmath.V(10, 10), Acc: vmath.V(0.5, 0)}
	l := components.Life{Lifetime: 1000}
	fr := testFrame(0)

	prev := l.Age
	for i := 0; i < 10; i++ {
		Integrate(&k, &l, fr.Steps(), fr.DTMillis(), 2, 0.98)
		if l.Age <= prev {
			t.Fatalf("age did not increase: %v -> %v", prev, l.Age)
		}
		prev = l.Age
		if !k.Acc.IsZero() {
			t.Fatalf("acceleration not reset: %v", k.Acc)
		}
		if k.Vel.Mag() > 2+1e-9 {
			t.Fatalf("speed %v exceeds max", k.Vel.Mag())
		}
	}
	if math.Abs(l.Age-160) > 1e-9 {
		t.Errorf("age = %v, want 160", l.Age)
	}
}

// TestApplyForceUsesMass verifies heavier bodies accelerate less.
func TestApplyForceUsesMass(t *testing.T) {
	light := components.NewBody(1)
	heavy := components.NewBody(10)
	var kl, kh components.Kinematics
	f := vmath.V(1, 0)
	ApplyForce(&kl, &light, f)
	ApplyForce(&kh, &heavy, f)
	if kl.Acc.X <= kh.Acc.X {
		t.Errorf("light acc %v should exceed heavy acc %v", kl.Acc.X, kh.Acc.X)
	}
	if want := 1 / components.MinMass; math.Abs(kl.Acc.X-want) > 1e-9 {
		t.Errorf("light acc = %v, want %v", kl.Acc.X, want)
	}
}

// TestEnvelopePhases verifies ease-in, plateau and ease-out.
func TestEnvelopePhases(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		want float64
	}{
		{"born", 0, 0},
		{"plateau", 500, 1},
		{"dead", 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Envelope(tt.age, 1000, 0.2, 0.2); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Envelope(%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}

	// Monotone through the fade in.
	prev := -1.0
	for age := 0.0; age <= 200; age += 10 {
		got := Envelope(age, 1000, 0.2, 0.2)
		if got < prev {
			t.Errorf("fade in not monotone at %v", age)
		}
		prev = got
	}
	if got := Envelope(10, 0, 0.2, 0.2); got != 0 {
		t.Errorf("zero lifetime envelope = %v, want 0", got)
	}
}

// TestPulseRange verifies the pulse stays within [1-amount, 1].
func TestPulseRange(t *testing.T) {
	for now := 0.0; now < 20; now += 0.1 {
		p := Pulse(now, 1.3, 0.15)
		if p < 0.85-1e-9 || p > 1+1e-9 {
			t.Fatalf("Pulse(%v) = %v", now, p)
		}
	}
	if Pulse(3, 0, 0) != 1 {
		t.Error("zero amount should disable the pulse")
	}
}

// TestBoundaryForcePointsInward verifies the soft boundary pushes back.
func TestBoundaryForcePointsInward(t *testing.T) {
	f := BoundaryForce(vmath.V(5, 595), 800, 600, 40, 0.05)
	if f.X <= 0 || f.Y >= 0 {
		t.Errorf("corner force = %v, want +X -Y", f)
	}
	if got := BoundaryForce(vmath.V(400, 300), 800, 600, 40, 0.05); !got.IsZero() {
		t.Errorf("interior force = %v, want zero", got)
	}
}

func newTestParticleSystem() *ParticleSystem {
	return NewParticleSystem(config.Default().Particles, rand.New(rand.NewSource(5)))
}

// TestSpawnHeadsInward verifies interior spawns head toward the canvas
// centre and edge spawns move into the canvas.
func TestSpawnHeadsInward(t *testing.T) {
	const w, h = 800.0, 600.0
	centre := vmath.V(w/2, h/2)

	cfg := config.Default().Particles
	cfg.EdgeSpawnChance = 0
	interior := NewParticleSystem(cfg, rand.New(rand.NewSource(11)))
	interior.Fill(200, w, h)
	interior.Each(func(k *components.Kinematics, _ *components.Body, _ *components.Appearance, _ *components.Life) {
		in := centre.Sub(k.Pos).Normalize()
		if cos := k.Vel.Normalize().Dot(in); cos < math.Cos(math.Pi/3)-1e-9 {
			t.Errorf("interior spawn at %v heads %v, cos to centre %.2f", k.Pos, k.Vel, cos)
		}
	})

	cfg.EdgeSpawnChance = 1
	edge := NewParticleSystem(cfg, rand.New(rand.NewSource(11)))
	edge.Fill(200, w, h)
	edge.Each(func(k *components.Kinematics, _ *components.Body, _ *components.Appearance, _ *components.Life) {
		var inward bool
		switch {
		case k.Pos.X == 0:
			inward = k.Vel.X > 0
		case k.Pos.X == w:
			inward = k.Vel.X < 0
		case k.Pos.Y == 0:
			inward = k.Vel.Y > 0
		default:
			inward = k.Pos.Y == h && k.Vel.Y < 0
		}
		if !inward {
			t.Errorf("edge spawn at %v heads %v, want into the canvas", k.Pos, k.Vel)
		}
	})
}

// TestParticleSystemFillAndExpire verifies spawning reaches the target and
// expired particles are removed on the next update.
func TestParticleSystemFillAndExpire(t *testing.T) {
	s := newTestParticleSystem()
	if n := s.Fill(30, 800, 600); n != 30 || s.Count() != 30 {
		t.Fatalf("Fill spawned %d, count %d", n, s.Count())
	}

	// Age every particle past its lifetime.
	s.Each(func(_ *components.Kinematics, _ *components.Body, _ *components.Appearance, l *components.Life) {
		l.Age = l.Lifetime
	})
	removed := s.Update(testFrame(1), nil)
	if removed != 30 || s.Count() != 0 {
		t.Errorf("removed %d, count %d; want all expired gone", removed, s.Count())
	}

	live := 0
	s.Each(func(*components.Kinematics, *components.Body, *components.Appearance, *components.Life) { live++ })
	if live != 0 {
		t.Errorf("%d entities still iterate after removal", live)
	}
}

// TestParticleSystemRemovesOutOfBounds verifies particles beyond the margin
// are destroyed while those inside survive.
func TestParticleSystemRemovesOutOfBounds(t *testing.T) {
	s := newTestParticleSystem()
	s.Fill(10, 800, 600)
	moved := 0
	s.Each(func(k *components.Kinematics, _ *components.Body, _ *components.Appearance, _ *components.Life) {
		if moved < 4 {
			k.Pos = vmath.V(-1000, 300)
			k.Vel = vmath.Zero
			moved++
		} else {
			k.Pos = vmath.V(400, 300)
		}
	})
	s.Update(testFrame(0.016), nil)
	if s.Count() != 6 {
		t.Errorf("count = %d, want 6", s.Count())
	}
}

// TestParticleSystemForceIndexMatchesSnapshot verifies the force callback
// index lines up with the Boids snapshot.
func TestParticleSystemForceIndexMatchesSnapshot(t *testing.T) {
	s := newTestParticleSystem()
	s.Fill(20, 800, 600)
	boids := s.Boids(nil)
	if len(boids) != 20 {
		t.Fatalf("snapshot has %d boids", len(boids))
	}
	s.Update(testFrame(0.016), func(i int, k *components.Kinematics, _ *components.Body) vmath.Vec2 {
		if boids[i].Pos != k.Pos {
			t.Errorf("index %d: snapshot %v, live %v", i, boids[i].Pos, k.Pos)
		}
		return vmath.Zero
	})
}

// TestViewsSortedBySize verifies render order is small to large.
func TestViewsSortedBySize(t *testing.T) {
	s := newTestParticleSystem()
	s.Fill(50, 800, 600)
	views := s.Views(1)
	if len(views) != 50 {
		t.Fatalf("views = %d, want 50", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].Size < views[i-1].Size {
			t.Fatalf("views not sorted at %d", i)
		}
	}
	for _, v := range views {
		if v.Opacity < 0 || v.Opacity > 1 {
			t.Fatalf("opacity %v out of range", v.Opacity)
		}
	}
}

// TestClear verifies Clear empties the world.
func TestClear(t *testing.T) {
	s := newTestParticleSystem()
	s.Fill(15, 800, 600)
	s.Clear()
	if s.Count() != 0 || len(s.Boids(nil)) != 0 {
		t.Errorf("count %d after Clear", s.Count())
	}
}
