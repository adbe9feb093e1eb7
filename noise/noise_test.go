package noise

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func allSources(seed int64) map[string]Source {
	return map[string]Source{
		KindPerlin:      NewPerlin(seed),
		KindSimplex:     NewSimplex(seed),
		KindOpenSimplex: NewOpenSimplex(seed),
		"fbm":           NewFBM(NewPerlin(seed), 4),
	}
}

func TestDeterminism(t *testing.T) {
	a := allSources(1234)
	b := allSources(1234)
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 200; i++ {
		x := rng.Float64()*200 - 100
		y := rng.Float64()*200 - 100
		z := rng.Float64() * 50
		for name := range a {
			va := a[name].Noise3(x, y, z)
			vb := b[name].Noise3(x, y, z)
			if math.Float64bits(va) != math.Float64bits(vb) {
				t.Fatalf("%s: same seed gave %v and %v at (%v,%v,%v)", name, va, vb, x, y, z)
			}
			// Repeated call on the same instance.
			if again := a[name].Noise3(x, y, z); math.Float64bits(again) != math.Float64bits(va) {
				t.Fatalf("%s: repeated call changed output", name)
			}
		}
	}
}

func TestRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for name, src := range allSources(77) {
		for i := 0; i < 5000; i++ {
			v := src.Noise3(rng.Float64()*64, rng.Float64()*64, rng.Float64()*64)
			if v < -1 || v > 1 || math.IsNaN(v) {
				t.Fatalf("%s: value %v out of [-1, 1]", name, v)
			}
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := NewSimplex(1)
	b := NewSimplex(2)
	same := 0
	for i := 0; i < 50; i++ {
		x := float64(i) * 0.37
		if a.Noise3(x, 1.5, 0.25) == b.Noise3(x, 1.5, 0.25) {
			same++
		}
	}
	if same == 50 {
		t.Error("different seeds produced identical fields")
	}
}

func TestPerlinZeroAtLattice(t *testing.T) {
	p := NewPerlin(3)
	// Gradient noise vanishes at integer lattice points.
	for i := 0; i < 10; i++ {
		if v := p.Noise3(float64(i), float64(2*i), 3); v != 0 {
			t.Errorf("Noise3 at lattice point %d = %v, want 0", i, v)
		}
	}
}

func TestFBMSingleOctaveMatchesBase(t *testing.T) {
	base := NewPerlin(11)
	f := NewFBM(base, 1)
	for i := 0; i < 20; i++ {
		x, y := float64(i)*0.13, float64(i)*0.29
		if got, want := f.Noise3(x, y, 0.5), base.Noise3(x, y, 0.5); got != want {
			t.Errorf("fbm(1 octave) = %v, want %v", got, want)
		}
	}
}

func TestNewKinds(t *testing.T) {
	for _, kind := range []string{KindPerlin, KindSimplex, KindOpenSimplex, ""} {
		if _, err := New(kind, 1); err != nil {
			t.Errorf("New(%q) returned %v", kind, err)
		}
	}
	if _, err := New("worley", 1); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
