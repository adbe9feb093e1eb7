package noise

import (
	"errors"
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Kinds accepted by New.
const (
	KindPerlin      = "perlin"
	KindSimplex     = "simplex"
	KindOpenSimplex = "opensimplex"
)

// ErrUnknownKind is returned by New for an unsupported generator name.
var ErrUnknownKind = errors.New("noise: unknown generator kind")

// New builds a seeded generator by name.
func New(kind string, seed int64) (Source, error) {
	switch kind {
	case KindPerlin, "":
		return NewPerlin(seed), nil
	case KindSimplex:
		return NewSimplex(seed), nil
	case KindOpenSimplex:
		return NewOpenSimplex(seed), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// OpenSimplex adapts opensimplex-go to Source.
type OpenSimplex struct {
	n opensimplex.Noise
}

// NewOpenSimplex creates an OpenSimplex generator.
func NewOpenSimplex(seed int64) *OpenSimplex {
	return &OpenSimplex{n: opensimplex.New(seed)}
}

// Noise3 returns the noise value at (x, y, z).
func (o *OpenSimplex) Noise3(x, y, z float64) float64 {
	return clamp1(o.n.Eval3(x, y, z))
}

// FBM layers octaves of a base source. Each octave multiplies the frequency
// by Lacunarity and the amplitude by Gain; the sum is normalised by the
// total amplitude so the result stays in [-1, 1].
type FBM struct {
	Src        Source
	Octaves    int
	Lacunarity float64
	Gain       float64
}

// NewFBM returns an FBM with the usual doubling frequency and halving amplitude.
func NewFBM(src Source, octaves int) FBM {
	return FBM{Src: src, Octaves: octaves, Lacunarity: 2, Gain: 0.5}
}

// Noise3 returns the fractal noise value at (x, y, z).
func (f FBM) Noise3(x, y, z float64) float64 {
	octaves := f.Octaves
	if octaves < 1 {
		octaves = 1
	}
	lac := f.Lacunarity
	if lac <= 0 {
		lac = 2
	}
	gain := f.Gain
	if gain <= 0 {
		gain = 0.5
	}

	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * f.Src.Noise3(x*freq, y*freq, z*freq)
		norm += amp
		amp *= gain
		freq *= lac
	}
	return clamp1(sum / norm)
}
