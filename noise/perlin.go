// Package noise provides seeded coherent noise sources.
package noise

import (
	"math"

	"github.com/pthm-cable/streams/vmath"
)

// Source is a deterministic 3D noise field with output in [-1, 1].
type Source interface {
	Noise3(x, y, z float64) float64
}

// Perlin is classic gradient noise: a gradient per integer lattice point,
// blended across the unit cube with a quintic fade.
type Perlin struct {
	lat *lattice
}

// NewPerlin creates a Perlin generator. Equal seeds give equal fields.
func NewPerlin(seed int64) *Perlin {
	return &Perlin{lat: newLattice(seed)}
}

// Noise3 returns the noise value at (x, y, z).
func (p *Perlin) Noise3(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	i, j, k := int(fx)&255, int(fy)&255, int(fz)&255
	x, y, z = x-fx, y-fy, z-fz
	u, v, w := quintic(x), quintic(y), quintic(z)

	l := p.lat
	// Blend along x on the four cube edges, then y, then z.
	e00 := vmath.Lerp(l.dot(i, j, k, x, y, z), l.dot(i+1, j, k, x-1, y, z), u)
	e10 := vmath.Lerp(l.dot(i, j+1, k, x, y-1, z), l.dot(i+1, j+1, k, x-1, y-1, z), u)
	e01 := vmath.Lerp(l.dot(i, j, k+1, x, y, z-1), l.dot(i+1, j, k+1, x-1, y, z-1), u)
	e11 := vmath.Lerp(l.dot(i, j+1, k+1, x, y-1, z-1), l.dot(i+1, j+1, k+1, x-1, y-1, z-1), u)

	return clamp1(vmath.Lerp(vmath.Lerp(e00, e10, v), vmath.Lerp(e01, e11, v), w))
}

// quintic is 6t^5 - 15t^4 + 10t^3, flat in value and slope at 0 and 1.
func quintic(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
