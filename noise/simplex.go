package noise

import "math"

// Skew and unskew factors for three dimensions.
const (
	f3 = 1.0 / 3.0
	g3 = 1.0 / 6.0
)

// Simplex is 3D simplex noise over the same seeded lattice as Perlin.
type Simplex struct {
	lat *lattice
}

// NewSimplex creates a simplex generator.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{lat: newLattice(seed)}
}

// Noise3 returns the noise value at (x, y, z).
func (s *Simplex) Noise3(x, y, z float64) float64 {
	// Skew input space to find the containing simplex cell.
	sk := (x + y + z) * f3
	i := int(math.Floor(x + sk))
	j := int(math.Floor(y + sk))
	k := int(math.Floor(z + sk))

	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	// Rank the offsets to pick which of the six simplices we are in.
	var i1, j1, k1, i2, j2, k2 int
	if x0 >= y0 {
		switch {
		case y0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
		case x0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
		}
	} else {
		switch {
		case y0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
		case x0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
		}
	}

	x1 := x0 - float64(i1) + g3
	y1 := y0 - float64(j1) + g3
	z1 := z0 - float64(k1) + g3
	x2 := x0 - float64(i2) + 2*g3
	y2 := y0 - float64(j2) + 2*g3
	z2 := z0 - float64(k2) + 2*g3
	x3 := x0 - 1 + 3*g3
	y3 := y0 - 1 + 3*g3
	z3 := z0 - 1 + 3*g3

	ii := i & 255
	jj := j & 255
	kk := k & 255
	l := s.lat
	n := corner(l.gradient(ii, jj, kk), x0, y0, z0) +
		corner(l.gradient(ii+i1, jj+j1, kk+k1), x1, y1, z1) +
		corner(l.gradient(ii+i2, jj+j2, kk+k2), x2, y2, z2) +
		corner(l.gradient(ii+1, jj+1, kk+1), x3, y3, z3)

	return clamp1(32 * n)
}

func corner(g [3]float64, x, y, z float64) float64 {
	t := 0.6 - x*x - y*y - z*z
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (g[0]*x + g[1]*y + g[2]*z)
}
