package noise

import "math/rand"

// Gradients at the midpoints of a cube's edges, shared by the lattice noises.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// lattice is a seeded permutation of 0..255, doubled so chained lookups
// never need wrapping.
type lattice [512]int

func newLattice(seed int64) *lattice {
	rng := rand.New(rand.NewSource(seed))
	var l lattice
	for i := 0; i < 256; i++ {
		l[i] = i
	}
	for i := 255; i > 0; i-- {
		j := rng.Intn(i + 1)
		l[i], l[j] = l[j], l[i]
	}
	copy(l[256:], l[:256])
	return &l
}

// gradient picks the gradient for lattice point (i, j, k). Coordinates
// must already be wrapped to 0..255, plus at most one.
func (l *lattice) gradient(i, j, k int) [3]float64 {
	return grad3[l[i+l[j+l[k]]]%12]
}

// dot is the gradient at (i, j, k) dotted with the offset (x, y, z) from it.
func (l *lattice) dot(i, j, k int, x, y, z float64) float64 {
	g := l.gradient(i, j, k)
	return g[0]*x + g[1]*y + g[2]*z
}

func clamp1(n float64) float64 {
	if n > 1 {
		return 1
	}
	if n < -1 {
		return -1
	}
	return n
}
