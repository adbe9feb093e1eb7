package spatial

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/streams/vmath"
)

func TestInsertOutsideBounds(t *testing.T) {
	q := NewQuadtree[int](Rect{W: 100, H: 100}, 4)
	assert.False(t, q.Insert(vmath.V(-1, 50), 1))
	assert.False(t, q.Insert(vmath.V(50, 101), 2))
	assert.True(t, q.Insert(vmath.V(100, 100), 3), "far corner is inside")
	assert.Equal(t, 1, q.Len())
}

func TestSubdividesOnceOverCapacity(t *testing.T) {
	q := NewQuadtree[int](Rect{W: 100, H: 100}, 4)
	for i := 0; i < 4; i++ {
		require.True(t, q.Insert(vmath.V(float64(10+i), 10), i))
	}
	assert.False(t, q.Divided(), "at capacity the node still holds items directly")

	require.True(t, q.Insert(vmath.V(90, 90), 4))
	assert.True(t, q.Divided())
	assert.Empty(t, q.items, "items move to children after subdivision")
	assert.Equal(t, 5, q.Len())

	// Children are not split eagerly.
	for _, c := range q.children {
		assert.False(t, c.Divided())
	}
}

func TestCoincidentPointsTerminate(t *testing.T) {
	q := NewQuadtree[int](Rect{W: 10, H: 10}, 1)
	for i := 0; i < 200; i++ {
		require.True(t, q.Insert(vmath.V(5, 5), i))
	}
	assert.Equal(t, 200, q.Len())
	assert.Len(t, q.Query(vmath.V(5, 5), 0.5), 200)
}

func TestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bounds := Rect{W: 1280, H: 720}

	for trial := 0; trial < 20; trial++ {
		n := 50 + rng.Intn(500)
		q := NewQuadtree[int](bounds, DefaultCapacity)
		pts := make([]vmath.Vec2, n)
		for i := range pts {
			pts[i] = vmath.V(rng.Float64()*bounds.W, rng.Float64()*bounds.H)
			require.True(t, q.Insert(pts[i], i))
		}

		for k := 0; k < 30; k++ {
			center := vmath.V(rng.Float64()*bounds.W, rng.Float64()*bounds.H)
			radius := rng.Float64() * 200

			var want []int
			for i, p := range pts {
				if p.Dist(center) < radius {
					want = append(want, i)
				}
			}

			var got []int
			for _, it := range q.Query(center, radius) {
				got = append(got, it.Value)
			}
			sort.Ints(got)

			assert.Equal(t, want, got, "trial %d query %d", trial, k)
		}
	}
}

func TestQueryIntoReusesBuffer(t *testing.T) {
	q := NewQuadtree[string](Rect{W: 10, H: 10}, 2)
	q.Insert(vmath.V(1, 1), "a")
	q.Insert(vmath.V(2, 2), "b")
	q.Insert(vmath.V(9, 9), "c")

	buf := make([]Item[string], 0, 8)
	buf = q.QueryInto(buf[:0], vmath.V(1.5, 1.5), 2)
	assert.Len(t, buf, 2)
	buf = q.QueryInto(buf[:0], vmath.V(9, 9), 0.1)
	require.Len(t, buf, 1)
	assert.Equal(t, "c", buf[0].Value)
	assert.Empty(t, q.Query(vmath.V(5, 5), 0))
}

func TestRectDistSq(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 10, H: 10}
	assert.Equal(t, 0.0, r.DistSq(vmath.V(15, 15)))
	assert.Equal(t, 25.0, r.DistSq(vmath.V(5, 15)))
	assert.Equal(t, 50.0, r.DistSq(vmath.V(25, 25)))
}
