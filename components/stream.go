package components

import "github.com/pthm-cable/streams/vmath"

// MaxTrail is the largest trail a stream particle can carry.
const MaxTrail = 32

// Trail is a bounded history of positions, most recent first.
type Trail struct {
	pts   [MaxTrail]vmath.Vec2
	n     int
	limit int
}

// NewTrail creates an empty trail holding at most limit points.
func NewTrail(limit int) Trail {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxTrail {
		limit = MaxTrail
	}
	return Trail{limit: limit}
}

// Push records p as the newest point, dropping the oldest beyond the limit.
func (t *Trail) Push(p vmath.Vec2) {
	if t.limit == 0 {
		t.limit = 1
	}
	end := t.n
	if end >= t.limit {
		end = t.limit - 1
	}
	for i := end; i > 0; i-- {
		t.pts[i] = t.pts[i-1]
	}
	t.pts[0] = p
	if t.n < t.limit {
		t.n++
	}
}

// Reset clears the trail and seeds it with p.
func (t *Trail) Reset(p vmath.Vec2) {
	t.n = 0
	t.Push(p)
}

// Len returns the number of stored points.
func (t *Trail) Len() int { return t.n }

// Limit returns the maximum number of points.
func (t *Trail) Limit() int { return t.limit }

// At returns point i, where 0 is the most recent.
func (t *Trail) At(i int) vmath.Vec2 { return t.pts[i] }

// StreamParticle is a flow-following particle drawn on a depth layer.
type StreamParticle struct {
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	Layer    int
	Age      float64 // ms
	Lifespan float64 // ms
	Size     float64
	Opacity  float64
	Trail    Trail
}
