// Package spatial provides the quadtree used for per-frame neighbour queries.
package spatial

import "github.com/pthm-cable/streams/vmath"

// DefaultCapacity is the number of items a node holds before subdividing.
const DefaultCapacity = 4

// maxDepth stops subdivision when many items share one position.
const maxDepth = 16

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p vmath.Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// DistSq returns the squared distance from p to the nearest point of r.
func (r Rect) DistSq(p vmath.Vec2) float64 {
	nx := vmath.Clamp(p.X, r.X, r.X+r.W)
	ny := vmath.Clamp(p.Y, r.Y, r.Y+r.H)
	dx, dy := p.X-nx, p.Y-ny
	return dx*dx + dy*dy
}

// Item is a stored value with its position at insertion time.
type Item[T any] struct {
	Pos   vmath.Vec2
	Value T
}

// Quadtree is a point quadtree. Build a fresh tree each frame; it is not
// meant to be updated as items move.
type Quadtree[T any] struct {
	bounds   Rect
	capacity int
	depth    int
	items    []Item[T]
	children *[4]*Quadtree[T]
}

// NewQuadtree creates an empty tree covering bounds.
func NewQuadtree[T any](bounds Rect, capacity int) *Quadtree[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Quadtree[T]{
		bounds:   bounds,
		capacity: capacity,
		items:    make([]Item[T], 0, capacity),
	}
}

// Bounds returns the region covered by the node.
func (q *Quadtree[T]) Bounds() Rect { return q.bounds }

// Divided reports whether the node has been split.
func (q *Quadtree[T]) Divided() bool { return q.children != nil }

// Insert adds value at pos. It returns false if pos lies outside the tree.
func (q *Quadtree[T]) Insert(pos vmath.Vec2, value T) bool {
	if !q.bounds.Contains(pos) {
		return false
	}
	return q.insert(Item[T]{Pos: pos, Value: value})
}

func (q *Quadtree[T]) insert(it Item[T]) bool {
	if q.children == nil {
		if len(q.items) < q.capacity || q.depth >= maxDepth {
			q.items = append(q.items, it)
			return true
		}
		q.subdivide()
	}
	for _, c := range q.children {
		if c.bounds.Contains(it.Pos) {
			return c.insert(it)
		}
	}
	// Unreachable for positions inside bounds; keep the item rather than drop it.
	q.items = append(q.items, it)
	return true
}

// subdivide splits the node into four quadrants and moves its items down.
func (q *Quadtree[T]) subdivide() {
	x, y := q.bounds.X, q.bounds.Y
	w, h := q.bounds.W/2, q.bounds.H/2

	q.children = &[4]*Quadtree[T]{
		q.child(Rect{X: x, Y: y, W: w, H: h}),
		q.child(Rect{X: x + w, Y: y, W: w, H: h}),
		q.child(Rect{X: x, Y: y + h, W: w, H: h}),
		q.child(Rect{X: x + w, Y: y + h, W: w, H: h}),
	}

	items := q.items
	q.items = nil
	for _, it := range items {
		q.insert(it)
	}
}

func (q *Quadtree[T]) child(r Rect) *Quadtree[T] {
	c := NewQuadtree[T](r, q.capacity)
	c.depth = q.depth + 1
	return c
}

// Query returns every item strictly closer than radius to center.
func (q *Quadtree[T]) Query(center vmath.Vec2, radius float64) []Item[T] {
	return q.QueryInto(nil, center, radius)
}

// QueryInto appends matches to dst and returns it. Reuse dst across calls
// to avoid allocations.
func (q *Quadtree[T]) QueryInto(dst []Item[T], center vmath.Vec2, radius float64) []Item[T] {
	if radius <= 0 {
		return dst
	}
	return q.query(dst, center, radius*radius)
}

func (q *Quadtree[T]) query(dst []Item[T], center vmath.Vec2, radiusSq float64) []Item[T] {
	// Prune nodes whose rectangle does not reach into the circle.
	if q.bounds.DistSq(center) >= radiusSq {
		return dst
	}
	for _, it := range q.items {
		if it.Pos.DistSq(center) < radiusSq {
			dst = append(dst, it)
		}
	}
	if q.children != nil {
		for _, c := range q.children {
			dst = c.query(dst, center, radiusSq)
		}
	}
	return dst
}

// Len returns the total number of items in the subtree.
func (q *Quadtree[T]) Len() int {
	n := len(q.items)
	if q.children != nil {
		for _, c := range q.children {
			n += c.Len()
		}
	}
	return n
}

// Walk calls fn for every node, parents before children. Used by debug overlays.
func (q *Quadtree[T]) Walk(fn func(bounds Rect, items int)) {
	fn(q.bounds, len(q.items))
	if q.children != nil {
		for _, c := range q.children {
			c.Walk(fn)
		}
	}
}
