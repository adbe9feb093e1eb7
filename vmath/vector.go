// Package vmath provides the 2D vector value type used by the simulation.
package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is an immutable 2D vector. All methods return new values.
type Vec2 struct {
	X, Y float64
}

// Zero is the zero vector.
var Zero = Vec2{}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector pointing at angle a (radians).
func FromAngle(a float64) Vec2 {
	return Vec2{X: math.Cos(a), Y: math.Sin(a)}
}

func (v Vec2) toR2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }
func fromR2(p r2.Vec) Vec2  { return Vec2{X: p.X, Y: p.Y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return fromR2(r2.Add(v.toR2(), o.toR2())) }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return fromR2(r2.Sub(v.toR2(), o.toR2())) }

// Mul scales v by s.
func (v Vec2) Mul(s float64) Vec2 { return fromR2(r2.Scale(s, v.toR2())) }

// Div divides by s. Division by zero yields the zero vector.
func (v Vec2) Div(s float64) Vec2 {
	if s == 0 {
		return Zero
	}
	return v.Mul(1 / s)
}

// Mag returns the length of v.
func (v Vec2) Mag() float64 { return r2.Norm(v.toR2()) }

// MagSq returns the squared length, avoiding the square root.
func (v Vec2) MagSq() float64 { return r2.Norm2(v.toR2()) }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return r2.Dot(v.toR2(), o.toR2()) }

// Normalize returns the unit vector in v's direction, or zero for a zero vector.
func (v Vec2) Normalize() Vec2 {
	m := v.Mag()
	if m == 0 {
		return Zero
	}
	return v.Mul(1 / m)
}

// Limit clamps the magnitude to max, preserving direction.
func (v Vec2) Limit(max float64) Vec2 {
	if max <= 0 {
		return Zero
	}
	sq := v.MagSq()
	if sq <= max*max {
		return v
	}
	return v.Mul(max / math.Sqrt(sq))
}

// SetMag returns a vector with v's direction and magnitude m.
func (v Vec2) SetMag(m float64) Vec2 {
	return v.Normalize().Mul(m)
}

// Dist returns the distance to o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Mag() }

// DistSq returns the squared distance to o.
func (v Vec2) DistSq(o Vec2) float64 { return v.Sub(o).MagSq() }

// Angle returns atan2(y, x).
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleBetween returns the unsigned angle between v and o in [0, pi].
// The cosine ratio is clamped so float drift never reaches acos outside [-1, 1].
func (v Vec2) AngleBetween(o Vec2) float64 {
	denom := v.Mag() * o.Mag()
	if denom == 0 {
		return 0
	}
	return math.Acos(Clamp(v.Dot(o)/denom, -1, 1))
}

// Rotate rotates v by a radians counter-clockwise (in a y-up frame).
func (v Vec2) Rotate(a float64) Vec2 {
	s, c := math.Sincos(a)
	return Vec2{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Lerp interpolates toward o by t, clamped to [0, 1].
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	t = Clamp(t, 0, 1)
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Perp returns v rotated by +90 degrees: (-y, x).
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
