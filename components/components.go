// Package components defines the entity data used by the particle systems.
package components

import "github.com/pthm-cable/streams/vmath"

// Kinematics holds an entity's motion state. Acc is cleared every frame.
type Kinematics struct {
	Pos vmath.Vec2
	Vel vmath.Vec2
	Acc vmath.Vec2
}

// Body holds physical size and the mass derived from it.
type Body struct {
	Size float64
	Mass float64
}

// MinMass is the floor applied to derived masses.
const MinMass = 0.1

// NewBody returns a body whose mass is derived from size.
func NewBody(size float64) Body {
	m := size * size * 0.1
	if m < MinMass {
		m = MinMass
	}
	return Body{Size: size, Mass: m}
}

// Appearance holds visual state. Colour is stored as HCL so the renderer
// can combine it with the global hue cycle.
type Appearance struct {
	Opacity   float64 // base opacity before the life envelope
	Hue       float64 // degrees, offset from the global hue
	Chroma    float64
	Lightness float64
	Phase     float64 // pulse phase offset (radians)
}

// Life tracks age against lifetime, both in milliseconds.
type Life struct {
	Age      float64
	Lifetime float64
}

// Expired reports whether the entity has outlived its lifetime.
func (l Life) Expired() bool {
	return l.Age >= l.Lifetime
}

// Ratio returns age / lifetime in [0, 1].
func (l Life) Ratio() float64 {
	if l.Lifetime <= 0 {
		return 1
	}
	return vmath.Clamp(l.Age/l.Lifetime, 0, 1)
}
