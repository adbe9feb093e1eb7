package systems

import (
	"math"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/vmath"
)

// pulseRate is the plateau pulse angular speed in rad/s.
const pulseRate = 2.2

// ApplyForce accumulates force into acceleration (F / mass).
func ApplyForce(k *components.Kinematics, b *components.Body, force vmath.Vec2) {
	mass := b.Mass
	if mass < components.MinMass {
		mass = components.MinMass
	}
	k.Acc = k.Acc.Add(force.Div(mass))
}

// Integrate advances one semi-implicit Euler step. steps is the frame delta
// in 60 Hz frame units, ms the same delta in milliseconds.
func Integrate(k *components.Kinematics, l *components.Life, steps, ms, maxSpeed, friction float64) {
	k.Vel = k.Vel.Add(k.Acc.Mul(steps)).Limit(maxSpeed)
	k.Vel = k.Vel.Mul(math.Pow(friction, steps))
	k.Pos = k.Pos.Add(k.Vel.Mul(steps))
	k.Acc = vmath.Zero
	l.Age += ms
}

// Envelope returns the opacity multiplier over a lifetime: an ease-in over
// the first fadeIn fraction, a plateau, and an ease-out over the last
// fadeOut fraction.
func Envelope(age, lifetime, fadeIn, fadeOut float64) float64 {
	if lifetime <= 0 {
		return 0
	}
	r := vmath.Clamp(age/lifetime, 0, 1)
	in, out := 1.0, 1.0
	if fadeIn > 0 && r < fadeIn {
		in = vmath.SmoothStep(r / fadeIn)
	}
	if fadeOut > 0 && r > 1-fadeOut {
		out = vmath.SmoothStep((1 - r) / fadeOut)
	}
	return math.Min(in, out)
}

// Pulse returns a slow breathing factor in [1-amount, 1].
func Pulse(now, phase, amount float64) float64 {
	if amount <= 0 {
		return 1
	}
	s := 0.5 + 0.5*math.Sin(now*pulseRate+phase)
	return 1 - amount*s
}

// Opacity combines the base opacity, envelope and pulse. The pulse only
// reaches full depth on the plateau so fades stay monotone.
func Opacity(base, envelope, pulse float64) float64 {
	return vmath.Clamp(base*envelope*vmath.Lerp(1, pulse, envelope), 0, 1)
}

// BoundaryForce pushes back toward the interior when pos is within dist of
// a canvas edge, growing linearly to strength at the edge.
func BoundaryForce(pos vmath.Vec2, width, height, dist, strength float64) vmath.Vec2 {
	if dist <= 0 || strength <= 0 {
		return vmath.Zero
	}
	var f vmath.Vec2
	if pos.X < dist {
		f.X += strength * math.Min(1, (dist-pos.X)/dist)
	} else if pos.X > width-dist {
		f.X -= strength * math.Min(1, (pos.X-(width-dist))/dist)
	}
	if pos.Y < dist {
		f.Y += strength * math.Min(1, (dist-pos.Y)/dist)
	} else if pos.Y > height-dist {
		f.Y -= strength * math.Min(1, (pos.Y-(height-dist))/dist)
	}
	return f
}
