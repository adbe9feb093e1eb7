// Package systems contains the per-frame simulation systems.
package systems

import "github.com/pthm-cable/streams/vmath"

// FrameRate is the rate per-frame tuning constants are expressed at.
const FrameRate = 60.0

// Frame carries the timing and canvas size for one simulation step.
type Frame struct {
	Now    float64 // seconds since the engine started
	DT     float64 // seconds since the previous frame, already capped
	Width  float64
	Height float64
}

// Steps returns DT in 60 Hz frame units, the unit velocities are tuned in.
func (f Frame) Steps() float64 {
	return f.DT * FrameRate
}

// DTMillis returns DT in milliseconds.
func (f Frame) DTMillis() float64 {
	return f.DT * 1000
}

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// Outside reports whether p lies beyond the bounds by more than margin.
func (b Bounds) Outside(p vmath.Vec2, margin float64) bool {
	return p.X < -margin || p.X > b.Width+margin || p.Y < -margin || p.Y > b.Height+margin
}
