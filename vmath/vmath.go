package vmath

import "math"

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp interpolates between a and b by t (unclamped).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SmoothStep is the cubic Hermite ease on [0, 1].
func SmoothStep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// WrapAngle wraps a to [-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle interpolates between angles along the shortest arc.
func LerpAngle(a, b, t float64) float64 {
	return a + WrapAngle(b-a)*Clamp(t, 0, 1)
}
