package config

import (
	"fmt"
	"math"

	"github.com/pthm-cable/streams/noise"
)

// MaxLayers bounds the depth layer count.
const MaxLayers = 8

// Validate clamps out-of-range values in place. It returns ErrInvalid only
// for values that have no sensible clamp.
func (c *Config) Validate() error {
	switch c.Engine.Mode {
	case "":
		c.Engine.Mode = ModeStreams
	case ModeStreams, ModeParticles:
	default:
		return fmt.Errorf("%w: engine.mode %q", ErrInvalid, c.Engine.Mode)
	}
	switch c.Noise.Kind {
	case "":
		c.Noise.Kind = noise.KindPerlin
	case noise.KindPerlin, noise.KindSimplex, noise.KindOpenSimplex:
	default:
		return fmt.Errorf("%w: noise.kind %q", ErrInvalid, c.Noise.Kind)
	}

	c.Screen.Width = atLeastInt(c.Screen.Width, 1)
	c.Screen.Height = atLeastInt(c.Screen.Height, 1)

	e := &c.Engine
	e.MaxParticles = atLeastInt(e.MaxParticles, 1)
	e.Count = clampInt(e.Count, 0, e.MaxParticles)
	e.Layers = clampInt(e.Layers, 1, MaxLayers)
	e.WindSpeed = atLeast(e.WindSpeed, 0)
	e.DebugOpacity = clamp(e.DebugOpacity, 0, 1)
	e.MaxDeltaMS = positiveOr(e.MaxDeltaMS, 100)
	e.TargetFPS = clampInt(e.TargetFPS, 1, 240)
	e.QuadtreeCapacity = atLeastInt(e.QuadtreeCapacity, 1)

	n := &c.Noise
	n.Octaves = clampInt(n.Octaves, 1, 8)
	n.Lacunarity = positiveOr(n.Lacunarity, 2)
	n.Gain = positiveOr(n.Gain, 0.5)

	f := &c.FlowField
	f.Resolution = positiveOr(f.Resolution, 20)
	f.Scale = positiveOr(f.Scale, 0.002)
	f.Epsilon = positiveOr(f.Epsilon, 1)
	f.VortexCore = atLeast(f.VortexCore, 0)
	for i := range f.Confluences {
		cp := &f.Confluences[i]
		cp.Radius = positiveOr(cp.Radius, 1)
		cp.X = clamp(cp.X, 0, 1)
		cp.Y = clamp(cp.Y, 0, 1)
	}

	w := &c.ForceField
	w.ReorientMin = positiveOr(w.ReorientMin, 8)
	if w.ReorientMax < w.ReorientMin {
		w.ReorientMax = w.ReorientMin
	}
	w.HorizontalBias = clamp(w.HorizontalBias, 0, 1)
	w.GustMediumThreshold = clamp(w.GustMediumThreshold, 0, 1)
	w.GustPeakThreshold = clamp(w.GustPeakThreshold, w.GustMediumThreshold, 1)
	w.PuffInterval = positiveOr(w.PuffInterval, 30)
	w.PuffDurationMin = positiveOr(w.PuffDurationMin, 3)
	if w.PuffDurationMax < w.PuffDurationMin {
		w.PuffDurationMax = w.PuffDurationMin
	}
	w.PuffRadius = positiveOr(w.PuffRadius, 1)
	w.WaveInterval = positiveOr(w.WaveInterval, 20)
	w.WaveDuration = positiveOr(w.WaveDuration, 1)
	w.WaveWidth = positiveOr(w.WaveWidth, 1)

	fl := &c.Flocking
	fl.Perception = positiveOr(fl.Perception, 50)
	fl.SeparationDistance = positiveOr(fl.SeparationDistance, fl.Perception/2)
	fl.MaxSpeed = positiveOr(fl.MaxSpeed, 2)
	fl.MaxForce = positiveOr(fl.MaxForce, 0.05)

	p := &c.Particles
	p.MinSize = positiveOr(p.MinSize, 1)
	p.MaxSize = atLeast(p.MaxSize, p.MinSize)
	p.MinLifetimeMS = positiveOr(p.MinLifetimeMS, 1000)
	p.MaxLifetimeMS = atLeast(p.MaxLifetimeMS, p.MinLifetimeMS)
	p.MinOpacity = clamp(p.MinOpacity, 0, 1)
	p.MaxOpacity = clamp(atLeast(p.MaxOpacity, p.MinOpacity), 0, 1)
	p.MaxSpeed = positiveOr(p.MaxSpeed, 2)
	p.Friction = clamp(p.Friction, 0, 1)
	p.Margin = atLeast(p.Margin, 0)
	p.FadeIn = clamp(p.FadeIn, 0, 0.5)
	p.FadeOut = clamp(p.FadeOut, 0, 0.5)
	p.Pulse = clamp(p.Pulse, 0, 1)
	p.EdgeSpawnChance = clamp(p.EdgeSpawnChance, 0, 1)

	s := &c.Streams
	s.Speed = atLeast(s.Speed, 0)
	s.Steer = clamp(s.Steer, 0, 1)
	s.TrailLength = clampInt(s.TrailLength, 1, 32)
	s.MinLifespanMS = positiveOr(s.MinLifespanMS, 1000)
	s.MaxLifespanMS = atLeast(s.MaxLifespanMS, s.MinLifespanMS)
	s.MinSize = positiveOr(s.MinSize, 1)
	s.MaxSize = atLeast(s.MaxSize, s.MinSize)
	s.MinOpacity = clamp(s.MinOpacity, 0, 1)
	s.MaxOpacity = clamp(atLeast(s.MaxOpacity, s.MinOpacity), 0, 1)
	s.Margin = atLeast(s.Margin, 0)
	s.SpawnLeftChance = clamp(s.SpawnLeftChance, 0, 1)
	s.FadeIn = clamp(s.FadeIn, 0, 0.5)
	s.FadeOut = clamp(s.FadeOut, 0, 0.5)

	r := &c.Render
	if len(r.Background) != 3 {
		r.Background = []int{0, 0, 0}
	}
	for i := range r.Background {
		r.Background[i] = clampInt(r.Background[i], 0, 255)
	}
	r.FadeAlpha = clamp(r.FadeAlpha, 0, 1)
	r.GlowScale = atLeast(r.GlowScale, 1)
	r.GlowAlpha = clamp(r.GlowAlpha, 0, 1)
	if len(r.LayerPalette) == 0 {
		r.LayerPalette = []LayerStyle{{Hue: 0, Chroma: 50, Lightness: 70}}
	}

	c.Telemetry.PerfWindow = atLeastInt(c.Telemetry.PerfWindow, 1)
	c.Telemetry.LogInterval = atLeastInt(c.Telemetry.LogInterval, 0)
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

func atLeast(x, lo float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	return x
}

// positiveOr replaces zero, negative and NaN values with def.
func positiveOr(x, def float64) float64 {
	if math.IsNaN(x) || x <= 0 {
		return def
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func atLeastInt(x, lo int) int {
	if x < lo {
		return lo
	}
	return x
}
