package config

import "fmt"

// Preset names.
const (
	PresetStreams    = "streams"
	PresetParticles  = "particles"
	PresetWatercolor = "watercolor"
)

// Preset returns the defaults adjusted for one of the named backgrounds.
func Preset(name string) (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyPreset(name); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyPreset adjusts c in place for the named background.
func (c *Config) ApplyPreset(name string) error {
	switch name {
	case PresetStreams, "":
		c.Engine.Mode = ModeStreams
	case PresetParticles:
		c.Engine.Mode = ModeParticles
		c.Engine.Count = 180
		c.Engine.Flocking = true
	case PresetWatercolor:
		c.Engine.Mode = ModeParticles
		c.Engine.Count = 40
		c.Engine.Flocking = false
		c.Engine.WindSpeed = 0.4
		c.Particles.MinSize = 18
		c.Particles.MaxSize = 42
		c.Particles.MinLifetimeMS = 8000
		c.Particles.MaxLifetimeMS = 16000
		c.Particles.MinOpacity = 0.08
		c.Particles.MaxOpacity = 0.2
		c.Particles.MaxSpeed = 0.6
		c.Particles.Friction = 0.99
		c.Particles.FadeIn = 0.3
		c.Particles.FadeOut = 0.35
		c.Particles.Pulse = 0.05
		c.Particles.EdgeSpawnChance = 0.2
		c.Particles.Chroma = 55
		c.Particles.Lightness = 65
		c.Particles.HueSpread = 120
		c.Render.GlowScale = 2.2
		c.Render.GlowAlpha = 0.3
		c.Render.FadeAlpha = 0.08
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, name)
	}
	return c.Validate()
}

// Patch is a partial configuration update. Nil fields are left unchanged.
type Patch struct {
	Count        *int
	Layers       *int
	WindSpeed    *float64
	Flocking     *bool
	DebugFlow    *bool
	DebugOpacity *float64
}

// Apply merges p into a copy of c and validates it.
func (c *Config) Apply(p Patch) (*Config, error) {
	next := c.Clone()
	if p.Count != nil {
		next.Engine.Count = *p.Count
	}
	if p.Layers != nil {
		next.Engine.Layers = *p.Layers
	}
	if p.WindSpeed != nil {
		next.Engine.WindSpeed = *p.WindSpeed
	}
	if p.Flocking != nil {
		next.Engine.Flocking = *p.Flocking
	}
	if p.DebugFlow != nil {
		next.Engine.DebugFlow = *p.DebugFlow
	}
	if p.DebugOpacity != nil {
		next.Engine.DebugOpacity = *p.DebugOpacity
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
