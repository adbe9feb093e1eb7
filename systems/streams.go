package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

// StreamForceFunc returns an extra velocity contribution for stream i.
type StreamForceFunc func(i int, p *components.StreamParticle) vmath.Vec2

// StreamSystem owns the layered flow-following particles. Particles are
// never destroyed: leaving the canvas or reaching the end of life respawns
// them in place.
type StreamSystem struct {
	cfg    config.StreamConfig
	rng    *rand.Rand
	layers int
	drift  vmath.Vec2

	particles []components.StreamParticle
}

// NewStreamSystem creates an empty stream system.
func NewStreamSystem(cfg config.StreamConfig, layers int, rng *rand.Rand) *StreamSystem {
	if layers < 1 {
		layers = 1
	}
	return &StreamSystem{
		cfg:    cfg,
		rng:    rng,
		layers: layers,
		drift:  vmath.V(1, 0),
	}
}

// SetDrift sets the main flow direction; upstream respawns enter from the
// edge it points away from.
func (s *StreamSystem) SetDrift(dir vmath.Vec2) {
	if d := dir.Normalize(); !d.IsZero() {
		s.drift = d
	}
}

// Layers returns the number of depth layers.
func (s *StreamSystem) Layers() int { return s.layers }

// Count returns the number of streams.
func (s *StreamSystem) Count() int { return len(s.particles) }

// Particles returns the stream slice. Callers must not keep it across frames.
func (s *StreamSystem) Particles() []components.StreamParticle { return s.particles }

// Populate replaces every stream with count fresh ones scattered over the
// canvas, assigned to layers round robin.
func (s *StreamSystem) Populate(count, layers int, width, height float64) {
	if layers < 1 {
		layers = 1
	}
	s.layers = layers
	if cap(s.particles) >= count {
		s.particles = s.particles[:count]
	} else {
		s.particles = make([]components.StreamParticle, count)
	}
	for i := range s.particles {
		p := &s.particles[i]
		*p = components.StreamParticle{Layer: i % layers}
		s.respawn(p, width, height, true)
		// Stagger ages so the initial set does not fade out together.
		p.Age = s.rng.Float64() * p.Lifespan * 0.5
	}
}

// Depth returns a layer's depth in (0, 1], 1 being the front.
func (s *StreamSystem) Depth(layer int) float64 {
	return float64(layer+1) / float64(s.layers)
}

// LayerSpeed returns the flow speed multiplier for a layer. Back layers move
// slower for parallax.
func (s *StreamSystem) LayerSpeed(layer int) float64 {
	return s.cfg.Speed * (0.5 + 0.5*s.Depth(layer))
}

func (s *StreamSystem) respawn(p *components.StreamParticle, width, height float64, scatter bool) {
	c := &s.cfg
	if !scatter && s.rng.Float64() < c.SpawnLeftChance {
		p.Pos = s.upstreamPoint(width, height)
	} else {
		p.Pos = vmath.V(s.rng.Float64()*width, s.rng.Float64()*height)
	}
	depth := s.Depth(p.Layer)
	p.Vel = vmath.Zero
	p.Age = 0
	p.Lifespan = c.MinLifespanMS + s.rng.Float64()*(c.MaxLifespanMS-c.MinLifespanMS)
	p.Size = (c.MinSize + s.rng.Float64()*(c.MaxSize-c.MinSize)) * (0.6 + 0.4*depth)
	p.Opacity = (c.MinOpacity + s.rng.Float64()*(c.MaxOpacity-c.MinOpacity)) * (0.5 + 0.5*depth)
	if p.Trail.Limit() != c.TrailLength {
		p.Trail = components.NewTrail(c.TrailLength)
	}
	p.Trail.Reset(p.Pos)
}

// upstreamPoint returns a random point on the edge the drift flows away from.
func (s *StreamSystem) upstreamPoint(width, height float64) vmath.Vec2 {
	d := s.drift
	if math.Abs(d.X) >= math.Abs(d.Y) {
		x := 0.0
		if d.X < 0 {
			x = width
		}
		return vmath.V(x, s.rng.Float64()*height)
	}
	y := 0.0
	if d.Y < 0 {
		y = height
	}
	return vmath.V(s.rng.Float64()*width, y)
}

// Update steers every stream toward the flow at its position, moves it,
// records its trail and respawns it when it leaves the canvas or its life
// ends. It returns the number of respawns.
func (s *StreamSystem) Update(fr Frame, flow FlowSampler, extra StreamForceFunc) int {
	c := &s.cfg
	steps, ms := fr.Steps(), fr.DTMillis()
	bounds := Bounds{Width: fr.Width, Height: fr.Height}
	// Per-frame steer factor compounded over the elapsed frame units.
	blend := 1 - math.Pow(1-vmath.Clamp(c.Steer, 0, 1), steps)

	respawned := 0
	for i := range s.particles {
		p := &s.particles[i]
		target := flow.Flow(p.Pos.X, p.Pos.Y).Mul(s.LayerSpeed(p.Layer))
		if extra != nil {
			target = target.Add(extra(i, p))
		}
		p.Vel = p.Vel.Lerp(target, blend)
		p.Pos = p.Pos.Add(p.Vel.Mul(steps))
		p.Age += ms
		p.Trail.Push(p.Pos)

		if p.Age >= p.Lifespan || bounds.Outside(p.Pos, c.Margin) || !p.Pos.IsFinite() {
			s.respawn(p, fr.Width, fr.Height, false)
			respawned++
		}
	}
	return respawned
}

// Resize respawns streams the new canvas no longer contains.
func (s *StreamSystem) Resize(width, height float64) {
	bounds := Bounds{Width: width, Height: height}
	for i := range s.particles {
		p := &s.particles[i]
		if bounds.Outside(p.Pos, s.cfg.Margin) {
			s.respawn(p, width, height, true)
		}
	}
}

// Opacity returns the stream's current opacity including its life envelope.
func (s *StreamSystem) Opacity(p *components.StreamParticle) float64 {
	env := Envelope(p.Age, p.Lifespan, s.cfg.FadeIn, s.cfg.FadeOut)
	return vmath.Clamp(p.Opacity*env, 0, 1)
}
