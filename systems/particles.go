package systems

import (
	"math"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/vmath"
)

// ForceFunc returns the external force on a particle for this frame. i is
// the particle's index in the Boids snapshot taken before Update.
type ForceFunc func(i int, k *components.Kinematics, b *components.Body) vmath.Vec2

// ParticleView is a render-ready particle.
type ParticleView struct {
	Pos       vmath.Vec2
	Size      float64
	Opacity   float64
	Hue       float64
	Chroma    float64
	Lightness float64
}

// ParticleSystem owns the generic particles, stored in an ECS world.
type ParticleSystem struct {
	cfg config.ParticleConfig
	rng *rand.Rand

	world  *ecs.World
	mapper *ecs.Map4[
		components.Kinematics,
		components.Body,
		components.Appearance,
		components.Life,
	]
	filter *ecs.Filter4[
		components.Kinematics,
		components.Body,
		components.Appearance,
		components.Life,
	]

	count int
	dead  []ecs.Entity
	views []ParticleView
}

// NewParticleSystem creates an empty particle system with its own world.
func NewParticleSystem(cfg config.ParticleConfig, rng *rand.Rand) *ParticleSystem {
	world := ecs.NewWorld()
	return &ParticleSystem{
		cfg:   cfg,
		rng:   rng,
		world: world,
		mapper: ecs.NewMap4[
			components.Kinematics,
			components.Body,
			components.Appearance,
			components.Life,
		](world),
		filter: ecs.NewFilter4[
			components.Kinematics,
			components.Body,
			components.Appearance,
			components.Life,
		](world),
	}
}

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int {
	return s.count
}

// interiorSpread is the largest deviation, in radians, of an interior
// spawn's heading from the direction to the canvas centre.
const interiorSpread = math.Pi / 3

// Spawn creates one particle. With probability EdgeSpawnChance it enters
// from a random edge heading inward, otherwise it appears anywhere heading
// roughly toward the centre.
func (s *ParticleSystem) Spawn(width, height float64) {
	c := &s.cfg
	var pos, heading vmath.Vec2
	if s.rng.Float64() < c.EdgeSpawnChance {
		switch s.rng.Intn(4) {
		case 0:
			pos, heading = vmath.V(0, s.rng.Float64()*height), vmath.V(1, 0)
		case 1:
			pos, heading = vmath.V(width, s.rng.Float64()*height), vmath.V(-1, 0)
		case 2:
			pos, heading = vmath.V(s.rng.Float64()*width, 0), vmath.V(0, 1)
		default:
			pos, heading = vmath.V(s.rng.Float64()*width, height), vmath.V(0, -1)
		}
		heading = heading.Rotate((s.rng.Float64()*2 - 1) * 0.6)
	} else {
		pos = vmath.V(s.rng.Float64()*width, s.rng.Float64()*height)
		heading = vmath.V(width/2, height/2).Sub(pos).Normalize()
		if heading.IsZero() {
			heading = vmath.V(1, 0)
		}
		heading = heading.Rotate((s.rng.Float64()*2 - 1) * interiorSpread)
	}

	size := c.MinSize + s.rng.Float64()*(c.MaxSize-c.MinSize)
	kin := components.Kinematics{
		Pos: pos,
		Vel: heading.Mul(c.SpawnSpeed * (0.5 + 0.5*s.rng.Float64())),
	}
	body := components.NewBody(size)
	app := components.Appearance{
		Opacity:   c.MinOpacity + s.rng.Float64()*(c.MaxOpacity-c.MinOpacity),
		Hue:       (s.rng.Float64()*2 - 1) * c.HueSpread / 2,
		Chroma:    c.Chroma,
		Lightness: c.Lightness,
		Phase:     s.rng.Float64() * 2 * math.Pi,
	}
	life := components.Life{
		Lifetime: c.MinLifetimeMS + s.rng.Float64()*(c.MaxLifetimeMS-c.MinLifetimeMS),
	}
	s.mapper.NewEntity(&kin, &body, &app, &life)
	s.count++
}

// Fill spawns particles until Count reaches target.
func (s *ParticleSystem) Fill(target int, width, height float64) int {
	n := 0
	for s.count < target {
		s.Spawn(width, height)
		n++
	}
	return n
}

// Clear removes every particle.
func (s *ParticleSystem) Clear() {
	s.dead = s.dead[:0]
	query := s.filter.Query()
	for query.Next() {
		s.dead = append(s.dead, query.Entity())
	}
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}

// Boids appends a snapshot of every particle's position and velocity to dst,
// in iteration order.
func (s *ParticleSystem) Boids(dst []Boid) []Boid {
	query := s.filter.Query()
	for query.Next() {
		k, _, _, _ := query.Get()
		dst = append(dst, Boid{Pos: k.Pos, Vel: k.Vel})
	}
	return dst
}

// Update applies forces, integrates and removes particles that expired or
// left the canvas by more than the margin. It returns the number removed.
func (s *ParticleSystem) Update(fr Frame, force ForceFunc) int {
	steps, ms := fr.Steps(), fr.DTMillis()
	bounds := Bounds{Width: fr.Width, Height: fr.Height}

	// First pass: integrate and collect the dead (no structural changes
	// while the query is open).
	s.dead = s.dead[:0]
	i := 0
	query := s.filter.Query()
	for query.Next() {
		k, b, _, l := query.Get()
		if force != nil {
			ApplyForce(k, b, force(i, k, b))
		}
		Integrate(k, l, steps, ms, s.cfg.MaxSpeed, s.cfg.Friction)
		if l.Expired() || bounds.Outside(k.Pos, s.cfg.Margin) || !k.Pos.IsFinite() {
			s.dead = append(s.dead, query.Entity())
		}
		i++
	}

	// Second pass: remove.
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.dead)
	return len(s.dead)
}

// Views returns render-ready particles sorted small to large, so larger
// (nearer) particles draw on top. The slice is reused between calls.
func (s *ParticleSystem) Views(now float64) []ParticleView {
	c := &s.cfg
	s.views = s.views[:0]
	query := s.filter.Query()
	for query.Next() {
		k, b, a, l := query.Get()
		env := Envelope(l.Age, l.Lifetime, c.FadeIn, c.FadeOut)
		s.views = append(s.views, ParticleView{
			Pos:       k.Pos,
			Size:      b.Size,
			Opacity:   Opacity(a.Opacity, env, Pulse(now, a.Phase, c.Pulse)),
			Hue:       a.Hue,
			Chroma:    a.Chroma,
			Lightness: a.Lightness,
		})
	}
	slices.SortStableFunc(s.views, func(a, b ParticleView) int {
		switch {
		case a.Size < b.Size:
			return -1
		case a.Size > b.Size:
			return 1
		}
		return 0
	})
	return s.views
}

// Each calls fn for every live particle's components.
func (s *ParticleSystem) Each(fn func(k *components.Kinematics, b *components.Body, a *components.Appearance, l *components.Life)) {
	query := s.filter.Query()
	for query.Next() {
		k, b, a, l := query.Get()
		fn(k, b, a, l)
	}
}
