package engine

import (
	"fmt"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/noise"
	"github.com/pthm-cable/streams/renderer"
	"github.com/pthm-cable/streams/spatial"
	"github.com/pthm-cable/streams/systems"
	"github.com/pthm-cable/streams/telemetry"
	"github.com/pthm-cable/streams/vmath"
)

// ParticleEngine animates free particles pushed by the force field, with
// optional flocking and a soft pull back from the canvas edges.
type ParticleEngine struct {
	*loop

	particles *systems.ParticleSystem
	forces    *systems.ForceField
	flocking  *systems.Flocking

	// Per-frame scratch, reused between frames.
	fr         systems.Frame
	boids      []systems.Boid
	tree       *spatial.Quadtree[int]
	items      []spatial.Item[int]
	neighbours []systems.Boid
	forceFn    systems.ForceFunc
}

// NewParticleEngine builds a particle engine drawing on target. A nil cfg
// uses the defaults. It fails with ErrNoRenderContext if the target is not
// ready.
func NewParticleEngine(target renderer.Target, cfg *config.Config, opts ...Option) (*ParticleEngine, error) {
	l, err := newLoop(config.ModeParticles, target, cfg, opts)
	if err != nil {
		return nil, err
	}
	turbulence, err := noise.New(l.cfg.Noise.Kind, l.seed)
	if err != nil {
		return nil, fmt.Errorf("creating noise: %w", err)
	}

	e := &ParticleEngine{
		loop:      l,
		particles: systems.NewParticleSystem(l.cfg.Particles, l.rng),
		forces:    systems.NewForceField(l.cfg.ForceField, l.cfg.Engine.WindSpeed, turbulence, l.rng),
		flocking:  systems.NewFlocking(l.cfg.Flocking),
	}
	e.forceFn = e.particleForce
	l.sim = e
	e.particles.Fill(l.topUpTarget(), l.width, l.height)
	return e, nil
}

func (e *ParticleEngine) step(fr systems.Frame) {
	e.fr = fr

	e.perf.StartPhase(telemetry.PhaseGlobals)
	e.advanceHue(fr.DT)
	e.forces.Advance(fr.Now, fr.Width, fr.Height)

	e.perf.StartPhase(telemetry.PhaseSpatialIndex)
	e.rebuildIndex()

	e.perf.StartPhase(telemetry.PhaseUpdate)
	e.collector.RecordRemoved(e.particles.Update(fr, e.forceFn))

	e.perf.StartPhase(telemetry.PhaseSpawn)
	e.collector.RecordSpawned(e.particles.Fill(e.topUpTarget(), fr.Width, fr.Height))

	e.perf.StartPhase(telemetry.PhaseRender)
	e.render(fr)
}

// rebuildIndex snapshots the particles and indexes them by snapshot
// position. The tree covers the canvas plus the despawn margin.
func (e *ParticleEngine) rebuildIndex() {
	e.boids = e.particles.Boids(e.boids[:0])
	if !e.cfg.Engine.Flocking {
		e.tree = nil
		return
	}
	m := e.cfg.Particles.Margin
	bounds := spatial.Rect{X: -m, Y: -m, W: e.width + 2*m, H: e.height + 2*m}
	e.tree = spatial.NewQuadtree[int](bounds, e.cfg.Engine.QuadtreeCapacity)
	for i, b := range e.boids {
		e.tree.Insert(b.Pos, i)
	}
}

// particleForce is the total external force on particle i: wind, flocking
// and the edge pull.
func (e *ParticleEngine) particleForce(i int, k *components.Kinematics, _ *components.Body) vmath.Vec2 {
	fr := &e.fr
	f := e.forces.ForceAt(k.Pos, fr.Now, fr.Width, fr.Height)
	if e.tree != nil && i < len(e.boids) {
		f = f.Add(e.flocking.Calculate(e.boids[i], e.neighboursOf(i)))
	}
	p := &e.cfg.Particles
	return f.Add(systems.BoundaryForce(k.Pos, fr.Width, fr.Height, p.BoundaryDistance, p.BoundaryForce))
}

// neighboursOf returns the boids within perception of boid i, excluding i.
// The slice is reused by the next call.
func (e *ParticleEngine) neighboursOf(i int) []systems.Boid {
	e.items = e.tree.QueryInto(e.items[:0], e.boids[i].Pos, e.flocking.Perception())
	e.neighbours = e.neighbours[:0]
	for _, it := range e.items {
		if it.Value != i {
			e.neighbours = append(e.neighbours, e.boids[it.Value])
		}
	}
	return e.neighbours
}

func (e *ParticleEngine) render(fr systems.Frame) {
	e.beginRender()
	if e.cfg.Engine.DebugFlow && e.tree != nil {
		renderer.DrawQuadtree(e.target, e.tree, e.cfg.Engine.DebugOpacity)
	}
	glow := e.glow()
	for _, v := range e.particles.Views(fr.Now) {
		c := renderer.HCL(e.hue+v.Hue, v.Chroma, v.Lightness, v.Opacity)
		renderer.DrawParticle(e.target, v.Pos, v.Size, c, glow)
	}
	e.target.End()
}

func (e *ParticleEngine) resize(width, height float64) {
	// Particles far outside the new canvas are dropped by the next update
	// and replaced by the top-up.
	e.tree = nil
}

// reconfigure rebuilds only on a count change; layers do not apply to free
// particles.
func (e *ParticleEngine) reconfigure(prev, next *config.Config) bool {
	e.forces.SetWindSpeed(next.Engine.WindSpeed)
	if next.Engine.Count == prev.Engine.Count {
		return false
	}
	e.particles.Clear()
	e.particles.Fill(e.topUpTarget(), e.width, e.height)
	return true
}

func (e *ParticleEngine) count() int {
	return e.particles.Count()
}

func (e *ParticleEngine) speeds(dst []float64) []float64 {
	e.particles.Each(func(k *components.Kinematics, _ *components.Body, _ *components.Appearance, _ *components.Life) {
		dst = append(dst, k.Vel.Mag())
	})
	return dst
}

func (e *ParticleEngine) debug(info *telemetry.DebugInfo) {
	info.WindAngle = e.forces.WindDirection().Angle()
	info.Puffs = len(e.forces.Puffs())
	info.Waves = len(e.forces.Waves())
}

func (e *ParticleEngine) release() {
	e.particles.Clear()
	e.boids = nil
	e.tree = nil
}
