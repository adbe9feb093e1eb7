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

// StreamsEngine animates layered streams carried by the curl-noise flow
// field, nudged by the force field's wind and optionally flocking.
type StreamsEngine struct {
	*loop

	streams  *systems.StreamSystem
	flow     *systems.FlowField
	forces   *systems.ForceField
	flocking *systems.Flocking

	fr         systems.Frame
	boids      []systems.Boid
	tree       *spatial.Quadtree[int]
	items      []spatial.Item[int]
	neighbours []systems.Boid
	forceFn    systems.StreamForceFunc
}

// NewStreamsEngine builds a streams engine drawing on target. A nil cfg
// uses the defaults. It fails with ErrNoRenderContext if the target is not
// ready.
func NewStreamsEngine(target renderer.Target, cfg *config.Config, opts ...Option) (*StreamsEngine, error) {
	l, err := newLoop(config.ModeStreams, target, cfg, opts)
	if err != nil {
		return nil, err
	}
	base, err := noise.New(l.cfg.Noise.Kind, l.seed)
	if err != nil {
		return nil, fmt.Errorf("creating flow noise: %w", err)
	}
	turbulence, err := noise.New(l.cfg.Noise.Kind, l.seed+1)
	if err != nil {
		return nil, fmt.Errorf("creating turbulence noise: %w", err)
	}
	potential := noise.FBM{
		Src:        base,
		Octaves:    l.cfg.Noise.Octaves,
		Lacunarity: l.cfg.Noise.Lacunarity,
		Gain:       l.cfg.Noise.Gain,
	}

	e := &StreamsEngine{
		loop:     l,
		flow:     systems.NewFlowField(l.cfg.FlowField, potential, l.width, l.height),
		forces:   systems.NewForceField(l.cfg.ForceField, l.cfg.Engine.WindSpeed, turbulence, l.rng),
		flocking: systems.NewFlocking(l.cfg.Flocking),
	}
	e.forceFn = e.streamForce
	l.sim = e
	e.populate()
	return e, nil
}

func (e *StreamsEngine) populate() {
	e.streams = systems.NewStreamSystem(e.cfg.Streams, e.cfg.Engine.Layers, e.rng)
	e.streams.SetDrift(vmath.FromAngle(e.cfg.FlowField.BiasAngle))
	e.streams.Populate(e.topUpTarget(), e.cfg.Engine.Layers, e.width, e.height)
}

func (e *StreamsEngine) step(fr systems.Frame) {
	e.fr = fr

	e.perf.StartPhase(telemetry.PhaseGlobals)
	e.advanceHue(fr.DT)
	e.forces.Advance(fr.Now, fr.Width, fr.Height)
	e.flow.Update(fr.Now)

	e.perf.StartPhase(telemetry.PhaseSpatialIndex)
	e.rebuildIndex()

	e.perf.StartPhase(telemetry.PhaseUpdate)
	e.collector.RecordRespawned(e.streams.Update(fr, e.flow, e.forceFn))

	// Streams respawn in place, so the top-up only matters after the target
	// count changed under a running engine.
	e.perf.StartPhase(telemetry.PhaseSpawn)
	if want := e.topUpTarget(); e.streams.Count() != want {
		e.streams.Populate(want, e.cfg.Engine.Layers, fr.Width, fr.Height)
		e.collector.RecordSpawned(want)
	}

	e.perf.StartPhase(telemetry.PhaseRender)
	e.render()
}

func (e *StreamsEngine) rebuildIndex() {
	if !e.cfg.Engine.Flocking {
		e.tree = nil
		return
	}
	e.boids = e.boids[:0]
	for _, p := range e.streams.Particles() {
		e.boids = append(e.boids, systems.Boid{Pos: p.Pos, Vel: p.Vel})
	}
	m := e.cfg.Streams.Margin
	bounds := spatial.Rect{X: -m, Y: -m, W: e.width + 2*m, H: e.height + 2*m}
	e.tree = spatial.NewQuadtree[int](bounds, e.cfg.Engine.QuadtreeCapacity)
	for i, b := range e.boids {
		e.tree.Insert(b.Pos, i)
	}
}

// streamForce is the steering offset added to the flow target of stream i.
func (e *StreamsEngine) streamForce(i int, p *components.StreamParticle) vmath.Vec2 {
	fr := &e.fr
	f := e.forces.WindAt(p.Pos, fr.Now, fr.Width, fr.Height).Mul(e.cfg.Streams.WindInfluence)
	if e.tree != nil && i < len(e.boids) {
		e.items = e.tree.QueryInto(e.items[:0], e.boids[i].Pos, e.flocking.Perception())
		e.neighbours = e.neighbours[:0]
		for _, it := range e.items {
			if it.Value != i {
				e.neighbours = append(e.neighbours, e.boids[it.Value])
			}
		}
		f = f.Add(e.flocking.Calculate(e.boids[i], e.neighbours))
	}
	return f
}

// render draws the debug overlays, then the layers back to front.
func (e *StreamsEngine) render() {
	e.beginRender()
	if e.cfg.Engine.DebugFlow {
		renderer.DrawFlowLines(e.target, e.flow, e.cfg.Engine.DebugOpacity)
		if e.tree != nil {
			renderer.DrawQuadtree(e.target, e.tree, e.cfg.Engine.DebugOpacity)
		}
	}

	e.target.SetBlend(renderer.BlendAdditive)
	glow := e.glow()
	palette := e.cfg.Render.LayerPalette
	particles := e.streams.Particles()
	for layer := 0; layer < e.streams.Layers(); layer++ {
		for i := range particles {
			p := &particles[i]
			if p.Layer != layer {
				continue
			}
			c := renderer.LayerColor(palette, layer, e.hue, e.streams.Opacity(p))
			renderer.DrawStream(e.target, p, c, glow)
		}
	}
	e.target.SetBlend(renderer.BlendAlpha)
	e.target.End()
}

func (e *StreamsEngine) resize(width, height float64) {
	e.flow.Resize(width, height)
	e.streams.Resize(width, height)
	e.tree = nil
}

func (e *StreamsEngine) reconfigure(prev, next *config.Config) bool {
	e.forces.SetWindSpeed(next.Engine.WindSpeed)
	if next.Engine.Count == prev.Engine.Count && next.Engine.Layers == prev.Engine.Layers {
		return false
	}
	e.populate()
	return true
}

func (e *StreamsEngine) count() int {
	return e.streams.Count()
}

func (e *StreamsEngine) speeds(dst []float64) []float64 {
	for _, p := range e.streams.Particles() {
		dst = append(dst, p.Vel.Mag())
	}
	return dst
}

func (e *StreamsEngine) debug(info *telemetry.DebugInfo) {
	info.Layers = e.streams.Layers()
	info.WindAngle = e.forces.WindDirection().Angle()
	info.Puffs = len(e.forces.Puffs())
	info.Waves = len(e.forces.Waves())
	info.FlowCols = e.flow.Cols()
	info.FlowRows = e.flow.Rows()
	info.Confluences = len(e.flow.Confluences())
}

func (e *StreamsEngine) release() {
	e.streams.Populate(0, 1, e.width, e.height)
	e.boids = nil
	e.tree = nil
}
