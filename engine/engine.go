// Package engine runs the particle and stream animations: lifecycle,
// frame scheduling and the per-frame step order.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/renderer"
	"github.com/pthm-cable/streams/systems"
	"github.com/pthm-cable/streams/telemetry"
)

var (
	// ErrNoRenderContext is returned at construction when the render target
	// cannot be drawn on.
	ErrNoRenderContext = errors.New("engine: no render context")
	// ErrDestroyed is returned by Start and UpdateConfig after Destroy.
	ErrDestroyed = errors.New("engine: destroyed")
)

// Engine is the surface shared by ParticleEngine and StreamsEngine.
type Engine interface {
	Start() error
	Stop()
	Destroy()
	Resize(width, height int)
	UpdateConfig(p config.Patch) error
	State() State
	Err() error
	FPS() float64
	ParticleCount() int
	Frame() int64
	Config() *config.Config
	DebugInfo() telemetry.DebugInfo
}

var (
	_ Engine = (*ParticleEngine)(nil)
	_ Engine = (*StreamsEngine)(nil)
)

// New builds the engine selected by cfg.Engine.Mode.
func New(target renderer.Target, cfg *config.Config, opts ...Option) (Engine, error) {
	mode := config.ModeStreams
	if cfg != nil && cfg.Engine.Mode != "" {
		mode = cfg.Engine.Mode
	}
	var (
		e   Engine
		err error
	)
	switch mode {
	case config.ModeStreams:
		e, err = NewStreamsEngine(target, cfg, opts...)
	case config.ModeParticles:
		e, err = NewParticleEngine(target, cfg, opts...)
	default:
		return nil, fmt.Errorf("%w: engine.mode %q", config.ErrInvalid, mode)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// sim is the part of an engine that differs between modes. Every method is
// called with the loop mutex held.
type sim interface {
	step(fr systems.Frame)
	resize(width, height float64)
	reconfigure(prev, next *config.Config) (rebuilt bool)
	count() int
	speeds(dst []float64) []float64
	debug(info *telemetry.DebugInfo)
	release()
}

// loop is the lifecycle core shared by both engines.
type loop struct {
	mu sync.Mutex

	mode      string
	sim       sim
	cfg       *config.Config
	target    renderer.Target
	scheduler Scheduler
	logger    *slog.Logger
	rng       *rand.Rand
	seed      int64

	state     State
	run       uint64 // bumped by every Start; frames from older runs are dropped
	destroyed bool
	err       error

	width, height float64
	lastNow       float64
	haveLast      bool
	simTime       float64
	frame         int64
	hue           float64

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool
	speedBuf  []float64
}

// newLoop validates cfg, checks the target and applies options. The
// returned loop has no sim yet.
func newLoop(mode string, target renderer.Target, cfg *config.Config, opts []Option) (*loop, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrNoRenderContext)
	}
	if err := target.Ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRenderContext, err)
	}

	if cfg == nil {
		cfg = config.Default()
	} else {
		cfg = cfg.Clone()
	}
	cfg.Engine.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.seedSet {
		cfg.Engine.Seed = o.seed
	}
	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.scheduler == nil {
		o.scheduler = NewTickerScheduler(cfg.Engine.TargetFPS)
	}

	w, h := target.Size()
	if w <= 0 || h <= 0 {
		w, h = cfg.Screen.Width, cfg.Screen.Height
		target.Resize(w, h)
	}

	return &loop{
		mode:      mode,
		cfg:       cfg,
		target:    target,
		scheduler: o.scheduler,
		logger:    o.logger.With("engine", mode),
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		width:     float64(w),
		height:    float64(h),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.LogInterval),
		output:    o.output,
		logStats:  o.logStats,
	}, nil
}

// Start begins delivering frames. It is a no-op while running.
func (l *loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	if l.state == StateRunning {
		return nil
	}
	l.state = StateRunning
	l.err = nil
	l.haveLast = false
	l.perf.Reset()
	l.run++
	run := l.run
	l.scheduler.Start(func(now float64) { l.onFrame(run, now) })
	l.logger.Info("started", "seed", l.seed, "particles", l.sim.count())
	return nil
}

// Stop cancels future frames. A frame already running completes.
func (l *loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *loop) stopLocked() {
	if l.state != StateRunning {
		return
	}
	l.scheduler.Stop()
	l.state = StateStopped
	l.logger.Info("stopped", "frame", l.frame)
}

// Destroy stops the engine and releases its particles and output. It is
// safe to call more than once.
func (l *loop) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return
	}
	l.stopLocked()
	if l.state == StateConstructed {
		l.state = StateStopped
	}
	l.sim.release()
	if err := l.output.Close(); err != nil {
		l.logger.Error("closing output", "error", err)
	}
	l.destroyed = true
	l.logger.Info("destroyed")
}

// Resize changes the canvas size and rebuilds everything derived from it
// before the next frame. Valid in any state.
func (l *loop) Resize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return
	}
	l.target.Resize(width, height)
	l.width, l.height = float64(width), float64(height)
	l.sim.resize(l.width, l.height)
	l.logger.Debug("resized", "width", width, "height", height)
}

// UpdateConfig merges p into the configuration. A changed count rebuilds
// the particle set, as does a changed layer count in streams mode.
func (l *loop) UpdateConfig(p config.Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	next, err := l.cfg.Apply(p)
	if err != nil {
		return fmt.Errorf("updating config: %w", err)
	}
	prev := l.cfg
	l.cfg = next
	rebuilt := l.sim.reconfigure(prev, next)
	l.logger.Info("config updated",
		"count", next.Engine.Count,
		"layers", next.Engine.Layers,
		"flocking", next.Engine.Flocking,
		"rebuilt", rebuilt,
	)
	return nil
}

// State returns the lifecycle state.
func (l *loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the failure that stopped the loop, if any.
func (l *loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// FPS returns the mean frame rate over the perf window.
func (l *loop) FPS() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perf.FPS()
}

// ParticleCount returns the number of live particles.
func (l *loop) ParticleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.count()
}

// Frame returns the number of frames stepped.
func (l *loop) Frame() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Config returns a copy of the active configuration.
func (l *loop) Config() *config.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg.Clone()
}

// DebugInfo returns a snapshot of the engine state.
func (l *loop) DebugInfo() telemetry.DebugInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	info := telemetry.DebugInfo{
		Mode:      l.mode,
		State:     l.state.String(),
		Frame:     l.frame,
		SimTime:   l.simTime,
		FPS:       l.perf.FPS(),
		Particles: l.sim.count(),
		Width:     l.width,
		Height:    l.height,
		GlobalHue: l.hue,
		WindSpeed: l.cfg.Engine.WindSpeed,
		Flocking:  l.cfg.Engine.Flocking,
	}
	if l.err != nil {
		info.Err = l.err.Error()
	}
	l.sim.debug(&info)
	return info
}

// onFrame is the scheduler callback for the given run. It runs one step
// under the mutex and turns a panic into a stopped loop with Err set. A
// frame that was waiting on the mutex across a Stop and Start belongs to
// the old run and is dropped.
func (l *loop) onFrame(run uint64, now float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateRunning || run != l.run {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.err = fmt.Errorf("frame %d: %v", l.frame, r)
			l.logger.Error("frame failed, stopping", "error", l.err)
			l.stopLocked()
		}
	}()

	fr := l.advanceClock(now)
	l.perf.RecordFrame(now)
	l.perf.StartStep()
	l.sim.step(fr)
	l.perf.EndStep()
	l.frame++
	l.flushTelemetry()
}

// advanceClock computes the capped delta time. The first frame after Start
// uses one nominal frame.
func (l *loop) advanceClock(now float64) systems.Frame {
	var dt float64
	if l.haveLast {
		dt = now - l.lastNow
	} else {
		dt = 1 / float64(l.cfg.Engine.TargetFPS)
	}
	maxDT := l.cfg.Engine.MaxDeltaMS / 1000
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	if dt > maxDT {
		dt = maxDT
	}
	l.lastNow = now
	l.haveLast = true
	l.simTime += dt

	return systems.Frame{
		Now:    l.simTime,
		DT:     dt,
		Width:  l.width,
		Height: l.height,
	}
}

// advanceHue rotates the global colour-cycle hue, in degrees.
func (l *loop) advanceHue(dt float64) {
	l.hue = math.Mod(l.hue+l.cfg.Engine.HueCycleSpeed*dt, 360)
}

// topUpTarget is the particle count the top-up aims for.
func (l *loop) topUpTarget() int {
	return min(l.cfg.Engine.Count, l.cfg.Engine.MaxParticles)
}

func (l *loop) glow() renderer.Glow {
	return renderer.Glow{Scale: l.cfg.Render.GlowScale, Alpha: l.cfg.Render.GlowAlpha}
}

// beginRender starts a frame on the target with the fading background wash.
func (l *loop) beginRender() {
	l.target.Begin()
	l.target.SetBlend(renderer.BlendAlpha)
	l.target.Fade(renderer.Background(l.cfg.Render.Background), l.cfg.Render.FadeAlpha)
}

// flushTelemetry emits window and perf stats every log_interval frames.
func (l *loop) flushTelemetry() {
	if l.cfg.Telemetry.LogInterval == 0 || !l.collector.ShouldFlush(l.frame) {
		return
	}
	l.speedBuf = l.sim.speeds(l.speedBuf[:0])
	stats := l.collector.Flush(l.frame, l.simTime, l.sim.count(), l.speedBuf, l.perf.FPS())
	perfStats := l.perf.Stats()

	if l.logStats {
		stats.LogStats(l.logger)
		l.logger.Info("perf", "stats", perfStats)
	}
	if err := l.output.WriteFrames(stats); err != nil {
		l.logger.Error("failed to write frames", "error", err)
	}
	if err := l.output.WritePerf(perfStats, l.frame); err != nil {
		l.logger.Error("failed to write perf", "error", err)
	}
}
