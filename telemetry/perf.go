package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the engine frame step.
const (
	PhaseGlobals      = "globals"
	PhaseSpatialIndex = "spatial_index"
	PhaseUpdate       = "update"
	PhaseSpawn        = "spawn"
	PhaseRender       = "render"
)

var phases = []string{PhaseGlobals, PhaseSpatialIndex, PhaseUpdate, PhaseSpawn, PhaseRender}

// PerfSample holds timing data for a single frame step.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
// Step and phase durations are wall-clock; frame intervals come from the
// scheduler timestamps passed to RecordFrame, so FPS reflects the frame
// cadence the engine actually saw.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	stepStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	intervals     []float64 // seconds, ring buffer
	intervalIndex int
	intervalCount int
	lastFrame     float64
	haveFrame     bool
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		intervals:     make([]float64, windowSize),
	}
}

// StartStep begins timing a new frame step.
func (p *PerfCollector) StartStep() {
	p.stepStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndStep finishes timing the current step and records the sample.
func (p *PerfCollector) EndStep() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		StepDuration: now.Sub(p.stepStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records a frame delivered at now (seconds on the scheduler
// clock). The first frame only establishes the baseline.
func (p *PerfCollector) RecordFrame(now float64) {
	if p.haveFrame {
		if dt := now - p.lastFrame; dt > 0 {
			p.intervals[p.intervalIndex] = dt
			p.intervalIndex = (p.intervalIndex + 1) % p.windowSize
			if p.intervalCount < p.windowSize {
				p.intervalCount++
			}
		}
	}
	p.lastFrame = now
	p.haveFrame = true
}

// Reset drops the frame baseline, e.g. after the loop was stopped, so the
// pause is not counted as a slow frame.
func (p *PerfCollector) Reset() {
	p.haveFrame = false
}

// FPS returns the mean frame rate over the window, 0 before two frames.
func (p *PerfCollector) FPS() float64 {
	if p.intervalCount == 0 {
		return 0
	}
	mean := stat.Mean(p.intervals[:p.intervalCount], nil)
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Step timing
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total step time
	PhasePct map[string]float64

	// Frame cadence
	FrameDuration time.Duration
	FrameJitter   time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var frameDur, jitter time.Duration
	if p.intervalCount > 0 {
		mean, std := stat.MeanStdDev(p.intervals[:p.intervalCount], nil)
		frameDur = time.Duration(mean * float64(time.Second))
		if p.intervalCount > 1 {
			jitter = time.Duration(std * float64(time.Second))
		}
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: frameDur,
			FrameJitter:   jitter,
			FPS:           p.FPS(),
		}
	}

	var total time.Duration
	var minStep, maxStep time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.StepDuration

		if i == 0 || s.StepDuration < minStep {
			minStep = s.StepDuration
		}
		if s.StepDuration > maxStep {
			maxStep = s.StepDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgStep := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgStep > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgStep) * 100
		}
	}

	return PerfStats{
		AvgStepDuration: avgStep,
		MinStepDuration: minStep,
		MaxStepDuration: maxStep,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		FrameDuration:   frameDur,
		FrameJitter:     jitter,
		FPS:             p.FPS(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStepDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinStepDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxStepDuration.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs,
			slog.Float64("fps", s.FPS),
			slog.Int64("jitter_us", s.FrameJitter.Microseconds()),
		)
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame           int64   `csv:"frame"`
	AvgStepUS       int64   `csv:"avg_step_us"`
	MinStepUS       int64   `csv:"min_step_us"`
	MaxStepUS       int64   `csv:"max_step_us"`
	FPS             float64 `csv:"fps"`
	JitterUS        int64   `csv:"jitter_us"`
	GlobalsPct      float64 `csv:"globals_pct"`
	SpatialIndexPct float64 `csv:"spatial_index_pct"`
	UpdatePct       float64 `csv:"update_pct"`
	SpawnPct        float64 `csv:"spawn_pct"`
	RenderPct       float64 `csv:"render_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame int64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:           frame,
		AvgStepUS:       s.AvgStepDuration.Microseconds(),
		MinStepUS:       s.MinStepDuration.Microseconds(),
		MaxStepUS:       s.MaxStepDuration.Microseconds(),
		FPS:             s.FPS,
		JitterUS:        s.FrameJitter.Microseconds(),
		GlobalsPct:      s.PhasePct[PhaseGlobals],
		SpatialIndexPct: s.PhasePct[PhaseSpatialIndex],
		UpdatePct:       s.PhasePct[PhaseUpdate],
		SpawnPct:        s.PhasePct[PhaseSpawn],
		RenderPct:       s.PhasePct[PhaseRender],
	}
}
