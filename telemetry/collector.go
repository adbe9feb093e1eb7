package telemetry

// Collector accumulates particle lifecycle events within frame windows and
// produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartFrame int64

	// Event counters for current window
	spawned   int
	removed   int
	respawned int
}

// NewCollector creates a new stats collector.
// windowFrames: how many frames each stats window spans.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordSpawned records n particles added by the top-up.
func (c *Collector) RecordSpawned(n int) {
	c.spawned += n
}

// RecordRemoved records n particles destroyed at end of life or off canvas.
func (c *Collector) RecordRemoved(n int) {
	c.removed += n
}

// RecordRespawned records n stream particles reset in place.
func (c *Collector) RecordRespawned(n int) {
	c.respawned += n
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current frame and simulated time, the live
// particle count, the particle speeds for percentile calculation and the
// current frame rate.
func (c *Collector) Flush(frame int64, simTime float64, particles int, speeds []float64, fps float64) WindowStats {
	mean, p10, p50, p90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       simTime,

		Particles: particles,
		Spawned:   c.spawned,
		Removed:   c.removed,
		Respawned: c.respawned,

		SpeedMean: mean,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		FPS: fps,
	}

	// Reset for next window
	c.windowStartFrame = frame
	c.spawned = 0
	c.removed = 0
	c.respawned = 0

	return stats
}
