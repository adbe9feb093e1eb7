package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	speeds := []float64{0, 20, 40, 60, 80}

	cases := map[string]struct {
		sorted []float64
		p      float64
		want   float64
	}{
		"nil":            {nil, 0.5, 0},
		"one speed":      {[]float64{12}, 0.9, 12},
		"two speeds":     {[]float64{10, 30}, 0.5, 20},
		"below range":    {speeds, -0.5, 0},
		"above range":    {speeds, 1.5, 80},
		"on a sample":    {speeds, 0.25, 20},
		"upper quartile": {speeds, 0.75, 60},
		"between":        {speeds, 0.6, 48},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Percentile(c.sorted, c.p); math.Abs(got-c.want) > 1e-9 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", c.sorted, c.p, got, c.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	// Unsorted on purpose; the input must not be reordered.
	values := []float64{1.0, 0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 0.5}
	mean, p10, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if values[0] != 1.0 || values[1] != 0.1 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeSpeedStats(nil)

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(60)

	if c.ShouldFlush(59) {
		t.Error("flushed before the window elapsed")
	}
	if !c.ShouldFlush(60) {
		t.Error("did not flush at the window boundary")
	}

	c.RecordSpawned(5)
	c.RecordSpawned(2)
	c.RecordRemoved(3)
	c.RecordRespawned(4)

	s := c.Flush(60, 0.96, 42, []float64{1, 2, 3}, 62.5)
	if s.WindowStartFrame != 0 || s.WindowEndFrame != 60 {
		t.Errorf("window = [%d, %d], want [0, 60]", s.WindowStartFrame, s.WindowEndFrame)
	}
	if s.Spawned != 7 || s.Removed != 3 || s.Respawned != 4 {
		t.Errorf("events = %d/%d/%d, want 7/3/4", s.Spawned, s.Removed, s.Respawned)
	}
	if s.Particles != 42 || s.FPS != 62.5 || s.SpeedMean != 2 {
		t.Errorf("stats = %+v", s)
	}

	// Counters reset and the next window starts at the flush frame.
	if c.ShouldFlush(100) {
		t.Error("window did not restart at the flush frame")
	}
	next := c.Flush(120, 1.92, 40, nil, 60)
	if next.Spawned != 0 || next.WindowStartFrame != 60 {
		t.Errorf("next window = %+v", next)
	}
}
