package engine

import (
	"log/slog"

	"github.com/pthm-cable/streams/telemetry"
)

// Option configures an engine at construction.
type Option func(*options)

type options struct {
	scheduler Scheduler
	logger    *slog.Logger
	seed      int64
	seedSet   bool
	output    *telemetry.OutputManager
	logStats  bool
}

// WithScheduler sets the frame source. Defaults to a TickerScheduler at the
// configured target FPS.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSeed overrides engine.seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithOutput writes window and perf stats as CSV. The engine closes the
// manager on Destroy.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(o *options) { o.output = om }
}

// WithStatsLogging logs window and perf stats every telemetry.log_interval
// frames.
func WithStatsLogging(enabled bool) Option {
	return func(o *options) { o.logStats = enabled }
}
