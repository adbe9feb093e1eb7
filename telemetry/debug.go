package telemetry

import "log/slog"

// DebugInfo is a plain snapshot of an engine's state for overlays and logs.
type DebugInfo struct {
	Mode      string
	State     string
	Frame     int64
	SimTime   float64
	FPS       float64
	Particles int
	Layers    int
	Width     float64
	Height    float64
	GlobalHue float64

	// Force field
	WindAngle float64
	WindSpeed float64
	Puffs     int
	Waves     int

	// Flow field, zero for the particle engine
	FlowCols    int
	FlowRows    int
	Confluences int

	Flocking bool
	Err      string
}

// LogValue implements slog.LogValuer for structured logging.
func (d DebugInfo) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("mode", d.Mode),
		slog.String("state", d.State),
		slog.Int64("frame", d.Frame),
		slog.Float64("fps", d.FPS),
		slog.Int("particles", d.Particles),
		slog.Float64("wind_angle", d.WindAngle),
		slog.Int("puffs", d.Puffs),
		slog.Int("waves", d.Waves),
	}
	if d.Layers > 0 {
		attrs = append(attrs, slog.Int("layers", d.Layers))
	}
	if d.FlowCols > 0 {
		attrs = append(attrs,
			slog.Int("flow_cols", d.FlowCols),
			slog.Int("flow_rows", d.FlowRows),
			slog.Int("confluences", d.Confluences),
		)
	}
	if d.Err != "" {
		attrs = append(attrs, slog.String("err", d.Err))
	}
	return slog.GroupValue(attrs...)
}
