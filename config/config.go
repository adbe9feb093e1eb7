// Package config provides configuration loading and validation for the engines.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned when a configuration cannot be repaired by clamping.
var ErrInvalid = errors.New("config: invalid")

// Engine modes.
const (
	ModeStreams   = "streams"
	ModeParticles = "particles"
)

// Config holds all engine configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Engine     EngineConfig     `yaml:"engine"`
	Noise      NoiseConfig      `yaml:"noise"`
	FlowField  FlowFieldConfig  `yaml:"flow_field"`
	ForceField ForceFieldConfig `yaml:"force_field"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Particles  ParticleConfig   `yaml:"particles"`
	Streams    StreamConfig     `yaml:"streams"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ScreenConfig holds the initial canvas size.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// EngineConfig holds the options a host passes when mounting an engine.
type EngineConfig struct {
	Mode             string  `yaml:"mode"`
	Count            int     `yaml:"count"`
	Layers           int     `yaml:"layers"`
	WindSpeed        float64 `yaml:"wind_speed"`
	Flocking         bool    `yaml:"flocking"`
	DebugFlow        bool    `yaml:"debug_flow"`
	DebugOpacity     float64 `yaml:"debug_opacity"`
	MaxParticles     int     `yaml:"max_particles"`
	MaxDeltaMS       float64 `yaml:"max_delta_ms"`
	TargetFPS        int     `yaml:"target_fps"`
	QuadtreeCapacity int     `yaml:"quadtree_capacity"`
	HueCycleSpeed    float64 `yaml:"hue_cycle_speed"`
	Seed             int64   `yaml:"seed"`
}

// NoiseConfig selects and shapes the noise source.
type NoiseConfig struct {
	Kind       string  `yaml:"kind"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
}

// ConfluenceConfig places a vortex as a fraction of the canvas.
type ConfluenceConfig struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Strength  float64 `yaml:"strength"`
	Radius    float64 `yaml:"radius"`
	Clockwise bool    `yaml:"clockwise"`
}

// FlowFieldConfig holds curl-noise flow field parameters.
// The component weights are tuning values, not physical constants.
type FlowFieldConfig struct {
	Resolution      float64            `yaml:"resolution"`
	Scale           float64            `yaml:"scale"`
	TimeScale       float64            `yaml:"time_scale"`
	Epsilon         float64            `yaml:"epsilon"`
	CurlWeight      float64            `yaml:"curl_weight"`
	VortexWeight    float64            `yaml:"vortex_weight"`
	BiasWeight      float64            `yaml:"bias_weight"`
	BiasAngle       float64            `yaml:"bias_angle"`
	BiasStrength    float64            `yaml:"bias_strength"`
	EdgeFalloff     float64            `yaml:"edge_falloff"`
	Wobble          float64            `yaml:"wobble"`
	WobbleFrequency float64            `yaml:"wobble_frequency"`
	VortexCore      float64            `yaml:"vortex_core"`
	Confluences     []ConfluenceConfig `yaml:"confluences"`
}

// ForceFieldConfig holds wind, gust, turbulence, puff and wave parameters.
type ForceFieldConfig struct {
	BaseSpeed      float64 `yaml:"base_speed"`
	ReorientMin    float64 `yaml:"reorient_min"`
	ReorientMax    float64 `yaml:"reorient_max"`
	ReorientRate   float64 `yaml:"reorient_rate"`
	HorizontalBias float64 `yaml:"horizontal_bias"`

	GustFrequency       float64 `yaml:"gust_frequency"`
	GustCalm            float64 `yaml:"gust_calm"`
	GustNormal          float64 `yaml:"gust_normal"`
	GustMediumThreshold float64 `yaml:"gust_medium_threshold"`
	GustMediumMin       float64 `yaml:"gust_medium_min"`
	GustMediumMax       float64 `yaml:"gust_medium_max"`
	GustPeakThreshold   float64 `yaml:"gust_peak_threshold"`
	GustPeak            float64 `yaml:"gust_peak"`

	TurbulenceScale     float64 `yaml:"turbulence_scale"`
	TurbulenceTimeScale float64 `yaml:"turbulence_time_scale"`
	TurbulenceStrength  float64 `yaml:"turbulence_strength"`

	Puffs           bool    `yaml:"puffs"`
	PuffInterval    float64 `yaml:"puff_interval"`
	PuffDurationMin float64 `yaml:"puff_duration_min"`
	PuffDurationMax float64 `yaml:"puff_duration_max"`
	PuffStrength    float64 `yaml:"puff_strength"`
	PuffRadius      float64 `yaml:"puff_radius"`
	PuffSpeed       float64 `yaml:"puff_speed"`

	Waves         bool    `yaml:"waves"`
	WaveInterval  float64 `yaml:"wave_interval"`
	WaveDuration  float64 `yaml:"wave_duration"`
	WaveSpeed     float64 `yaml:"wave_speed"`
	WaveStrength  float64 `yaml:"wave_strength"`
	WaveAmplitude float64 `yaml:"wave_amplitude"`
	WaveWidth     float64 `yaml:"wave_width"`

	ForceScale float64 `yaml:"force_scale"`
}

// FlockingConfig holds boids parameters.
type FlockingConfig struct {
	Perception         float64 `yaml:"perception"`
	SeparationDistance float64 `yaml:"separation_distance"`
	MaxSpeed           float64 `yaml:"max_speed"`
	MaxForce           float64 `yaml:"max_force"`
	SeparationWeight   float64 `yaml:"separation_weight"`
	AlignmentWeight    float64 `yaml:"alignment_weight"`
	CohesionWeight     float64 `yaml:"cohesion_weight"`
}

// ParticleConfig holds generic particle parameters.
type ParticleConfig struct {
	MinSize          float64 `yaml:"min_size"`
	MaxSize          float64 `yaml:"max_size"`
	MinLifetimeMS    float64 `yaml:"min_lifetime_ms"`
	MaxLifetimeMS    float64 `yaml:"max_lifetime_ms"`
	MinOpacity       float64 `yaml:"min_opacity"`
	MaxOpacity       float64 `yaml:"max_opacity"`
	MaxSpeed         float64 `yaml:"max_speed"`
	Friction         float64 `yaml:"friction"`
	Margin           float64 `yaml:"margin"`
	FadeIn           float64 `yaml:"fade_in"`
	FadeOut          float64 `yaml:"fade_out"`
	Pulse            float64 `yaml:"pulse"`
	EdgeSpawnChance  float64 `yaml:"edge_spawn_chance"`
	SpawnSpeed       float64 `yaml:"spawn_speed"`
	BoundaryDistance float64 `yaml:"boundary_distance"`
	BoundaryForce    float64 `yaml:"boundary_force"`
	HueSpread        float64 `yaml:"hue_spread"`
	Chroma           float64 `yaml:"chroma"`
	Lightness        float64 `yaml:"lightness"`
}

// StreamConfig holds flowing-stream particle parameters.
type StreamConfig struct {
	Speed           float64 `yaml:"speed"`
	Steer           float64 `yaml:"steer"`
	WindInfluence   float64 `yaml:"wind_influence"`
	TrailLength     int     `yaml:"trail_length"`
	MinLifespanMS   float64 `yaml:"min_lifespan_ms"`
	MaxLifespanMS   float64 `yaml:"max_lifespan_ms"`
	MinSize         float64 `yaml:"min_size"`
	MaxSize         float64 `yaml:"max_size"`
	MinOpacity      float64 `yaml:"min_opacity"`
	MaxOpacity      float64 `yaml:"max_opacity"`
	Margin          float64 `yaml:"margin"`
	SpawnLeftChance float64 `yaml:"spawn_left_chance"`
	FadeIn          float64 `yaml:"fade_in"`
	FadeOut         float64 `yaml:"fade_out"`
}

// LayerStyle is one entry of the layer-indexed colour table.
type LayerStyle struct {
	Hue       float64 `yaml:"hue"`
	Chroma    float64 `yaml:"chroma"`
	Lightness float64 `yaml:"lightness"`
}

// RenderConfig holds drawing parameters.
type RenderConfig struct {
	Background   []int        `yaml:"background"`
	FadeAlpha    float64      `yaml:"fade_alpha"`
	GlowScale    float64      `yaml:"glow_scale"`
	GlowAlpha    float64      `yaml:"glow_alpha"`
	LayerPalette []LayerStyle `yaml:"layer_palette"`
}

// TelemetryConfig holds perf tracking parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`
	LogInterval int `yaml:"log_interval"`
}

// Default returns the embedded defaults. It panics only if the embedded
// file is broken, which is a build defect.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse overlays data on the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		// Only overwrites fields present in data; lists are replaced whole.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.FlowField.Confluences = append([]ConfluenceConfig(nil), c.FlowField.Confluences...)
	out.Render.Background = append([]int(nil), c.Render.Background...)
	out.Render.LayerPalette = append([]LayerStyle(nil), c.Render.LayerPalette...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
