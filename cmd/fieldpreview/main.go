// Flow field preview tool - interactive tuning of the curl-noise flow field
// with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/noise"
	"github.com/pthm-cable/streams/renderer"
	"github.com/pthm-cable/streams/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 560
	panelWidth   = windowWidth - previewSize - 30
)

// slider binds a raygui slider to a float config field.
type slider struct {
	label    string
	min, max float32
	format   string
	value    *float64
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 12345, "Noise seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := cfg.Clone()

	rl.InitWindow(windowWidth, windowHeight, "Flow Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	target := renderer.NewRaylibTarget(previewSize, previewSize)
	defer target.Unload()
	if err := target.Ready(); err != nil {
		slog.Error("preview target", "error", err)
		os.Exit(1)
	}

	kinds := []string{noise.KindPerlin, noise.KindSimplex, noise.KindOpenSimplex}
	flow, err := buildFlow(cfg, *seed)
	if err != nil {
		slog.Error("building flow field", "error", err)
		os.Exit(1)
	}

	var t float64
	animating := false
	octaves := float64(cfg.Noise.Octaves)

	for !rl.WindowShouldClose() {
		ff := &cfg.FlowField
		sliders := []slider{
			{"Scale (noise frequency per px)", 0.0005, 0.01, "%.4f", &ff.Scale},
			{"Octaves", 1, 6, "%.0f", &octaves},
			{"Curl weight", 0, 1, "%.2f", &ff.CurlWeight},
			{"Vortex weight", 0, 1, "%.2f", &ff.VortexWeight},
			{"Bias weight", 0, 1, "%.2f", &ff.BiasWeight},
			{"Bias angle (rad)", -math.Pi, math.Pi, "%.2f", &ff.BiasAngle},
			{"Edge falloff", 0, 1, "%.2f", &ff.EdgeFalloff},
			{"Wobble", 0, 0.5, "%.2f", &ff.Wobble},
			{"Time scale", 0, 0.2, "%.3f", &ff.TimeScale},
		}

		if animating {
			t += float64(rl.GetFrameTime())
			flow.Update(t)
		}

		target.Begin()
		target.Fade(color.RGBA{R: 12, G: 14, B: 24, A: 255}, 1)
		renderer.DrawFlowLines(target, flow, 0.8)
		for _, c := range flow.Confluences() {
			ring := color.RGBA{R: 255, G: 170, B: 90, A: 200}
			if !c.Clockwise {
				ring = color.RGBA{R: 90, G: 200, B: 255, A: 200}
			}
			target.Circle(c.Pos, 4, ring)
		}
		target.End()

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		target.Present()
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Noise: %s  Time: %.1f  Grid: %dx%d", cfg.Noise.Kind, t, flow.Cols(), flow.Rows()),
			10, previewSize+15, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Flow Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				float32(*s.value), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != float32(*s.value) {
				*s.value = float64(v)
				changed = true
			}
			panelY += 30
		}
		if n := int(math.Round(octaves)); n != cfg.Noise.Octaves {
			cfg.Noise.Octaves = n
			changed = true
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Noise: "+cfg.Noise.Kind) {
			cfg.Noise.Kind = kinds[(max(slices.Index(kinds, cfg.Noise.Kind), 0)+1)%len(kinds)]
			changed = true
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			*seed = int64(rl.GetRandomValue(0, 99999))
			changed = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			cfg = defaults.Clone()
			octaves = float64(cfg.Noise.Octaves)
			t = 0
			changed = true
		}
		panelY += 45

		if changed {
			if err := cfg.Validate(); err != nil {
				slog.Error("invalid parameters", "error", err)
			} else if next, err := buildFlow(cfg, *seed); err == nil {
				flow = next
				flow.Update(t)
			}
		}

		out := tuningYAML(cfg)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 22
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if panelY > windowHeight-40 {
				break
			}
			rl.DrawText(line, int32(panelX), int32(panelY), 12, rl.Gray)
			panelY += 14
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-20), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(out)
		}

		rl.EndDrawing()
	}
}

// buildFlow creates a flow field over the preview area from cfg.
func buildFlow(cfg *config.Config, seed int64) (*systems.FlowField, error) {
	base, err := noise.New(cfg.Noise.Kind, seed)
	if err != nil {
		return nil, err
	}
	potential := noise.FBM{
		Src:        base,
		Octaves:    cfg.Noise.Octaves,
		Lacunarity: cfg.Noise.Lacunarity,
		Gain:       cfg.Noise.Gain,
	}
	return systems.NewFlowField(cfg.FlowField, potential, previewSize, previewSize), nil
}

// tuningYAML renders the tunable sections as YAML for pasting into a config.
func tuningYAML(cfg *config.Config) string {
	ff := cfg.FlowField
	ff.Confluences = nil
	data, err := yaml.Marshal(struct {
		Noise     config.NoiseConfig     `yaml:"noise"`
		FlowField config.FlowFieldConfig `yaml:"flow_field"`
	}{cfg.Noise, ff})
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
