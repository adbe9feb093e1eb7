package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/engine"
	"github.com/pthm-cable/streams/renderer"
	"github.com/pthm-cable/streams/telemetry"
)

// Render backends.
const (
	renderWindow   = "window"
	renderTerminal = "terminal"
	renderHeadless = "headless"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Preset: streams | particles | watercolor (applied over the config)")
	mode := flag.String("mode", "", "Engine mode: streams | particles (empty = use config)")
	render := flag.String("render", renderWindow, "Render backend: window | terminal | headless")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window and perf stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal
	// backend owns stdout, so its logs are dropped.
	var logOut io.Writer = os.Stdout
	if *render == renderTerminal {
		logOut = io.Discard
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *preset != "" {
		if err := cfg.ApplyPreset(*preset); err != nil {
			slog.Error("failed to apply preset", "error", err)
			os.Exit(1)
		}
	}
	if *mode != "" {
		cfg.Engine.Mode = *mode
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithOutput(output),
		engine.WithStatsLogging(*logStats),
	}
	if *seed != 0 {
		opts = append(opts, engine.WithSeed(*seed))
	}

	var runErr error
	switch *render {
	case renderWindow:
		runErr = runWindow(cfg, opts, *maxFrames)
	case renderTerminal:
		runErr = runTerminal(cfg, opts, *maxFrames)
	case renderHeadless:
		runErr = runHeadless(cfg, opts, *maxFrames)
	default:
		slog.Error("unknown render backend", "render", *render)
		os.Exit(2)
	}
	if runErr != nil {
		slog.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}

// runWindow drives the engine from the raylib main loop. Space toggles the
// loop, D the flow lines and F flocking.
func runWindow(cfg *config.Config, opts []engine.Option, maxFrames int64) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Streams")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Engine.TargetFPS))

	target := renderer.NewRaylibTarget(cfg.Screen.Width, cfg.Screen.Height)
	defer target.Unload()

	sched := engine.NewManualScheduler()
	e, err := engine.New(target, cfg, append(opts, engine.WithScheduler(sched))...)
	if err != nil {
		return err
	}
	defer e.Destroy()
	if err := e.Start(); err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			e.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}
		handleKeys(e)

		rl.BeginDrawing()
		sched.Advance(rl.GetTime())
		target.Present()
		rl.EndDrawing()

		if err := e.Err(); err != nil {
			return err
		}
		if maxFrames > 0 && e.Frame() >= maxFrames {
			slog.Info("max frames reached", "frame", e.Frame())
			break
		}
	}
	return nil
}

func handleKeys(e engine.Engine) {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		if e.State() == engine.StateRunning {
			e.Stop()
		} else if err := e.Start(); err != nil {
			slog.Error("restart failed", "error", err)
		}
	case rl.IsKeyPressed(rl.KeyD):
		on := !e.Config().Engine.DebugFlow
		if err := e.UpdateConfig(config.Patch{DebugFlow: &on}); err != nil {
			slog.Error("toggle debug flow", "error", err)
		}
	case rl.IsKeyPressed(rl.KeyF):
		on := !e.Config().Engine.Flocking
		if err := e.UpdateConfig(config.Patch{Flocking: &on}); err != nil {
			slog.Error("toggle flocking", "error", err)
		}
	case rl.IsKeyPressed(rl.KeyI):
		slog.Info("debug", "info", e.DebugInfo())
	}
}

// runTerminal draws into the terminal with the engine's own ticker. Esc or
// q quits.
func runTerminal(cfg *config.Config, opts []engine.Option, maxFrames int64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	target := renderer.NewTerminalTarget(screen, cfg.Screen.Width, cfg.Screen.Height)
	e, err := engine.New(target, cfg, opts...)
	if err != nil {
		return err
	}
	defer e.Destroy()
	if err := e.Start(); err != nil {
		return err
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	check := time.NewTicker(100 * time.Millisecond)
	defer check.Stop()
	for {
		select {
		case <-quit:
			return e.Err()
		case <-check.C:
			if err := e.Err(); err != nil {
				return err
			}
			if maxFrames > 0 && e.Frame() >= maxFrames {
				return nil
			}
		}
	}
}

// runHeadless steps the engine as fast as possible on a recording target
// with a simulated clock.
func runHeadless(cfg *config.Config, opts []engine.Option, maxFrames int64) error {
	target := renderer.NewRecorder(cfg.Screen.Width, cfg.Screen.Height)
	sched := engine.NewManualScheduler()
	e, err := engine.New(target, cfg, append(opts, engine.WithScheduler(sched))...)
	if err != nil {
		return err
	}
	defer e.Destroy()
	if err := e.Start(); err != nil {
		return err
	}

	dt := 1 / float64(cfg.Engine.TargetFPS)
	slog.Info("starting headless run",
		"mode", e.DebugInfo().Mode,
		"max_frames", maxFrames,
	)
	for frame := int64(0); maxFrames == 0 || frame < maxFrames; frame++ {
		if !sched.Advance(float64(frame) * dt) {
			break
		}
	}
	if err := e.Err(); err != nil {
		return err
	}

	total := target.Total()
	slog.Info("headless run finished",
		"debug", e.DebugInfo(),
		"circles", total.Circles,
		"lines", total.Lines,
	)
	return nil
}
