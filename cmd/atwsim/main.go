// Command atwsim opens a window and renders a procedural environment through the time-warp path.
// Mouse movement turns the head; Space toggles correction (and with it the 90/45 Hz cadence).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-timewarp/cmd/internal/config"
	"github.com/Carmen-Shannon/oxy-timewarp/engine"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/cadence"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/window"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "atwsim:", err)
		os.Exit(1)
	}
}

func run() error {
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	log := logger.With("atwsim")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle("Oxy - Asynchronous Time-Warp"),
		window.WithWidth(cfg.WindowWidth),
		window.WithHeight(cfg.WindowHeight),
		window.WithCursorCaptured(true),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()

	// ── Post-process ────────────────────────────────────────────────────
	vol := postprocess.NewVolume(
		postprocess.WithEnabled(cfg.Enabled),
		postprocess.WithTargetSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	profile := postprocess.NewProfile(postprocess.WithTimeWarp(vol))

	// ── Renderer ────────────────────────────────────────────────────────
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.PresentModeUncapped),
		renderer.WithSceneSize(vol.Size()),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Release()

	// ── Camera ──────────────────────────────────────────────────────────
	look := camera.NewMouseLook(camera.WithSensitivity(0.1))
	cam := camera.NewCamera(
		camera.WithName("hmd"),
		camera.WithFov(float32(90*math.Pi/180)),
		camera.WithAspect(float32(cfg.WindowWidth)/float32(cfg.WindowHeight)),
		camera.WithNear(0.01),
		camera.WithFar(1000),
		camera.WithController(look),
	)
	r.SetCamera(cam)

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(true),
		engine.WithCamera(cam),
		engine.WithProfile(profile),
		engine.WithMaterialFactory(r),
		engine.WithCommandSink(r),
		engine.WithFrameTarget(r),
		engine.WithVSyncSetter(r),
		engine.WithSurface(win),
	)
	if err := eng.Setup(); err != nil {
		log.Warn("time-warp material unavailable, presenting uncorrected", slog.Any("error", err))
	}
	defer eng.Shutdown()

	// ── Time-warp + cadence ─────────────────────────────────────────────
	tw := timewarp.NewController(eng.Pipeline(), timewarp.WithCamera(cam), timewarp.WithProfile(profile))
	if err := tw.Activate(); err != nil {
		return fmt.Errorf("activate time-warp: %w", err)
	}
	defer tw.Deactivate()

	pacer := cadence.NewController(eng,
		cadence.WithVolume(vol),
		cadence.WithCadence(cfg.HighFPS, cfg.LowFPS),
	)
	if err := pacer.Start(); err != nil {
		return fmt.Errorf("start cadence: %w", err)
	}

	// ── Input + frame phases ────────────────────────────────────────────
	setupInput(eng, win, r, cam, look, vol)
	eng.AddLateUpdateCallback(func(float32) { tw.LateUpdate() })
	eng.AddFrameCallback(func(float32) { pacer.Update() })
	pacer.Update()

	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║  Oxy - Asynchronous Time-Warp                        ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Println("║  Mouse=Look  Space=Toggle ATW  P=Profiler  R=Recenter║")
	fmt.Println("║  Esc=Quit                                            ║")
	fmt.Println("╚══════════════════════════════════════════════════════╝")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting", slog.Bool("atw", vol.Enabled()), slog.Int("fps", eng.TargetFrameRate()))
	err = eng.Run(ctx)
	blits, copies := r.Stats()
	log.Info("stopped", slog.Uint64("frames", eng.Frame()), slog.Uint64("blits", blits), slog.Uint64("copies", copies))
	return err
}
