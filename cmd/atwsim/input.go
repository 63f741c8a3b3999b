package main

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/window"
)

// setupInput wires mouse-look, the toggle keys and window resize.
//
// Mouse deltas accumulate between frames and are applied in the tick phase, so the
// late-update phase always samples the orientation the input produced this frame.
//
// Parameters:
//   - eng: the engine providing the tick phase and profiler
//   - win: the window delivering input
//   - r: the renderer whose scene target follows the volume size
//   - cam: the camera the controller drives
//   - look: the mouse-look controller
//   - vol: the time-warp volume toggled by Space
func setupInput(eng engine.Engine, win window.Window, r renderer.Renderer, cam camera.Camera, look camera.Controller, vol postprocess.Volume) {
	log := logger.With("input")

	var dx, dy float32
	win.SetMouseDeltaCallback(func(x, y float32) {
		dx += x
		dy += y
	})

	profiling := true
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeySpace:
			vol.SetEnabled(!vol.Enabled())
			log.Info("time-warp toggled", slog.Bool("enabled", vol.Enabled()))
		case common.KeyP:
			profiling = !profiling
			if profiling {
				eng.EnableProfiler()
			} else {
				eng.DisableProfiler()
			}
		case common.KeyR:
			look.SetYawPitch(0, 0)
		}
	})

	win.SetResizeCallback(func(width, height int) {
		eng.Resize(width, height)
		size := vol.Size()
		if err := r.ResizeScene(size.Width, size.Height); err != nil {
			log.Error("scene resize failed", slog.Any("error", err))
		}
	})

	eng.AddTickCallback(func(deltaTime float32) {
		look.Look(dx, dy, deltaTime)
		dx, dy = 0, 0
		cam.Update()
	})
}
