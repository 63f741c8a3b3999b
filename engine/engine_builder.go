package engine

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderpipeline"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTargetFrameRate sets the initial render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTargetFrameRate(fps int) EngineBuilderOption {
	return func(e *engine) {
		e.SetTargetFrameRate(fps)
	}
}

// WithPipeline sets the render hook registry. Defaults to a new empty pipeline.
//
// Parameters:
//   - p: the pipeline to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipeline(p renderpipeline.Pipeline) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.pipeline = p
		}
	}
}

// WithProfile sets the post-process profile. Defaults to an empty profile.
//
// Parameters:
//   - p: the profile to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfile(p postprocess.Profile) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profile = p
		}
	}
}

// WithCamera registers a camera during engine construction.
//
// Parameters:
//   - cam: the camera to add
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(cam camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.AddCamera(cam)
	}
}

// WithMaterialFactory sets the backend that builds post-process materials.
// Defaults to the software factory.
//
// Parameters:
//   - f: the factory to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaterialFactory(f postprocess.MaterialFactory) EngineBuilderOption {
	return func(e *engine) {
		e.factory = f
	}
}

// WithCommandSink sets the sink receiving post-process image operations.
// Defaults to a software recorder.
//
// Parameters:
//   - s: the sink to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCommandSink(s postprocess.CommandSink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = s
	}
}

// WithFrameTarget sets the source of per-frame images. Defaults to a headless 1280x720 target.
//
// Parameters:
//   - t: the target to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameTarget(t FrameTarget) EngineBuilderOption {
	return func(e *engine) {
		e.target = t
	}
}

// WithSurface sets the window polled by Run.
//
// Parameters:
//   - s: the surface to poll
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurface(s Surface) EngineBuilderOption {
	return func(e *engine) {
		e.surface = s
	}
}

// WithVSyncSetter sets where SetVSyncCount is forwarded.
//
// Parameters:
//   - v: the setter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithVSyncSetter(v VSyncSetter) EngineBuilderOption {
	return func(e *engine) {
		e.vsync = v
	}
}
