package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/cadence"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/profiler"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderpipeline"
)

// FrameCallback is called once per frame with the frame duration in seconds.
type FrameCallback func(deltaTime float32)

// FrameTarget supplies the images a frame renders into and presents them afterwards.
type FrameTarget interface {
	// BeginFrame acquires the source image (the fully post-processed scene) and the
	// destination image (the display) for this frame.
	//
	// Returns:
	//   - src: the image the post-process stage reads
	//   - dst: the image the post-process stage writes
	//   - error: an error if the frame could not be acquired; the render phases are skipped
	BeginFrame() (src, dst postprocess.Image, err error)

	// EndFrame submits and presents the frame.
	EndFrame()
}

// Surface is the platform window the engine polls while running.
type Surface interface {
	// PollEvents processes pending input and window events.
	PollEvents()

	// IsRunning returns false once the window has been closed.
	IsRunning() bool
}

// VSyncSetter receives the engine's vertical sync count, e.g. a renderer's present mode.
type VSyncSetter interface {
	SetVSyncCount(count int)
}

// Resizer is implemented by frame targets that size their images from the window.
type Resizer interface {
	Resize(width, height int)
}

// engine implements the Engine interface.
// Runs the five frame phases on the calling goroutine.
type engine struct {
	mu *sync.Mutex

	pipeline renderpipeline.Pipeline
	profile  postprocess.Profile
	cameras  []camera.Camera

	factory postprocess.MaterialFactory
	sink    postprocess.CommandSink
	target  FrameTarget
	surface Surface
	vsync   VSyncSetter

	tickCallbacks       []FrameCallback
	lateUpdateCallbacks []FrameCallback
	inFlightCallbacks   []FrameCallback
	frameCallbacks      []FrameCallback

	profiler         *profiler.Profiler
	profilingEnabled bool

	targetFrameRate  int
	vsyncCount       int
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	frame uint64
	time  time.Duration
}

// Engine is the host frame loop. Each Step runs, in order:
//  1. tick callbacks (input and motion)
//  2. late update callbacks (render-time orientation capture)
//  3. in-flight callbacks, then the render hook for every camera
//  4. the post-process profile for every camera
//  5. frame callbacks (cadence re-evaluation)
//
// The engine is also the process-wide frame pacer driven by the cadence controller.
type Engine interface {
	cadence.FramePacer

	// Pipeline returns the render hook registry cameras are dispatched through.
	//
	// Returns:
	//   - renderpipeline.Pipeline: the pipeline
	Pipeline() renderpipeline.Pipeline

	// Profile returns the post-process profile executed after the render hook.
	//
	// Returns:
	//   - postprocess.Profile: the profile
	Profile() postprocess.Profile

	// AddCamera registers a camera. Cameras render in registration order.
	//
	// Parameters:
	//   - cam: the camera to add
	AddCamera(cam camera.Camera)

	// Cameras returns a copy of the registered cameras.
	//
	// Returns:
	//   - []camera.Camera: the cameras in render order
	Cameras() []camera.Camera

	// AddTickCallback registers a phase 1 callback (input and motion).
	//
	// Parameters:
	//   - cb: the callback
	AddTickCallback(cb FrameCallback)

	// AddLateUpdateCallback registers a phase 2 callback, run after every tick callback.
	//
	// Parameters:
	//   - cb: the callback
	AddLateUpdateCallback(cb FrameCallback)

	// AddInFlightCallback registers a callback run between the late update and the render
	// hook. It models motion that happens while the frame is in flight.
	//
	// Parameters:
	//   - cb: the callback
	AddInFlightCallback(cb FrameCallback)

	// AddFrameCallback registers a phase 5 callback, run after post-processing.
	//
	// Parameters:
	//   - cb: the callback
	AddFrameCallback(cb FrameCallback)

	// Setup creates the post-process materials. Failures degrade the affected volumes to
	// pass-through and are returned for reporting only.
	//
	// Returns:
	//   - error: the first volume setup error, or nil
	Setup() error

	// Step runs one frame.
	//
	// Parameters:
	//   - dt: the frame duration
	Step(dt time.Duration)

	// Run steps frames paced by the target frame rate until ctx is cancelled or the surface closes.
	//
	// Parameters:
	//   - ctx: the context controlling the loop
	//
	// Returns:
	//   - error: nil on a normal stop
	Run(ctx context.Context) error

	// Shutdown releases post-process resources.
	Shutdown()

	// Resize forwards a new display size to the cameras, volumes and frame target.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// TargetFrameRate returns the current target frame rate, 0 when uncapped.
	//
	// Returns:
	//   - int: frames per second
	TargetFrameRate() int

	// VSyncCount returns the current vertical sync count.
	//
	// Returns:
	//   - int: the sync count, 0 when disabled
	VSyncCount() int

	// FrameInterval returns the minimum frame duration implied by the target frame rate.
	//
	// Returns:
	//   - time.Duration: the interval, 0 when uncapped
	FrameInterval() time.Duration

	// Frame returns the number of frames stepped so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frame() uint64

	// Time returns the accumulated frame time.
	//
	// Returns:
	//   - time.Duration: the sum of every Step's dt
	Time() time.Duration

	// Profiler returns the engine profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Without options it renders headless through the software post-process backend.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		pipeline: renderpipeline.NewPipeline(),
		profile:  postprocess.NewProfile(),
		profiler: profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.factory == nil {
		e.factory = postprocess.NewSoftwareFactory()
	}
	if e.sink == nil {
		e.sink = postprocess.NewRecorder()
	}
	if e.target == nil {
		e.target = newSoftwareTarget(defaultWidth, defaultHeight)
	}
	return e
}

func (e *engine) Pipeline() renderpipeline.Pipeline {
	return e.pipeline
}

func (e *engine) Profile() postprocess.Profile {
	return e.profile
}

func (e *engine) AddCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	e.cameras = append(e.cameras, cam)
}

func (e *engine) Cameras() []camera.Camera {
	cp := make([]camera.Camera, len(e.cameras))
	copy(cp, e.cameras)
	return cp
}

func (e *engine) AddTickCallback(cb FrameCallback) {
	if cb != nil {
		e.tickCallbacks = append(e.tickCallbacks, cb)
	}
}

func (e *engine) AddLateUpdateCallback(cb FrameCallback) {
	if cb != nil {
		e.lateUpdateCallbacks = append(e.lateUpdateCallbacks, cb)
	}
}

func (e *engine) AddInFlightCallback(cb FrameCallback) {
	if cb != nil {
		e.inFlightCallbacks = append(e.inFlightCallbacks, cb)
	}
}

func (e *engine) AddFrameCallback(cb FrameCallback) {
	if cb != nil {
		e.frameCallbacks = append(e.frameCallbacks, cb)
	}
}

func (e *engine) Setup() error {
	var first error
	for _, v := range e.profile.Volumes() {
		if err := v.Setup(e.factory); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *engine) Step(dt time.Duration) {
	seconds := float32(dt.Seconds())

	for _, cb := range e.tickCallbacks {
		cb(seconds)
	}
	for _, cb := range e.lateUpdateCallbacks {
		cb(seconds)
	}

	src, dst, err := e.target.BeginFrame()
	if err != nil {
		logger.With("engine").Warn("frame skipped", slog.Uint64("frame", e.frame), slog.Any("error", err))
	} else {
		for _, cb := range e.inFlightCallbacks {
			cb(seconds)
		}

		ctx := renderpipeline.RenderContext{Frame: e.frame, Time: e.time}
		for _, cam := range e.cameras {
			e.pipeline.BeginCameraRendering(ctx, cam)
		}

		volumes := e.profile.Volumes()
		for _, cam := range e.cameras {
			for _, v := range volumes {
				v.Render(e.sink, cam, src, dst)
			}
		}
		e.target.EndFrame()
	}

	for _, cb := range e.frameCallbacks {
		cb(seconds)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(dt)
	}

	e.frame++
	e.time += dt
}

func (e *engine) Run(ctx context.Context) error {
	log := logger.With("engine")
	log.Debug("run loop started", slog.Int("target_fps", e.TargetFrameRate()))

	last := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("run loop stopped", slog.Uint64("frames", e.frame))
			return nil
		case <-timer.C:
		}

		if e.surface != nil {
			e.surface.PollEvents()
			if !e.surface.IsRunning() {
				log.Debug("surface closed", slog.Uint64("frames", e.frame))
				return nil
			}
		}

		frameStart := time.Now()
		e.Step(frameStart.Sub(last))
		last = frameStart

		// Frame rate limiting
		var wait time.Duration
		if limit := e.FrameInterval(); limit > 0 {
			wait = limit - time.Since(frameStart)
		}
		timer.Reset(max(wait, 0))
	}
}

func (e *engine) Shutdown() {
	for _, v := range e.profile.Volumes() {
		v.Cleanup()
	}
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for _, cam := range e.cameras {
		cam.SetAspect(float32(width) / float32(height))
	}
	for _, v := range e.profile.Volumes() {
		v.Resize(width, height)
	}
	if r, ok := e.target.(Resizer); ok {
		r.Resize(width, height)
	}
}

// SetTargetFrameRate sets the render frame rate cap. Non-positive values uncap the loop.
func (e *engine) SetTargetFrameRate(fps int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.targetFrameRate = 0
		e.renderFrameLimit = 0
		return
	}
	e.targetFrameRate = fps
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

// SetVSyncCount records the sync count and forwards it to the VSyncSetter, if any.
func (e *engine) SetVSyncCount(count int) {
	e.mu.Lock()
	e.vsyncCount = max(count, 0)
	vs := e.vsync
	e.mu.Unlock()
	if vs != nil {
		vs.SetVSyncCount(count)
	}
}

func (e *engine) TargetFrameRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targetFrameRate
}

func (e *engine) VSyncCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vsyncCount
}

func (e *engine) FrameInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderFrameLimit
}

func (e *engine) Frame() uint64 {
	return e.frame
}

func (e *engine) Time() time.Duration {
	return e.time
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}
