// Package timewarp samples the bound camera's orientation twice per frame, once after
// the update phase and once inside the render hook, and publishes the rotation-only
// correction for the time-warp post-process volume.
package timewarp

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderpipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// controller is the implementation of the Controller interface.
type controller struct {
	mu *sync.Mutex

	pipeline renderpipeline.Pipeline
	camera   camera.Camera
	profile  postprocess.Profile
	enabled  bool

	active      bool
	handle      renderpipeline.Handle
	cell        *postprocess.TransformCell
	renderTime  mgl32.Quat
	invocations uint64
}

// Controller drives time-warp correction for one camera.
//
// Per frame the host calls LateUpdate after all motion has been applied, then fires the
// render hook for each camera. The hook, registered on Activate, computes the correction
// for the bound camera and stores it in the volume's TransformCell.
type Controller interface {
	// Activate resolves the camera and volume bindings, subscribes the render hook and
	// captures the initial render-time orientation. Calling it while active is a no-op.
	// A missing binding is logged and returned; the controller then stays inert.
	//
	// Returns:
	//   - error: ErrPipelineMissing, ErrCameraMissing, ErrVolumeMissing, or nil
	Activate() error

	// Deactivate resets the transform to identity and then releases the hook subscription.
	// Calling it while inactive is a no-op.
	Deactivate()

	// Active reports whether the render hook is subscribed.
	//
	// Returns:
	//   - bool: true between a successful Activate and the next Deactivate
	Active() bool

	// LateUpdate captures the bound camera's current orientation as the render-time orientation.
	// It must run once per frame after every camera-rotating update and before the render hook.
	LateUpdate()

	// Enabled returns the controller's correction flag.
	//
	// Returns:
	//   - bool: true if the hook publishes corrections
	Enabled() bool

	// SetEnabled sets the controller's correction flag. While false the hook forces the
	// transform to identity.
	//
	// Parameters:
	//   - enabled: the new flag value
	SetEnabled(enabled bool)

	// RenderTimeOrientation returns the orientation captured by the last LateUpdate.
	//
	// Returns:
	//   - mgl32.Quat: the render-time orientation, identity while inactive
	RenderTimeOrientation() mgl32.Quat

	// Invocations returns how many times the hook has run for the bound camera.
	//
	// Returns:
	//   - uint64: the invocation count
	Invocations() uint64

	// Camera returns the bound camera.
	//
	// Returns:
	//   - camera.Camera: the bound camera, or nil
	Camera() camera.Camera
}

var _ Controller = &controller{}

// NewController creates an inactive controller registered against pipeline on Activate.
//
// Parameters:
//   - pipeline: the render hook registry
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(pipeline renderpipeline.Pipeline, options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:         &sync.Mutex{},
		pipeline:   pipeline,
		enabled:    true,
		renderTime: mgl32.QuatIdent(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controller) Activate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return nil
	}

	log := logger.With("timewarp")
	if c.pipeline == nil {
		log.Error("activation failed", slog.Any("error", ErrPipelineMissing))
		return ErrPipelineMissing
	}
	if c.camera == nil {
		log.Error("activation failed", slog.Any("error", ErrCameraMissing))
		return ErrCameraMissing
	}
	var vol postprocess.Volume
	if c.profile != nil {
		vol = c.profile.TimeWarp()
	}
	if vol == nil {
		err := fmt.Errorf("%w: camera %s", ErrVolumeMissing, c.camera.Name())
		log.Error("activation failed", slog.Any("error", err))
		return err
	}

	c.cell = vol.Transform()
	c.renderTime = c.camera.Orientation()
	c.handle = c.pipeline.SubscribeBeginCameraRendering(c.onBeginCameraRendering)
	c.active = true
	log.Debug("activated",
		slog.String("camera", c.camera.Name()),
		slog.String("volume", vol.Name()),
		slog.Uint64("handle", uint64(c.handle)))
	return nil
}

func (c *controller) Deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	if c.cell != nil {
		c.cell.Reset()
	}
	handle := c.handle
	c.handle = 0
	c.active = false
	c.renderTime = mgl32.QuatIdent()
	c.mu.Unlock()

	// The hook takes c.mu, so the subscription is released outside the lock.
	c.pipeline.Unsubscribe(handle)
	logger.With("timewarp").Debug("deactivated", slog.Uint64("handle", uint64(handle)))
}

func (c *controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *controller) LateUpdate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.camera == nil {
		return
	}
	c.renderTime = c.camera.Orientation()
}

func (c *controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func (c *controller) RenderTimeOrientation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderTime
}

func (c *controller) Invocations() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invocations
}

func (c *controller) Camera() camera.Camera {
	return c.camera
}

// onBeginCameraRendering is the render hook. It reads the display-time orientation and
// publishes the correction for the bound camera only.
func (c *controller) onBeginCameraRendering(_ renderpipeline.RenderContext, cam camera.Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || cam == nil || cam != c.camera {
		return
	}
	c.invocations++

	var vol postprocess.Volume
	if c.profile != nil {
		vol = c.profile.TimeWarp()
	}
	if !c.enabled || vol == nil {
		if c.cell != nil {
			c.cell.Reset()
		}
		return
	}

	cell := vol.Transform()
	if cell != c.cell {
		// The profile was rebound; never leave a correction behind in the old cell.
		if c.cell != nil {
			c.cell.Reset()
		}
		c.cell = cell
	}
	cell.Store(
		CorrectionMatrix(c.renderTime, cam.Orientation()),
		cam.ProjectionMatrix(),
		cam.InverseProjectionMatrix(),
	)
}
