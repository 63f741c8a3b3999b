package camera

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraCount is an atomic counter used to generate unique names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	name string

	orientation mgl32.Quat

	fov    float32
	aspect float32
	near   float32
	far    float32

	projectionMatrix        mgl32.Mat4
	inverseProjectionMatrix mgl32.Mat4

	controller Controller
}

// Camera defines the interface for the viewer camera.
// The camera holds a unit orientation quaternion and perspective settings, and
// derives the non-jittered projection matrix and its inverse whenever a
// perspective setting changes. When a Controller is attached, Update copies the
// controller's orientation onto the camera.
type Camera interface {
	// Name returns the unique, human readable camera name used in logs.
	//
	// Returns:
	//   - string: the camera name
	Name() string

	// Orientation returns the camera's current world-space facing.
	//
	// Returns:
	//   - mgl32.Quat: a unit quaternion
	Orientation() mgl32.Quat

	// SetOrientation replaces the camera's facing. The quaternion is normalized before it is stored.
	//
	// Parameters:
	//   - q: the new orientation
	SetOrientation(q mgl32.Quat)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ProjectionMatrix returns the current non-jittered projection matrix (column-major, WebGPU clip space).
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse of ProjectionMatrix.
	// The compensation shader uses it to lift screen positions back to view-space rays.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse projection matrix
	InverseProjectionMatrix() mgl32.Mat4

	// SetFov sets the field of view in radians and recomputes the projection pair.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes the projection pair.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes the projection pair.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes the projection pair.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// Controller returns the attached Controller, or nil.
	//
	// Returns:
	//   - Controller: the attached controller or nil
	Controller() Controller

	// SetController attaches a Controller to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl Controller)

	// Update copies the controller's orientation onto the camera.
	// Should be called once per frame from the tick phase, after input has been applied.
	// If no controller is attached, this method does nothing.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera facing down -Z with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		name:        "camera_" + strconv.FormatUint(cameraCount.Add(1)-1, 10),
		orientation: mgl32.QuatIdent(),
		fov:         90.0 * (math.Pi / 180.0), // radians
		aspect:      1.0,
		near:        0.1,
		far:         100.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.orientation = c.controller.Orientation()
	}
	c.updateProjection()
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Orientation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orientation
}

func (c *cameraImpl) SetOrientation(q mgl32.Quat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orientation = q.Normalize()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateProjection()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	ctrl := c.controller
	c.mu.Unlock()
	if ctrl == nil {
		return
	}
	q := ctrl.Orientation()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.orientation = q
}

// clipDepthRemap maps OpenGL clip depth [-w, w] onto the WebGPU range [0, w].
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// updateProjection recalculates the projection matrix and its inverse.
// A singular projection leaves the inverse at identity. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	c.projectionMatrix = clipDepthRemap.Mul4(mgl32.Perspective(c.fov, c.aspect, c.near, c.far))
	if c.projectionMatrix.Det() == 0 {
		c.inverseProjectionMatrix = mgl32.Ident4()
		return
	}
	c.inverseProjectionMatrix = c.projectionMatrix.Inv()
}
