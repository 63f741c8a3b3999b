package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinPitch is the lowest allowed pitch in degrees (looking straight down).
	MinPitch float32 = -90
	// MaxPitch is the highest allowed pitch in degrees (looking straight up).
	MaxPitch float32 = 90

	// MinSensitivity and MaxSensitivity bound the pointer sensitivity.
	MinSensitivity float32 = 50
	MaxSensitivity float32 = 500
)

// mouseLookController is the pointer driven implementation of Controller.
// It accumulates yaw and pitch and never rolls.
type mouseLookController struct {
	mu *sync.Mutex

	yaw   float32
	pitch float32

	sensitivity float32
}

// Compile-time interface compliance check
var _ Controller = &mouseLookController{}

// NewMouseLook creates a pointer driven look controller with a sensitivity of 150.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewMouseLook(options ...ControllerOption) Controller {
	ml := &mouseLookController{
		mu:          &sync.Mutex{},
		sensitivity: 150,
	}
	for _, option := range options {
		option(ml)
	}
	ml.pitch = clampPitch(ml.pitch)
	ml.sensitivity = clampSensitivity(ml.sensitivity)
	return ml
}

func (ml *mouseLookController) Orientation() mgl32.Quat {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return eulerYawPitch(ml.yaw, ml.pitch)
}

func (ml *mouseLookController) Look(dx, dy, deltaTime float32) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.yaw += dx * ml.sensitivity * deltaTime
	ml.pitch = clampPitch(ml.pitch - dy*ml.sensitivity*deltaTime)
}

func (ml *mouseLookController) Yaw() float32 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.yaw
}

func (ml *mouseLookController) Pitch() float32 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.pitch
}

func (ml *mouseLookController) SetYawPitch(yaw, pitch float32) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.yaw = yaw
	ml.pitch = clampPitch(pitch)
}

func (ml *mouseLookController) Sensitivity() float32 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.sensitivity
}

func (ml *mouseLookController) SetSensitivity(sensitivity float32) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.sensitivity = clampSensitivity(sensitivity)
}

// --- internal helpers ---

// eulerYawPitch builds the orientation for yaw around +Y followed by pitch around the local X axis.
func eulerYawPitch(yaw, pitch float32) mgl32.Quat {
	qy := mgl32.QuatRotate(mgl32.DegToRad(yaw), mgl32.Vec3{0, 1, 0})
	qx := mgl32.QuatRotate(mgl32.DegToRad(pitch), mgl32.Vec3{1, 0, 0})
	return qy.Mul(qx).Normalize()
}

func clampPitch(pitch float32) float32 {
	return mgl32.Clamp(pitch, MinPitch, MaxPitch)
}

func clampSensitivity(s float32) float32 {
	return mgl32.Clamp(s, MinSensitivity, MaxSensitivity)
}
