package camera

import "github.com/go-gl/mathgl/mgl32"

// Controller defines the interface for camera control systems.
// Controllers own the viewer's rotational state. The camera copies the
// controller's orientation each frame in Update.
type Controller interface {
	// Orientation returns the orientation derived from the accumulated yaw and pitch.
	// Roll is always zero.
	//
	// Returns:
	//   - mgl32.Quat: a unit quaternion
	Orientation() mgl32.Quat

	// Look applies one frame of pointer movement. Movement is scaled by the
	// sensitivity and the frame's delta time so rotation speed is independent
	// of frame rate. Moving the pointer up looks up.
	//
	// Parameters:
	//   - dx: horizontal pointer movement since the last frame
	//   - dy: vertical pointer movement since the last frame (positive = down in window space)
	//   - deltaTime: frame delta time in seconds
	Look(dx, dy, deltaTime float32)

	// Yaw returns the accumulated rotation around the Y axis in degrees.
	//
	// Returns:
	//   - float32: yaw in degrees
	Yaw() float32

	// Pitch returns the accumulated rotation around the X axis in degrees, within [MinPitch, MaxPitch].
	//
	// Returns:
	//   - float32: pitch in degrees
	Pitch() float32

	// SetYawPitch replaces the accumulated angles. Pitch is clamped.
	//
	// Parameters:
	//   - yaw: yaw in degrees
	//   - pitch: pitch in degrees
	SetYawPitch(yaw, pitch float32)

	// Sensitivity returns the pointer sensitivity in degrees per unit of movement per second.
	//
	// Returns:
	//   - float32: the sensitivity multiplier
	Sensitivity() float32

	// SetSensitivity replaces the pointer sensitivity, clamped to [MinSensitivity, MaxSensitivity].
	//
	// Parameters:
	//   - sensitivity: the new sensitivity
	SetSensitivity(sensitivity float32)
}
