package camera

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*mouseLookController)

// WithYaw sets the initial yaw in degrees.
//
// Parameters:
//   - yaw: rotation around +Y in degrees
//
// Returns:
//   - ControllerOption: functional option to set the yaw
func WithYaw(yaw float32) ControllerOption {
	return func(ml *mouseLookController) {
		ml.yaw = yaw
	}
}

// WithPitch sets the initial pitch in degrees. The value is clamped to [MinPitch, MaxPitch].
//
// Parameters:
//   - pitch: rotation around the local X axis in degrees
//
// Returns:
//   - ControllerOption: functional option to set the pitch
func WithPitch(pitch float32) ControllerOption {
	return func(ml *mouseLookController) {
		ml.pitch = pitch
	}
}

// WithSensitivity sets the pointer sensitivity, clamped to [MinSensitivity, MaxSensitivity].
//
// Parameters:
//   - sensitivity: degrees per unit of pointer movement per second
//
// Returns:
//   - ControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) ControllerOption {
	return func(ml *mouseLookController) {
		ml.sensitivity = sensitivity
	}
}
