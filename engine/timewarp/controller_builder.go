package timewarp

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
)

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controller)

// WithCamera binds the camera whose orientation is sampled.
//
// Parameters:
//   - cam: the camera to bind
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithCamera(cam camera.Camera) ControllerBuilderOption {
	return func(c *controller) {
		c.camera = cam
	}
}

// WithProfile binds the post-process profile holding the time-warp volume.
//
// Parameters:
//   - profile: the profile to bind
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithProfile(profile postprocess.Profile) ControllerBuilderOption {
	return func(c *controller) {
		c.profile = profile
	}
}

// WithEnabled sets the initial correction flag (default true).
//
// Parameters:
//   - enabled: the initial flag value
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithEnabled(enabled bool) ControllerBuilderOption {
	return func(c *controller) {
		c.enabled = enabled
	}
}
