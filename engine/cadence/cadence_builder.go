package cadence

import "github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controller)

// WithVolume binds the time-warp volume whose enable flag selects the cadence.
//
// Parameters:
//   - v: the volume to bind
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithVolume(v postprocess.Volume) ControllerBuilderOption {
	return func(c *controller) {
		c.volume = v
	}
}

// WithProfile binds a profile; its time-warp volume is read every frame. WithVolume takes precedence.
//
// Parameters:
//   - p: the profile to bind
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithProfile(p postprocess.Profile) ControllerBuilderOption {
	return func(c *controller) {
		c.profile = p
	}
}

// WithCadence sets the corrected (high) and uncorrected (low) frame rates.
// Non-positive values keep the defaults.
//
// Parameters:
//   - high: the cadence while correction is enabled
//   - low: the cadence while correction is disabled
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithCadence(high, low int) ControllerBuilderOption {
	return func(c *controller) {
		if high > 0 {
			c.high = high
		}
		if low > 0 {
			c.low = low
		}
	}
}

// WithPacer adds another pacer to drive, e.g. the window's swap interval alongside the engine limiter.
//
// Parameters:
//   - p: the pacer to add; nil is ignored
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithPacer(p FramePacer) ControllerBuilderOption {
	return func(c *controller) {
		if p != nil {
			c.pacers = append(c.pacers, p)
		}
	}
}
