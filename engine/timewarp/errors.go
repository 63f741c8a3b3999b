package timewarp

import "errors"

var (
	// ErrCameraMissing is returned by Activate when no camera is bound.
	ErrCameraMissing = errors.New("timewarp: no camera bound")

	// ErrVolumeMissing is returned by Activate when the bound profile has no time-warp volume.
	ErrVolumeMissing = errors.New("timewarp: no time-warp volume in profile")

	// ErrPipelineMissing is returned by Activate when the controller has no render pipeline.
	ErrPipelineMissing = errors.New("timewarp: no render pipeline")
)
