package postprocess

// VolumeBuilderOption is a functional option for configuring a Volume.
type VolumeBuilderOption func(*volume)

// WithVolumeName sets the name used in logs.
//
// Parameters:
//   - name: the volume name
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithVolumeName(name string) VolumeBuilderOption {
	return func(v *volume) {
		v.name = name
	}
}

// WithEnabled sets the initial value of the effect's enable flag (default true).
//
// Parameters:
//   - enabled: the initial flag value
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithEnabled(enabled bool) VolumeBuilderOption {
	return func(v *volume) {
		v.enabled = enabled
	}
}

// WithTransformCell shares an existing cell instead of allocating a new one.
//
// Parameters:
//   - cell: the cell to use; nil is ignored
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithTransformCell(cell *TransformCell) VolumeBuilderOption {
	return func(v *volume) {
		if cell != nil {
			v.cell = cell
		}
	}
}

// WithTargetSize sets the initial intermediate render target size (default 2560x2560).
//
// Parameters:
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithTargetSize(width, height int) VolumeBuilderOption {
	return func(v *volume) {
		if width > 0 && height > 0 {
			v.size.Width, v.size.Height = width, height
		}
	}
}
