package timewarp

import "github.com/go-gl/mathgl/mgl32"

// DeltaRotation returns the rotation that happened while a frame was in flight:
// display ∘ inverse(render).
//
// Parameters:
//   - render: the orientation the frame was rendered with
//   - display: the orientation at display time
//
// Returns:
//   - mgl32.Quat: the in-flight rotation
func DeltaRotation(render, display mgl32.Quat) mgl32.Quat {
	return display.Mul(render.Inverse())
}

// CorrectionMatrix returns the rotation-only matrix that undoes the in-flight rotation,
// i.e. the matrix of inverse(DeltaRotation(render, display)). Equal inputs yield the identity.
//
// Parameters:
//   - render: the orientation the frame was rendered with
//   - display: the orientation at display time
//
// Returns:
//   - mgl32.Mat4: the correction matrix with zero translation and unit scale
func CorrectionMatrix(render, display mgl32.Quat) mgl32.Mat4 {
	if render == display {
		return mgl32.Ident4()
	}
	return DeltaRotation(render, display).Inverse().Mat4()
}
