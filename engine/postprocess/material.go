package postprocess

import "github.com/go-gl/mathgl/mgl32"

// Material is a shader-backed resource that accepts named matrix parameters.
// Backends implement it on top of their GPU API; the software backend records parameters.
type Material interface {
	// SetMatrix uploads a 4x4 matrix parameter.
	//
	// Parameters:
	//   - name: one of the ParamNames
	//   - m: the column-major matrix
	SetMatrix(name string, m mgl32.Mat4)

	// Destroy releases the material's resources. Called exactly once by Volume.Cleanup.
	Destroy()
}

// MaterialFactory creates materials for a named shader.
type MaterialFactory interface {
	// CreateMaterial builds a material for the named shader.
	//
	// Parameters:
	//   - shaderName: the shader to compile, ShaderName for the compensation pass
	//
	// Returns:
	//   - Material: the created material
	//   - error: an error if the shader or material could not be built
	CreateMaterial(shaderName string) (Material, error)
}

// Image is a render target handle passed between post-process stages.
type Image interface {
	// Size returns the image dimensions in pixels.
	//
	// Returns:
	//   - width, height: the dimensions in pixels
	Size() (width, height int)
}

// CommandSink records the image operations issued by a post-process stage.
type CommandSink interface {
	// Blit draws src into dst with one full-screen pass through mat.
	//
	// Parameters:
	//   - src: the source image
	//   - dst: the destination image
	//   - mat: the material whose shader samples src
	Blit(src, dst Image, mat Material)

	// Copy copies src into dst unchanged.
	//
	// Parameters:
	//   - src: the source image
	//   - dst: the destination image
	Copy(src, dst Image)
}

// CameraState exposes the per-camera matrices a stage may read at render time.
// camera.Camera satisfies this interface.
type CameraState interface {
	// ProjectionMatrix returns the non-jittered projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse of ProjectionMatrix.
	InverseProjectionMatrix() mgl32.Mat4
}
