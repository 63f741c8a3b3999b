package postprocess

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is one snapshot of the reprojection state handed from the render hook to the stage.
type Transform struct {
	// Matrix is the rotation-only correction. Identity when Valid is false.
	Matrix mgl32.Mat4
	// Projection is the camera's non-jittered projection sampled by the hook.
	Projection mgl32.Mat4
	// InverseProjection is the inverse of Projection.
	InverseProjection mgl32.Mat4
	// Valid reports whether the hook stored a correction since the last Reset.
	Valid bool
}

// TransformCell is the single-writer, single-reader slot shared by the render hook
// (writer) and the post-process stage (reader). An invalid cell always reads as the
// identity correction, so a stopped writer can never leave a stale rotation behind.
type TransformCell struct {
	mu sync.Mutex

	current Transform
	writes  uint64
}

// NewTransformCell returns an invalid (identity) cell.
//
// Returns:
//   - *TransformCell: the newly created cell
func NewTransformCell() *TransformCell {
	return &TransformCell{
		current: identityTransform(),
	}
}

// Store publishes a correction and the projection pair it was computed with, and marks the cell valid.
//
// Parameters:
//   - matrix: the rotation-only correction matrix
//   - projection: the non-jittered projection matrix
//   - inverseProjection: the inverse projection matrix
func (c *TransformCell) Store(matrix, projection, inverseProjection mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Transform{
		Matrix:            matrix,
		Projection:        projection,
		InverseProjection: inverseProjection,
		Valid:             true,
	}
	c.writes++
}

// Reset forces the cell back to the invalid identity state.
func (c *TransformCell) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = identityTransform()
}

// Load returns the current snapshot.
//
// Returns:
//   - Transform: the stored transform, or the identity transform when invalid
func (c *TransformCell) Load() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Matrix returns only the correction matrix.
//
// Returns:
//   - mgl32.Mat4: the correction, identity when the cell is invalid
func (c *TransformCell) Matrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Matrix
}

// Writes returns how many times Store has been called over the cell's lifetime.
//
// Returns:
//   - uint64: the store count
func (c *TransformCell) Writes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func identityTransform() Transform {
	return Transform{
		Matrix:            mgl32.Ident4(),
		Projection:        mgl32.Ident4(),
		InverseProjection: mgl32.Ident4(),
	}
}
