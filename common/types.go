// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Extent describes the pixel dimensions of a render target or window surface.
type Extent struct {
	// Width is the horizontal size in pixels.
	Width int
	// Height is the vertical size in pixels.
	Height int
}

// Aspect returns Width / Height, or 1 when the extent has no height.
//
// Returns:
//   - float32: the aspect ratio
func (e Extent) Aspect() float32 {
	if e.Height <= 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// Empty reports whether either dimension is zero or negative.
//
// Returns:
//   - bool: true if the extent cannot hold any pixels
func (e Extent) Empty() bool {
	return e.Width <= 0 || e.Height <= 0
}
