package postprocess

import "errors"

var (
	// ErrMaterialCreation is returned by Setup when the compensation material could not be built.
	// The volume degrades to a pass-through copy.
	ErrMaterialCreation = errors.New("postprocess: compensation material creation failed")

	// ErrNoFactory is returned by Setup when no MaterialFactory is available.
	ErrNoFactory = errors.New("postprocess: no material factory")
)
