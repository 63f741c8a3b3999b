package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII), toggles time-warp correction
	KeyP     = 80  // P key (ASCII), toggles the profiler
	KeyR     = 82  // R key (ASCII), re-centers the view
	KeyEsc   = 256 // Escape key (GLFW)
)
