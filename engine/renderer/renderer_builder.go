package renderer

import (
	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithShader registers WGSL source under a shader name so CreateMaterial can build it.
// The compensation shader is registered by default under postprocess.ShaderName.
//
// Parameters:
//   - name: the shader name passed to CreateMaterial
//   - source: the WGSL source code
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader option to a renderer
func WithShader(name, source string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaders[name] = func() (shader.Shader, error) {
			return shader.NewShader(name, source)
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithSceneSize sets the offscreen scene target size. Defaults to postprocess.DefaultTargetSize square.
// Non-positive dimensions keep the default.
//
// Parameters:
//   - size: the scene target size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the scene size option to a renderer
func WithSceneSize(size common.Extent) RendererBuilderOption {
	return func(r *renderer) {
		if size.Empty() {
			return
		}
		r.sceneSize = size
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
