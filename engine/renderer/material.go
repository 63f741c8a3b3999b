package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// gpuMaterial is a postprocess.Material holding a compiled compensation program and its
// 192-byte uniform block. The bind group is rebuilt whenever the sampled view changes.
type gpuMaterial struct {
	mu *sync.Mutex

	backend RendererBackend
	shader  shader.Shader
	program *gpuProgram
	sampler *wgpu.Sampler
	uniform *wgpu.Buffer

	data  postprocess.GPUTimeWarpUniform
	dirty bool

	bindGroup *wgpu.BindGroup
	boundView *wgpu.TextureView

	destroyed bool
}

var _ postprocess.Material = &gpuMaterial{}

func (m *gpuMaterial) SetMatrix(name string, value mgl32.Mat4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data.Set(name, value) {
		m.dirty = true
	}
}

// prepare flushes pending parameters and returns a bind group sampling view.
func (m *gpuMaterial) prepare(view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirty {
		m.backend.WriteBuffer(m.uniform, 0, m.data.Marshal())
		m.dirty = false
	}

	if m.bindGroup == nil || m.boundView != view {
		bg, err := m.backend.CreateBindGroup(m.program, m.shader, m.uniform, view, m.sampler)
		if err != nil {
			return nil, err
		}
		if m.bindGroup != nil {
			m.bindGroup.Release()
		}
		m.bindGroup = bg
		m.boundView = view
	}
	return m.bindGroup, nil
}

func (m *gpuMaterial) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return
	}
	m.destroyed = true

	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.uniform != nil {
		m.uniform.Release()
	}
	if m.sampler != nil {
		m.sampler.Release()
	}
	m.program.release()
}
