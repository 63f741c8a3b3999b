package postprocess

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// SoftwareMaterial is a CPU-side Material that keeps the last value of every uploaded parameter.
type SoftwareMaterial struct {
	mu *sync.Mutex

	shader    string
	params    map[string]mgl32.Mat4
	destroyed bool
	onDestroy func()
}

var _ Material = &SoftwareMaterial{}

// SetMatrix records the parameter value.
//
// Parameters:
//   - name: the parameter name
//   - m: the matrix value
func (m *SoftwareMaterial) SetMatrix(name string, mat mgl32.Mat4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[name] = mat
}

// Matrix returns the last value uploaded for name.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - mgl32.Mat4: the last uploaded value
//   - bool: false if the parameter was never uploaded
func (m *SoftwareMaterial) Matrix(name string) (mgl32.Mat4, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.params[name]
	return mat, ok
}

// Shader returns the shader name the material was created for.
func (m *SoftwareMaterial) Shader() string {
	return m.shader
}

// Destroy marks the material destroyed. Only the first call is counted by the factory.
func (m *SoftwareMaterial) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	cb := m.onDestroy
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Destroyed reports whether Destroy has been called.
func (m *SoftwareMaterial) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// SoftwareFactory creates SoftwareMaterials and tracks how many are alive.
type SoftwareFactory struct {
	mu *sync.Mutex

	failWith  error
	created   int
	destroyed int
}

var _ MaterialFactory = &SoftwareFactory{}

// NewSoftwareFactory creates a factory that always succeeds.
//
// Returns:
//   - *SoftwareFactory: the newly created factory
func NewSoftwareFactory() *SoftwareFactory {
	return &SoftwareFactory{mu: &sync.Mutex{}}
}

// FailWith makes every following CreateMaterial call return err. Passing nil restores success.
//
// Parameters:
//   - err: the error to return
func (f *SoftwareFactory) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

// CreateMaterial builds a recording material for shaderName.
//
// Parameters:
//   - shaderName: the shader to build; only ShaderName is known
//
// Returns:
//   - Material: the created material
//   - error: the configured failure, or an error for an unknown shader
func (f *SoftwareFactory) CreateMaterial(shaderName string) (Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if shaderName != ShaderName {
		return nil, fmt.Errorf("unknown shader %q", shaderName)
	}
	f.created++
	return &SoftwareMaterial{
		mu:     &sync.Mutex{},
		shader: shaderName,
		params: make(map[string]mgl32.Mat4, len(ParamNames)),
		onDestroy: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.destroyed++
		},
	}, nil
}

// Live returns how many created materials have not been destroyed.
func (f *SoftwareFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created - f.destroyed
}

// Created returns the total number of materials created.
func (f *SoftwareFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// SoftwareImage is a sized placeholder render target.
type SoftwareImage struct {
	Name          string
	Width, Height int
}

var _ Image = SoftwareImage{}

// Size returns the image dimensions.
func (i SoftwareImage) Size() (int, int) {
	return i.Width, i.Height
}

// OpKind identifies a recorded image operation.
type OpKind int

const (
	// OpBlit is a shader pass from src to dst.
	OpBlit OpKind = iota
	// OpCopy is an unmodified copy from src to dst.
	OpCopy
)

// Op is one recorded image operation. Params holds a snapshot of the material's
// parameters at the time of a blit.
type Op struct {
	Kind     OpKind
	Src, Dst Image
	Params   map[string]mgl32.Mat4
}

// RecorderCapacity is the number of operations a Recorder keeps before dropping the oldest.
const RecorderCapacity = 1024

// Recorder is a CommandSink that records the most recent operations for later inspection.
type Recorder struct {
	mu *sync.Mutex

	ops     []Op
	dropped uint64
}

var _ CommandSink = &Recorder{}

// NewRecorder creates an empty recorder.
//
// Returns:
//   - *Recorder: the newly created recorder
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}}
}

// Blit records a shader pass, snapshotting the material's known parameters.
func (r *Recorder) Blit(src, dst Image, mat Material) {
	params := make(map[string]mgl32.Mat4, len(ParamNames))
	if sm, ok := mat.(*SoftwareMaterial); ok {
		for _, name := range ParamNames {
			if m, ok := sm.Matrix(name); ok {
				params[name] = m
			}
		}
	}
	r.record(Op{Kind: OpBlit, Src: src, Dst: dst, Params: params})
}

// Copy records a pass-through copy.
func (r *Recorder) Copy(src, dst Image) {
	r.record(Op{Kind: OpCopy, Src: src, Dst: dst})
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) >= RecorderCapacity {
		n := copy(r.ops, r.ops[1:])
		r.ops = r.ops[:n]
		r.dropped++
	}
	r.ops = append(r.ops, op)
}

// Dropped returns how many operations were discarded to stay within RecorderCapacity.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Ops returns a copy of every recorded operation.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Last returns the most recent operation.
//
// Returns:
//   - Op: the last operation
//   - bool: false if nothing was recorded
func (r *Recorder) Last() (Op, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) == 0 {
		return Op{}, false
	}
	return r.ops[len(r.ops)-1], true
}

// Reset discards every recorded operation.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = r.ops[:0]
}
