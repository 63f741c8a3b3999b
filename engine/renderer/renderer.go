package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownShader is returned by CreateMaterial for a shader name with no registered source.
	ErrUnknownShader = errors.New("renderer: unknown shader")

	// ErrForeignResource is logged when a Blit or Copy receives an image or material from another backend.
	ErrForeignResource = errors.New("renderer: resource not created by this renderer")

	// ErrNoSceneTarget is returned by BeginFrame before the scene target exists.
	ErrNoSceneTarget = errors.New("renderer: scene target not configured")
)

// ShaderSource builds a parsed shader on demand.
type ShaderSource func() (shader.Shader, error)

// SurfaceProvider is the window the renderer presents to.
type SurfaceProvider interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	shaders map[string]ShaderSource

	// Procedural environment drawn into the scene target at frame begin
	sceneProgram   *gpuProgram
	sceneUniform   *wgpu.Buffer
	sceneBindGroup *wgpu.BindGroup
	camera         camera.Camera

	sceneSize   common.Extent
	surfaceSize common.Extent
	presentMode PresentMode

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool

	blits  uint64
	copies uint64
}

// Renderer is the WebGPU implementation of every host contract the engine renders through.
//
// It creates compensation materials, executes the post-process stage's Blit and Copy commands,
// supplies each frame's source (an offscreen scene target) and destination (the swapchain image),
// and maps the engine's vsync count onto the surface present mode.
type Renderer interface {
	postprocess.MaterialFactory
	postprocess.CommandSink
	engine.FrameTarget
	engine.VSyncSetter
	engine.Resizer

	// SetCamera selects the camera whose orientation the scene pass renders with.
	// The orientation is sampled in BeginFrame, i.e. at render time.
	//
	// Parameters:
	//   - cam: the camera, nil renders with identity orientation
	SetCamera(cam camera.Camera)

	// SetPresentMode sets the surface present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// PresentMode returns the current present mode.
	//
	// Returns:
	//   - PresentMode: the present mode
	PresentMode() PresentMode

	// SceneSize returns the offscreen scene target dimensions.
	//
	// Returns:
	//   - common.Extent: the scene size in pixels
	SceneSize() common.Extent

	// ResizeScene recreates the offscreen scene target. Materials rebind on their next Blit.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error if the texture or bind group could not be created
	ResizeScene(width, height int) error

	// Stats returns how many Blit and Copy commands were executed.
	//
	// Returns:
	//   - blits: executed compensation passes
	//   - copies: executed pass-through copies
	Stats() (blits, copies uint64)

	// Release frees every GPU object owned by the renderer. Materials must be destroyed first.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer presenting to the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the GPU device or scene resources could not be created
func NewRenderer(backendType RendererBackendType, window SurfaceProvider, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		shaders: map[string]ShaderSource{
			postprocess.ShaderName: shader.CompensationShader,
		},
		sceneSize:   common.Extent{Width: postprocess.DefaultTargetSize, Height: postprocess.DefaultTargetSize},
		presentMode: PresentModeUncapped,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, err
	}

	r.backend.SetPresentMode(r.presentMode)
	r.surfaceSize = common.Extent{Width: window.Width(), Height: window.Height()}
	r.backend.ConfigureSurface(r.surfaceSize.Width, r.surfaceSize.Height)

	if err := r.initScene(); err != nil {
		r.backend.Release()
		return nil, err
	}

	logger.With("renderer").Debug("renderer created",
		slog.String("present_mode", r.presentMode.String()),
		slog.Int("scene_width", r.sceneSize.Width),
		slog.Int("scene_height", r.sceneSize.Height))
	return r, nil
}

// initScene builds the environment program and the scene target.
func (r *renderer) initScene() error {
	s, err := shader.EnvironmentShader()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	program, err := r.backend.CreateProgram(s)
	if err != nil {
		return err
	}
	uniform, err := r.backend.CreateUniformBuffer(s.Key(), 64)
	if err != nil {
		program.release()
		return err
	}
	bg, err := r.backend.CreateBindGroup(program, s, uniform, nil, nil)
	if err != nil {
		uniform.Release()
		program.release()
		return err
	}
	r.sceneProgram, r.sceneUniform, r.sceneBindGroup = program, uniform, bg

	return r.backend.ConfigureSceneTarget(r.sceneSize.Width, r.sceneSize.Height)
}

func (r *renderer) CreateMaterial(shaderName string) (postprocess.Material, error) {
	r.mu.Lock()
	source, ok := r.shaders[shaderName]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShader, shaderName)
	}

	s, err := source()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	program, err := r.backend.CreateProgram(s)
	if err != nil {
		return nil, err
	}

	var data postprocess.GPUTimeWarpUniform
	uniform, err := r.backend.CreateUniformBuffer(s.Key(), uint64(data.Size()))
	if err != nil {
		program.release()
		return nil, err
	}
	sampler, err := r.backend.CreateLinearSampler()
	if err != nil {
		uniform.Release()
		program.release()
		return nil, err
	}

	m := &gpuMaterial{
		mu:      &sync.Mutex{},
		backend: r.backend,
		shader:  s,
		program: program,
		sampler: sampler,
		uniform: uniform,
		data: postprocess.GPUTimeWarpUniform{
			InverseMatrix:     mgl32.Ident4(),
			Projection:        mgl32.Ident4(),
			InverseProjection: mgl32.Ident4(),
		},
		dirty: true,
	}
	return m, nil
}

func (r *renderer) BeginFrame() (postprocess.Image, postprocess.Image, error) {
	sceneTex, sceneView, w, h := r.backend.SceneTarget()
	if sceneTex == nil {
		return nil, nil, ErrNoSceneTarget
	}

	surfaceTex, surfaceView, err := r.backend.BeginFrame()
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	cam := r.camera
	surface := r.surfaceSize
	r.mu.Unlock()

	inverseViewProjection := mgl32.Ident4()
	if cam != nil {
		inverseViewProjection = cam.Orientation().Mat4().Mul4(cam.InverseProjectionMatrix())
	}
	r.backend.WriteBuffer(r.sceneUniform, 0, common.StructToBytes(&inverseViewProjection))
	if err := r.backend.DrawFullScreen(r.sceneProgram, r.sceneBindGroup, sceneView); err != nil {
		return nil, nil, err
	}

	src := &gpuImage{label: "scene", texture: sceneTex, view: sceneView, width: w, height: h}
	dst := &gpuImage{label: "display", texture: surfaceTex, view: surfaceView, width: surface.Width, height: surface.Height}
	return src, dst, nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
	r.backend.Present()
}

func (r *renderer) Blit(src, dst postprocess.Image, mat postprocess.Material) {
	log := logger.With("renderer")

	s, okSrc := src.(*gpuImage)
	d, okDst := dst.(*gpuImage)
	m, okMat := mat.(*gpuMaterial)
	if !okSrc || !okDst || !okMat {
		log.Error("blit skipped", slog.Any("error", ErrForeignResource))
		return
	}

	bg, err := m.prepare(s.view)
	if err != nil {
		log.Error("blit skipped", slog.String("shader", m.shader.Key()), slog.Any("error", err))
		return
	}
	if err := r.backend.DrawFullScreen(m.program, bg, d.view); err != nil {
		log.Error("blit skipped", slog.Any("error", err))
		return
	}

	r.mu.Lock()
	r.blits++
	r.mu.Unlock()
}

func (r *renderer) Copy(src, dst postprocess.Image) {
	log := logger.With("renderer")

	s, okSrc := src.(*gpuImage)
	d, okDst := dst.(*gpuImage)
	if !okSrc || !okDst {
		log.Error("copy skipped", slog.Any("error", ErrForeignResource))
		return
	}

	// Copy the overlapping region; the scene target and the display rarely match in size.
	w, h := min(s.width, d.width), min(s.height, d.height)
	if err := r.backend.CopyTexture(s.texture, d.texture, w, h); err != nil {
		log.Error("copy skipped", slog.Any("error", err))
		return
	}

	r.mu.Lock()
	r.copies++
	r.mu.Unlock()
}

// SetVSyncCount maps a sync count onto the present mode: 0 presents immediately,
// anything higher waits for vertical blank.
func (r *renderer) SetVSyncCount(count int) {
	mode := PresentModeUncapped
	if count > 0 {
		mode = PresentModeVSync
	}
	r.SetPresentMode(mode)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	if r.presentMode == mode {
		r.mu.Unlock()
		return
	}
	r.presentMode = mode
	size := r.surfaceSize
	r.mu.Unlock()

	r.backend.SetPresentMode(mode)
	r.backend.ConfigureSurface(size.Width, size.Height)
	logger.With("renderer").Debug("present mode changed", slog.String("present_mode", mode.String()))
}

func (r *renderer) PresentMode() PresentMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presentMode
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	r.surfaceSize = common.Extent{Width: width, Height: height}
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetCamera(cam camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.camera = cam
}

func (r *renderer) SceneSize() common.Extent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sceneSize
}

func (r *renderer) ResizeScene(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid scene size %dx%d", width, height)
	}
	r.mu.Lock()
	unchanged := r.sceneSize.Width == width && r.sceneSize.Height == height
	r.mu.Unlock()
	if unchanged {
		return nil
	}

	if err := r.backend.ConfigureSceneTarget(width, height); err != nil {
		return err
	}
	r.mu.Lock()
	r.sceneSize = common.Extent{Width: width, Height: height}
	r.mu.Unlock()
	return nil
}

func (r *renderer) Stats() (uint64, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blits, r.copies
}

func (r *renderer) Release() {
	if r.sceneBindGroup != nil {
		r.sceneBindGroup.Release()
	}
	if r.sceneUniform != nil {
		r.sceneUniform.Release()
	}
	if r.sceneProgram != nil {
		r.sceneProgram.release()
	}
	r.backend.Release()
}
