package postprocess

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/go-gl/mathgl/mgl32"
)

// volume is the implementation of the Volume interface.
type volume struct {
	mu *sync.Mutex

	name    string
	enabled bool

	cell     *TransformCell
	size     common.Extent
	material Material
	setupErr error

	renders      uint64
	passThroughs uint64
}

// Volume is the time-warp compensation stage. It owns the TransformCell written by the
// render hook and, once per camera per frame, blits the rendered image through the
// compensation shader using the stored correction and projection pair.
//
// The stage is structurally always active. Visible correction additionally requires the
// volume's own enable flag; when it is off the uploaded correction is the identity.
type Volume interface {
	// Name returns the volume's name used in logs.
	//
	// Returns:
	//   - string: the volume name
	Name() string

	// IsActive reports whether the host should schedule the stage. Always true.
	//
	// Returns:
	//   - bool: true
	IsActive() bool

	// InjectionPoint returns where the stage runs in the host's post-process order.
	//
	// Returns:
	//   - InjectionPoint: InjectionPointAfterPostProcess
	InjectionPoint() InjectionPoint

	// Enabled returns the effect's own enable flag.
	//
	// Returns:
	//   - bool: true if correction should be visible
	Enabled() bool

	// SetEnabled sets the effect's own enable flag.
	//
	// Parameters:
	//   - enabled: the new flag value
	SetEnabled(enabled bool)

	// Transform returns the cell shared with the render hook.
	//
	// Returns:
	//   - *TransformCell: the reprojection transform store
	Transform() *TransformCell

	// Setup lazily creates the compensation material. Once a material exists further calls
	// are no-ops. A factory failure is logged and wrapped in ErrMaterialCreation; the stage then
	// renders as a pass-through copy until a later Setup succeeds.
	//
	// Parameters:
	//   - factory: the backend that builds the material
	//
	// Returns:
	//   - error: ErrNoFactory, ErrMaterialCreation, or nil
	Setup(factory MaterialFactory) error

	// Ready reports whether a material exists, i.e. whether Render performs a compensated blit.
	//
	// Returns:
	//   - bool: true if Setup has succeeded and Cleanup has not run since
	Ready() bool

	// Render executes the stage for one camera. Without a material it copies src to dst.
	// Otherwise it uploads the three shader parameters and issues a single blit.
	//
	// Parameters:
	//   - cmd: the command sink receiving the image operation
	//   - cam: the camera being rendered, used for the projection pair when the cell is invalid
	//   - src: the fully post-processed image
	//   - dst: the destination image
	Render(cmd CommandSink, cam CameraState, src, dst Image)

	// Cleanup destroys the material, if any. Safe to call repeatedly.
	Cleanup()

	// Resize sets the size of the intermediate render target the stage samples from.
	// Non-positive dimensions are ignored.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - bool: true if the size changed and the target must be rebuilt
	Resize(width, height int) bool

	// Size returns the intermediate render target size.
	//
	// Returns:
	//   - common.Extent: the current target size
	Size() common.Extent

	// Stats returns how many compensated blits and pass-through copies Render has issued.
	//
	// Returns:
	//   - renders: compensated blit count
	//   - passThroughs: pass-through copy count
	Stats() (renders, passThroughs uint64)
}

var _ Volume = &volume{}

// NewVolume creates an enabled time-warp volume with an identity transform and no material.
//
// Parameters:
//   - options: functional options to configure the volume
//
// Returns:
//   - Volume: the newly created volume
func NewVolume(options ...VolumeBuilderOption) Volume {
	v := &volume{
		mu:      &sync.Mutex{},
		name:    "atw_simulation",
		enabled: true,
		cell:    NewTransformCell(),
		size:    common.Extent{Width: DefaultTargetSize, Height: DefaultTargetSize},
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *volume) Name() string {
	return v.name
}

func (v *volume) IsActive() bool {
	return true
}

func (v *volume) InjectionPoint() InjectionPoint {
	return InjectionPointAfterPostProcess
}

func (v *volume) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

func (v *volume) SetEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
}

func (v *volume) Transform() *TransformCell {
	return v.cell
}

func (v *volume) Setup(factory MaterialFactory) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.material != nil {
		return nil
	}
	if factory == nil {
		v.setupErr = ErrNoFactory
		logger.With("postprocess").Warn("no material factory, stage will pass through",
			slog.String("volume", v.name))
		return ErrNoFactory
	}

	mat, err := factory.CreateMaterial(ShaderName)
	if err != nil || mat == nil {
		if err == nil {
			err = errors.New("factory returned no material")
		}
		v.setupErr = fmt.Errorf("%w: %s: %w", ErrMaterialCreation, ShaderName, err)
		logger.With("postprocess").Warn("compensation material unavailable, stage will pass through",
			slog.String("volume", v.name),
			slog.Any("error", err))
		return v.setupErr
	}
	v.material = mat
	v.setupErr = nil
	logger.With("postprocess").Debug("compensation material created", slog.String("volume", v.name))
	return nil
}

func (v *volume) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.material != nil
}

func (v *volume) Render(cmd CommandSink, cam CameraState, src, dst Image) {
	if cmd == nil {
		return
	}

	v.mu.Lock()
	mat := v.material
	enabled := v.enabled
	if mat == nil {
		v.passThroughs++
	} else {
		v.renders++
	}
	v.mu.Unlock()

	if mat == nil {
		cmd.Copy(src, dst)
		return
	}

	t := v.cell.Load()
	correction := t.Matrix
	if !enabled {
		correction = mgl32.Ident4()
	}
	projection, inverseProjection := t.Projection, t.InverseProjection
	if !t.Valid && cam != nil {
		projection, inverseProjection = cam.ProjectionMatrix(), cam.InverseProjectionMatrix()
	}

	mat.SetMatrix(ParamInverseMatrix, correction)
	mat.SetMatrix(ParamProjection, projection)
	mat.SetMatrix(ParamInverseProjection, inverseProjection)
	cmd.Blit(src, dst, mat)
}

func (v *volume) Cleanup() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.material == nil {
		return
	}
	v.material.Destroy()
	v.material = nil
	logger.With("postprocess").Debug("compensation material destroyed", slog.String("volume", v.name))
}

func (v *volume) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.size.Width == width && v.size.Height == height {
		return false
	}
	v.size = common.Extent{Width: width, Height: height}
	logger.With("postprocess").Debug("render target resized",
		slog.String("volume", v.name),
		slog.Int("width", width),
		slog.Int("height", height))
	return true
}

func (v *volume) Size() common.Extent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

func (v *volume) Stats() (renders, passThroughs uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders, v.passThroughs
}
