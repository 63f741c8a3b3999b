package postprocess

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeCamera struct {
	projection, inverse mgl32.Mat4
}

func (c fakeCamera) ProjectionMatrix() mgl32.Mat4        { return c.projection }
func (c fakeCamera) InverseProjectionMatrix() mgl32.Mat4 { return c.inverse }

func newFakeCamera() fakeCamera {
	p := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	return fakeCamera{projection: p, inverse: p.Inv()}
}

var (
	srcImage = SoftwareImage{Name: "src", Width: 64, Height: 64}
	dstImage = SoftwareImage{Name: "dst", Width: 64, Height: 64}
)

func TestVolumeDefaults(t *testing.T) {
	v := NewVolume()
	if !v.IsActive() {
		t.Error("IsActive() = false, want true")
	}
	if !v.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if v.InjectionPoint() != InjectionPointAfterPostProcess {
		t.Errorf("InjectionPoint() = %v, want %v", v.InjectionPoint(), InjectionPointAfterPostProcess)
	}
	if v.Ready() {
		t.Error("Ready() = true before Setup")
	}
	if got := v.Transform().Matrix(); got != mgl32.Ident4() {
		t.Errorf("initial transform = %v, want identity", got)
	}
	if got := v.Size(); got.Width != DefaultTargetSize || got.Height != DefaultTargetSize {
		t.Errorf("Size() = %v, want %dx%d", got, DefaultTargetSize, DefaultTargetSize)
	}
}

func TestVolumeIsActiveWhenDisabled(t *testing.T) {
	v := NewVolume(WithEnabled(false))
	if !v.IsActive() {
		t.Error("IsActive() = false with the effect disabled, want true")
	}
}

func TestRenderWithoutMaterialCopies(t *testing.T) {
	v := NewVolume()
	rec := NewRecorder()
	v.Render(rec, newFakeCamera(), srcImage, dstImage)

	ops := rec.Ops()
	if len(ops) != 1 {
		t.Fatalf("recorded %d ops, want 1", len(ops))
	}
	if ops[0].Kind != OpCopy || ops[0].Src != srcImage || ops[0].Dst != dstImage {
		t.Errorf("op = %+v, want copy src->dst", ops[0])
	}
	if renders, copies := v.Stats(); renders != 0 || copies != 1 {
		t.Errorf("Stats() = (%d, %d), want (0, 1)", renders, copies)
	}
}

func TestRenderUploadsParametersAndBlitsOnce(t *testing.T) {
	factory := NewSoftwareFactory()
	v := NewVolume()
	if err := v.Setup(factory); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	cam := newFakeCamera()
	correction := mgl32.QuatRotate(mgl32.DegToRad(5), mgl32.Vec3{0, 1, 0}).Mat4()
	v.Transform().Store(correction, cam.projection, cam.inverse)

	rec := NewRecorder()
	v.Render(rec, cam, srcImage, dstImage)

	ops := rec.Ops()
	if len(ops) != 1 {
		t.Fatalf("recorded %d ops, want 1", len(ops))
	}
	op := ops[0]
	if op.Kind != OpBlit {
		t.Fatalf("op kind = %v, want blit", op.Kind)
	}
	want := map[string]mgl32.Mat4{
		ParamInverseMatrix:     correction,
		ParamProjection:        cam.projection,
		ParamInverseProjection: cam.inverse,
	}
	for name, m := range want {
		got, ok := op.Params[name]
		if !ok {
			t.Errorf("parameter %s not uploaded", name)
			continue
		}
		if got != m {
			t.Errorf("parameter %s = %v, want %v", name, got, m)
		}
	}
}

func TestRenderDisabledUploadsIdentity(t *testing.T) {
	v := NewVolume(WithEnabled(false))
	if err := v.Setup(NewSoftwareFactory()); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	cam := newFakeCamera()
	v.Transform().Store(mgl32.QuatRotate(0.3, mgl32.Vec3{1, 0, 0}).Mat4(), cam.projection, cam.inverse)

	rec := NewRecorder()
	v.Render(rec, cam, srcImage, dstImage)

	op, ok := rec.Last()
	if !ok || op.Kind != OpBlit {
		t.Fatalf("Last() = %+v, %v; want a blit", op, ok)
	}
	if got := op.Params[ParamInverseMatrix]; got != mgl32.Ident4() {
		t.Errorf("uploaded correction = %v, want identity", got)
	}
}

func TestRenderInvalidCellUsesCameraProjection(t *testing.T) {
	v := NewVolume()
	if err := v.Setup(NewSoftwareFactory()); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	cam := newFakeCamera()
	rec := NewRecorder()
	v.Render(rec, cam, srcImage, dstImage)

	op, _ := rec.Last()
	if got := op.Params[ParamInverseMatrix]; got != mgl32.Ident4() {
		t.Errorf("correction = %v, want identity", got)
	}
	if got := op.Params[ParamProjection]; got != cam.projection {
		t.Errorf("projection = %v, want camera projection", got)
	}
}

func TestSetupFailureDegradesToPassThrough(t *testing.T) {
	factory := NewSoftwareFactory()
	cause := errors.New("shader not found")
	factory.FailWith(cause)

	v := NewVolume()
	err := v.Setup(factory)
	if !errors.Is(err, ErrMaterialCreation) {
		t.Fatalf("Setup() error = %v, want ErrMaterialCreation", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Setup() error = %v, want it to wrap the factory error", err)
	}

	rec := NewRecorder()
	v.Render(rec, newFakeCamera(), srcImage, dstImage)
	if op, _ := rec.Last(); op.Kind != OpCopy {
		t.Errorf("op kind = %v, want copy", op.Kind)
	}

	factory.FailWith(nil)
	if err := v.Setup(factory); err != nil {
		t.Fatalf("retry Setup() error = %v", err)
	}
	if !v.Ready() {
		t.Error("Ready() = false after a successful retry")
	}
}

func TestSetupWithoutFactory(t *testing.T) {
	v := NewVolume()
	if err := v.Setup(nil); !errors.Is(err, ErrNoFactory) {
		t.Errorf("Setup(nil) error = %v, want ErrNoFactory", err)
	}
}

func TestSetupIsLazyAndCleanupDoesNotLeak(t *testing.T) {
	factory := NewSoftwareFactory()
	v := NewVolume()

	for range 3 {
		if err := v.Setup(factory); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if err := v.Setup(factory); err != nil {
			t.Fatalf("second Setup() error = %v", err)
		}
		if got := factory.Live(); got != 1 {
			t.Fatalf("live materials = %d, want 1", got)
		}
		v.Cleanup()
		v.Cleanup()
		if got := factory.Live(); got != 0 {
			t.Fatalf("live materials after Cleanup = %d, want 0", got)
		}
	}
	if got := factory.Created(); got != 3 {
		t.Errorf("Created() = %d, want 3", got)
	}
}

func TestResize(t *testing.T) {
	v := NewVolume(WithTargetSize(100, 50))
	if got := v.Size(); got.Width != 100 || got.Height != 50 {
		t.Fatalf("Size() = %v, want 100x50", got)
	}

	tests := []struct {
		name          string
		width, height int
		changed       bool
	}{
		{"grow", 2560, 2560, true},
		{"same", 2560, 2560, false},
		{"zero width", 0, 10, false},
		{"negative height", 10, -1, false},
		{"shrink", 1280, 720, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Resize(tt.width, tt.height); got != tt.changed {
				t.Errorf("Resize(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.changed)
			}
		})
	}
	if got := v.Size(); got.Width != 1280 || got.Height != 720 {
		t.Errorf("Size() = %v, want 1280x720", got)
	}
}

func TestRenderNilSink(t *testing.T) {
	v := NewVolume()
	v.Render(nil, newFakeCamera(), srcImage, dstImage)
	if renders, copies := v.Stats(); renders != 0 || copies != 0 {
		t.Errorf("Stats() = (%d, %d), want (0, 0)", renders, copies)
	}
}

func TestProfile(t *testing.T) {
	if got := NewProfile().TimeWarp(); got != nil {
		t.Errorf("empty profile TimeWarp() = %v, want nil", got)
	}
	v := NewVolume()
	p := NewProfile(WithTimeWarp(v))
	if p.TimeWarp() != v {
		t.Error("TimeWarp() did not return the injected volume")
	}
	if got := len(p.Volumes()); got != 1 {
		t.Errorf("len(Volumes()) = %d, want 1", got)
	}
	p.SetTimeWarp(nil)
	if p.TimeWarp() != nil || p.Volumes() != nil {
		t.Error("SetTimeWarp(nil) did not remove the volume")
	}
}

func TestRecorderCapacity(t *testing.T) {
	rec := NewRecorder()
	for i := range RecorderCapacity + 10 {
		rec.Copy(SoftwareImage{Width: i}, dstImage)
	}
	ops := rec.Ops()
	if len(ops) != RecorderCapacity {
		t.Fatalf("len(Ops()) = %d, want %d", len(ops), RecorderCapacity)
	}
	if rec.Dropped() != 10 {
		t.Errorf("Dropped() = %d, want 10", rec.Dropped())
	}
	if w, _ := ops[0].Src.Size(); w != 10 {
		t.Errorf("oldest kept op width = %d, want 10", w)
	}
	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Error("Last() reported an op after Reset")
	}
}
