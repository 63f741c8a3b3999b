package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

// near reports whether every component of got is within tol of want.
func near(got, want []float32, tol float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > tol {
			return false
		}
	}
	return true
}

func mat4Near(got, want mgl32.Mat4, tol float64) bool {
	return near(got[:], want[:], tol)
}

func quatNear(got, want mgl32.Quat, tol float64) bool {
	return near([]float32{got.W, got.V[0], got.V[1], got.V[2]}, []float32{want.W, want.V[0], want.V[1], want.V[2]}, tol)
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	if got := c.Orientation(); got != mgl32.QuatIdent() {
		t.Errorf("Orientation() = %v, want identity", got)
	}
	if c.Name() == "" {
		t.Error("Name() is empty")
	}
	product := c.ProjectionMatrix().Mul4(c.InverseProjectionMatrix())
	if !mat4Near(product, mgl32.Ident4(), 1e-4) {
		t.Errorf("projection * inverse = %v, want identity", product)
	}
}

func TestCameraNamesAreUnique(t *testing.T) {
	a, b := NewCamera(), NewCamera()
	if a.Name() == b.Name() {
		t.Errorf("two cameras share the name %q", a.Name())
	}
	if got := NewCamera(WithName("hmd")).Name(); got != "hmd" {
		t.Errorf("Name() = %q, want hmd", got)
	}
}

func TestSetOrientationNormalizes(t *testing.T) {
	c := NewCamera()
	c.SetOrientation(mgl32.Quat{W: 2})
	if got := c.Orientation().Len(); math.Abs(float64(got)-1) > epsilon {
		t.Errorf("orientation length = %v, want 1", got)
	}
}

func TestProjectionPairFollowsSettings(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()
	c.SetAspect(16.0 / 9.0)
	after := c.ProjectionMatrix()
	if before == after {
		t.Fatal("SetAspect did not recompute the projection matrix")
	}
	product := after.Mul4(c.InverseProjectionMatrix())
	if !mat4Near(product, mgl32.Ident4(), 1e-4) {
		t.Errorf("projection * inverse = %v, want identity", product)
	}
}

func TestProjectionUsesZeroToOneDepth(t *testing.T) {
	const n, f = 0.5, 50
	c := NewCamera(WithFov(float32(math.Pi/2)), WithAspect(2), WithNear(n), WithFar(f))
	proj := c.ProjectionMatrix()

	want := mgl32.Mat4{
		0.5, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, f / (n - f), -1,
		0, 0, n * f / (n - f), 0,
	}
	if !mat4Near(proj, want, epsilon) {
		t.Fatalf("ProjectionMatrix() = %v, want %v", proj, want)
	}

	tests := []struct {
		name  string
		dist  float32
		depth float64
	}{
		{"near plane", n, 0},
		{"far plane", f, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := proj.Mul4x1(mgl32.Vec4{0, 0, -tt.dist, 1})
			if got := float64(clip.Z() / clip.W()); math.Abs(got-tt.depth) > 1e-4 {
				t.Errorf("ndc depth = %v, want %v", got, tt.depth)
			}
		})
	}
}

func TestMouseLookAccumulates(t *testing.T) {
	ml := NewMouseLook(WithSensitivity(100))
	ml.Look(1, 0, 0.5)
	if got := ml.Yaw(); math.Abs(float64(got-50)) > epsilon {
		t.Errorf("Yaw() = %v, want 50", got)
	}
	ml.Look(0, -0.2, 1)
	if got := ml.Pitch(); math.Abs(float64(got-20)) > epsilon {
		t.Errorf("Pitch() = %v, want 20 (pointer up looks up)", got)
	}
}

func TestMouseLookClampsPitch(t *testing.T) {
	ml := NewMouseLook()
	ml.Look(0, 10, 1)
	if got := ml.Pitch(); got != MinPitch {
		t.Errorf("Pitch() = %v, want %v", got, MinPitch)
	}
	ml.SetYawPitch(0, 400)
	if got := ml.Pitch(); got != MaxPitch {
		t.Errorf("Pitch() = %v, want %v", got, MaxPitch)
	}
}

func TestMouseLookClampsSensitivity(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"below range", 1, MinSensitivity},
		{"in range", 200, 200},
		{"above range", 9000, MaxSensitivity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMouseLook(WithSensitivity(tt.in)).Sensitivity(); got != tt.want {
				t.Errorf("Sensitivity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMouseLookOrientationHasNoRoll(t *testing.T) {
	ml := NewMouseLook(WithYaw(90))
	forward := ml.Orientation().Rotate(mgl32.Vec3{0, 0, -1})
	if !near(forward[:], []float32{-1, 0, 0}, epsilon) {
		t.Errorf("yaw 90 forward = %v, want (-1, 0, 0)", forward)
	}

	ml.SetYawPitch(30, 45)
	right := ml.Orientation().Rotate(mgl32.Vec3{1, 0, 0})
	if math.Abs(float64(right.Y())) > epsilon {
		t.Errorf("right vector %v has a vertical component, camera rolled", right)
	}
}

func TestCameraUpdateCopiesControllerOrientation(t *testing.T) {
	ml := NewMouseLook()
	c := NewCamera(WithController(ml))
	ml.SetYawPitch(15, -10)
	if c.Orientation() == ml.Orientation() {
		t.Fatal("camera orientation changed before Update")
	}
	c.Update()
	if got, want := c.Orientation(), ml.Orientation(); !quatNear(got, want, epsilon) {
		t.Errorf("Orientation() = %v, want %v", got, want)
	}
}

func TestCameraUpdateWithoutController(t *testing.T) {
	q := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	c := NewCamera(WithOrientation(q))
	c.Update()
	if got := c.Orientation(); !quatNear(got, q, epsilon) {
		t.Errorf("Orientation() = %v, want %v", got, q)
	}
}
