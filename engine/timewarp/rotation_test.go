package timewarp

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

func quatComponents(q mgl32.Quat) []float32 {
	return []float32{q.W, q.V[0], q.V[1], q.V[2]}
}

func axisAngle(deg float32, x, y, z float32) mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{x, y, z}.Normalize())
}

func TestCorrectionMatrixMatchesComposedInverse(t *testing.T) {
	tests := []struct {
		name   string
		render mgl32.Quat
		other  mgl32.Quat
	}{
		{"identity to yaw", mgl32.QuatIdent(), axisAngle(10, 0, 1, 0)},
		{"yaw to identity", axisAngle(-7, 0, 1, 0), mgl32.QuatIdent()},
		{"pitch to roll", axisAngle(30, 1, 0, 0), axisAngle(15, 0, 0, 1)},
		{"oblique", axisAngle(45, 1, 1, 0), axisAngle(50, 1, 1, 1)},
		{"half turn", axisAngle(179, 0, 1, 0), axisAngle(-179, 0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectionMatrix(tt.render, tt.other)
			want := tt.render.Mul(tt.other.Inverse()).Mat4()
			if !near(got[:], want[:], epsilon) {
				t.Errorf("CorrectionMatrix() = %v, want %v", got, want)
			}
		})
	}
}

func TestDeltaRotationComposition(t *testing.T) {
	render := axisAngle(20, 0, 1, 0)
	display := axisAngle(35, 0, 1, 0)
	delta := DeltaRotation(render, display)
	if got := delta.Mul(render); !near(quatComponents(got), quatComponents(display), epsilon) {
		t.Errorf("delta * render = %v, want %v", got, display)
	}
	want := axisAngle(15, 0, 1, 0)
	if !near(quatComponents(delta), quatComponents(want), epsilon) {
		t.Errorf("DeltaRotation() = %v, want %v", delta, want)
	}
}

func TestCorrectionMatrixIdentityForEqualSamples(t *testing.T) {
	for _, q := range []mgl32.Quat{mgl32.QuatIdent(), axisAngle(33, 1, 2, 3)} {
		if got := CorrectionMatrix(q, q); got != mgl32.Ident4() {
			t.Errorf("CorrectionMatrix(%v, %v) = %v, want exact identity", q, q, got)
		}
	}
	// The unshortcut path is also exact for identity inputs.
	id := mgl32.QuatIdent()
	if got := DeltaRotation(id, id).Inverse().Mat4(); got != mgl32.Ident4() {
		t.Errorf("identity round trip = %v, want exact identity", got)
	}
}

func TestCorrectionMatrixIsPureRotation(t *testing.T) {
	m := CorrectionMatrix(axisAngle(12, 0, 1, 0), axisAngle(40, 1, 0.5, 0))
	if m[12] != 0 || m[13] != 0 || m[14] != 0 || m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		t.Errorf("matrix has translation or projective terms: %v", m)
	}
	if det := m.Mat3().Det(); math.Abs(float64(det)-1) > 1e-4 {
		t.Errorf("det = %v, want 1", det)
	}
	for i := range 3 {
		if l := m.Col(i).Vec3().Len(); math.Abs(float64(l)-1) > 1e-4 {
			t.Errorf("column %d length = %v, want 1", i, l)
		}
	}
}
