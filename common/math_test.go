package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatAngle(t *testing.T) {
	yaw := func(deg float32) mgl32.Quat {
		return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 1, 0})
	}

	tests := []struct {
		name string
		a, b mgl32.Quat
		want float64
	}{
		{name: "identical", a: yaw(30), b: yaw(30), want: 0},
		{name: "small yaw", a: yaw(10), b: yaw(10.45), want: 0.45},
		{name: "quarter turn", a: mgl32.QuatIdent(), b: yaw(90), want: 90},
		{name: "negated quaternion is the same orientation", a: yaw(40), b: yaw(40).Scale(-1), want: 0},
		{name: "pitch", a: mgl32.QuatIdent(), b: mgl32.QuatRotate(mgl32.DegToRad(5), mgl32.Vec3{1, 0, 0}), want: 5},
		{name: "half turn", a: yaw(0), b: yaw(180), want: 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatAngle(tt.a, tt.b) * 180 / math.Pi
			if math.Abs(got-tt.want) > 1e-3 {
				t.Fatalf("QuatAngle() = %f deg, want %f", got, tt.want)
			}
		})
	}
}

func TestStructToBytes(t *testing.T) {
	m := mgl32.Ident4()
	b := StructToBytes(&m)
	if len(b) != 64 {
		t.Fatalf("len = %d, want 64", len(b))
	}
	// 1.0f little-endian is 00 00 80 3f.
	if b[0] != 0 || b[1] != 0 || b[2] != 0x80 || b[3] != 0x3f {
		t.Fatalf("first element bytes = % x", b[:4])
	}
}

func TestExtent(t *testing.T) {
	tests := []struct {
		e      Extent
		aspect float32
		empty  bool
	}{
		{e: Extent{Width: 1920, Height: 1080}, aspect: 1920.0 / 1080.0},
		{e: Extent{Width: 10, Height: 0}, aspect: 1, empty: true},
		{e: Extent{Width: -1, Height: 5}, aspect: -0.2, empty: true},
	}
	for _, tt := range tests {
		if got := tt.e.Aspect(); got != tt.aspect {
			t.Errorf("%+v Aspect() = %v, want %v", tt.e, got, tt.aspect)
		}
		if got := tt.e.Empty(); got != tt.empty {
			t.Errorf("%+v Empty() = %v, want %v", tt.e, got, tt.empty)
		}
	}
}
