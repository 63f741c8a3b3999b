package postprocess

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformCellStartsInvalidIdentity(t *testing.T) {
	c := NewTransformCell()
	got := c.Load()
	if got.Valid {
		t.Error("new cell is valid")
	}
	if got.Matrix != mgl32.Ident4() {
		t.Errorf("Matrix = %v, want identity", got.Matrix)
	}
}

func TestTransformCellStoreAndReset(t *testing.T) {
	c := NewTransformCell()
	m := mgl32.QuatRotate(0.1, mgl32.Vec3{0, 0, 1}).Mat4()
	p := mgl32.Perspective(1, 1, 0.1, 10)
	c.Store(m, p, p.Inv())

	got := c.Load()
	if !got.Valid || got.Matrix != m || got.Projection != p {
		t.Errorf("Load() = %+v, want stored values", got)
	}
	if c.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", c.Writes())
	}

	c.Reset()
	got = c.Load()
	if got.Valid {
		t.Error("cell still valid after Reset")
	}
	if c.Matrix() != mgl32.Ident4() {
		t.Errorf("Matrix() after Reset = %v, want identity", c.Matrix())
	}
	if c.Writes() != 1 {
		t.Errorf("Writes() after Reset = %d, want 1", c.Writes())
	}
}

func TestGPUTimeWarpUniformLayout(t *testing.T) {
	var u GPUTimeWarpUniform
	if u.Size() != 192 {
		t.Fatalf("Size() = %d, want 192", u.Size())
	}
	for i, name := range ParamNames {
		off, ok := u.Offset(name)
		if !ok || off != uint64(i*64) {
			t.Errorf("Offset(%s) = %d, %v; want %d", name, off, ok, i*64)
		}
	}
	if _, ok := u.Offset("_Unknown"); ok {
		t.Error("Offset of unknown parameter reported ok")
	}
	if u.Set("_Unknown", mgl32.Ident4()) {
		t.Error("Set of unknown parameter reported ok")
	}

	u.Set(ParamProjection, mgl32.Ident4())
	buf := u.Marshal()
	if len(buf) != 192 {
		t.Fatalf("len(Marshal()) = %d, want 192", len(buf))
	}
	// Projection's first diagonal element sits at offset 64.
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])); got != 1 {
		t.Errorf("projection[0] = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 0 {
		t.Errorf("inverse matrix[0] = %v, want 0", got)
	}
}
