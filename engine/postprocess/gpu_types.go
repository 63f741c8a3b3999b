package postprocess

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUTimeWarpUniform is the GPU-aligned representation of the compensation shader's
// three matrix parameters, laid out back to back as in the WGSL source.
// Size: 192 bytes (three mat4x4<f32>).
type GPUTimeWarpUniform struct {
	InverseMatrix     mgl32.Mat4 // offset   0: _ATW_InverseMatrix
	Projection        mgl32.Mat4 // offset  64: _Custom_NonJitteredProjection
	InverseProjection mgl32.Mat4 // offset 128: _Custom_NonJitteredInverseProjection
}

// Size returns the size of the GPUTimeWarpUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUTimeWarpUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Set stores a parameter by its shader name. Unknown names are ignored.
//
// Parameters:
//   - name: one of the ParamNames
//   - m: the matrix value
//
// Returns:
//   - bool: true if name matched a field
func (g *GPUTimeWarpUniform) Set(name string, m mgl32.Mat4) bool {
	switch name {
	case ParamInverseMatrix:
		g.InverseMatrix = m
	case ParamProjection:
		g.Projection = m
	case ParamInverseProjection:
		g.InverseProjection = m
	default:
		return false
	}
	return true
}

// Offset returns the byte offset of a parameter within the uniform block.
//
// Parameters:
//   - name: one of the ParamNames
//
// Returns:
//   - uint64: the byte offset
//   - bool: false if name is not a known parameter
func (g *GPUTimeWarpUniform) Offset(name string) (uint64, bool) {
	for i, n := range ParamNames {
		if n == name {
			return uint64(i) * 64, true
		}
	}
	return 0, false
}

// Marshal serializes the uniform into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUTimeWarpUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, m := range [3]mgl32.Mat4{g.InverseMatrix, g.Projection, g.InverseProjection} {
		for j := range 16 {
			binary.LittleEndian.PutUint32(buf[i*64+j*4:], math.Float32bits(m[j]))
		}
	}
	return buf
}
