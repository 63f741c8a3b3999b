package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// QuatAngle returns the smallest rotation angle in radians that takes orientation a to orientation b.
// Both quaternions are expected to be unit length; q and -q describe the same orientation and yield 0.
// The angle is taken from the relative rotation's axis length, which stays accurate for small angles.
//
// Parameters:
//   - a: the starting orientation
//   - b: the target orientation
//
// Returns:
//   - float64: the angle in radians, in [0, pi]
func QuatAngle(a, b mgl32.Quat) float64 {
	d := a.Conjugate().Mul(b)
	s := math.Sqrt(float64(d.V[0])*float64(d.V[0]) + float64(d.V[1])*float64(d.V[1]) + float64(d.V[2])*float64(d.V[2]))
	return 2 * math.Atan2(s, math.Abs(float64(d.W)))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
