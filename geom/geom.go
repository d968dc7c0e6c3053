// Package geom is the linear algebra kernel for skeleton and bind pose
// math: vectors, quaternions, column-major 4x4 matrices and Euler angle
// conversions.
package geom

// Element is the scalar type shared with glTF vertex and matrix buffers.
type Element = float32

func Abs(v Element) Element {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
