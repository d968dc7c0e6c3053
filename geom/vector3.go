package geom

import "math"

type Vector3 struct {
	X Element
	Y Element
	Z Element
}

func NewVector3(x, y, z float32) *Vector3 {
	return &Vector3{X: x, Y: y, Z: z}
}

func NewVector3FromArray(arr [3]Element) *Vector3 {
	return &Vector3{X: arr[0], Y: arr[1], Z: arr[2]}
}

func (v *Vector3) Add(v2 *Vector3) *Vector3 {
	return NewVector3(v.X+v2.X, v.Y+v2.Y, v.Z+v2.Z)
}

func (v *Vector3) Sub(v2 *Vector3) *Vector3 {
	return NewVector3(v.X-v2.X, v.Y-v2.Y, v.Z-v2.Z)
}

func (v *Vector3) Scale(s Element) *Vector3 {
	return NewVector3(v.X*s, v.Y*s, v.Z*s)
}

func (v *Vector3) Dot(v2 *Vector3) Element {
	return v.X*v2.X + v.Y*v2.Y + v.Z*v2.Z
}

func (v *Vector3) Cross(v2 *Vector3) *Vector3 {
	return NewVector3(
		v.Y*v2.Z-v.Z*v2.Y,
		v.Z*v2.X-v.X*v2.Z,
		v.X*v2.Y-v.Y*v2.X)
}

func (v *Vector3) Len() Element {
	return Element(math.Sqrt(float64(v.Dot(v))))
}

// Normalize scales v to unit length in place. The zero vector becomes
// the X axis.
func (v *Vector3) Normalize() *Vector3 {
	l := v.Len()
	if l == 0 {
		v.X = 1
		return v
	}
	v.X /= l
	v.Y /= l
	v.Z /= l
	return v
}
