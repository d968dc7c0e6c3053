package geom

import "math"

type Vector4 struct {
	X Element
	Y Element
	Z Element
	W Element
}

// Quaternion rotations follow the Hamilton convention with W as the
// scalar part.
type Quaternion = Vector4

func NewQuaternion(x, y, z, w float32) *Vector4 {
	return &Vector4{X: x, Y: y, Z: z, W: w}
}

func NewQuaternionFromArray(arr [4]Element) *Vector4 {
	return &Vector4{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}
}

// NewQuaternionFromMatrix4 extracts the rotation of mat, which must be a
// pure rotation matrix (no scale, no shear). Shepperd's method: the
// largest of w, x, y, z is computed from the diagonal first and the rest
// from the off-diagonal differences.
func NewQuaternionFromMatrix4(mat *Matrix4) *Quaternion {
	m11, m12, m13 := float64(mat[0]), float64(mat[4]), float64(mat[8])
	m21, m22, m23 := float64(mat[1]), float64(mat[5]), float64(mat[9])
	m31, m32, m33 := float64(mat[2]), float64(mat[6]), float64(mat[10])

	q := &Quaternion{}
	switch {
	case m11+m22+m33 > 0:
		s := 2 * math.Sqrt(m11+m22+m33+1)
		q.W = Element(s / 4)
		q.X = Element((m32 - m23) / s)
		q.Y = Element((m13 - m31) / s)
		q.Z = Element((m21 - m12) / s)
	case m11 > m22 && m11 > m33:
		s := 2 * math.Sqrt(1 + m11 - m22 - m33)
		q.W = Element((m32 - m23) / s)
		q.X = Element(s / 4)
		q.Y = Element((m12 + m21) / s)
		q.Z = Element((m13 + m31) / s)
	case m22 > m33:
		s := 2 * math.Sqrt(1 + m22 - m11 - m33)
		q.W = Element((m13 - m31) / s)
		q.X = Element((m12 + m21) / s)
		q.Y = Element(s / 4)
		q.Z = Element((m23 + m32) / s)
	default:
		s := 2 * math.Sqrt(1 + m33 - m11 - m22)
		q.W = Element((m21 - m12) / s)
		q.X = Element((m13 + m31) / s)
		q.Y = Element((m23 + m32) / s)
		q.Z = Element(s / 4)
	}
	return q
}

func (v *Vector4) Sub(v2 *Vector4) *Vector4 {
	return &Vector4{X: v.X - v2.X, Y: v.Y - v2.Y, Z: v.Z - v2.Z, W: v.W - v2.W}
}

func (v *Vector4) Len() Element {
	return Element(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)))
}

// Normalize scales v to unit length in place. The zero value becomes the
// identity quaternion.
func (v *Vector4) Normalize() *Vector4 {
	l := v.Len()
	if l == 0 {
		v.W = 1
		return v
	}
	v.X /= l
	v.Y /= l
	v.Z /= l
	v.W /= l
	return v
}

// Inverse returns the conjugate, which inverts a unit quaternion.
func (v *Vector4) Inverse() *Vector4 {
	return &Vector4{X: -v.X, Y: -v.Y, Z: -v.Z, W: v.W}
}

// Mul returns the Hamilton product a*b. As a rotation it applies b
// first, then a.
func (a *Vector4) Mul(b *Vector4) *Vector4 {
	return &Vector4{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

// ApplyTo rotates v, expanding q*v*q^-1 into two cross products.
func (q *Quaternion) ApplyTo(v *Vector3) *Vector3 {
	u := &Vector3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Add(v.Scale(q.W))
	return v.Add(u.Cross(t).Scale(2))
}
