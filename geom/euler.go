package geom

import "math"

// RotationOrder names the axis application order of an Euler rotation.
type RotationOrder int

const (
	RotationOrderXYZ RotationOrder = iota
	RotationOrderYXZ
	RotationOrderZXY
	RotationOrderZYX
)

// EulerAngles holds per-axis rotations in radians.
type EulerAngles struct {
	Vector3
	Order RotationOrder
}

func NewEuler(x, y, z float32, order RotationOrder) *EulerAngles {
	return &EulerAngles{Vector3: Vector3{x, y, z}, Order: order}
}

func NewEulerFromQuaternion(q *Quaternion, order RotationOrder) *EulerAngles {
	return NewEulerFromMatrix4(NewRotationMatrix4FromQuaternion(q), order)
}

// NewEulerFromMatrix4 extracts Euler angles from a pure rotation matrix.
// Near gimbal lock the third axis angle collapses to zero.
func NewEulerFromMatrix4(mat *Matrix4, order RotationOrder) *EulerAngles {
	const lock = 1 - 1e-8
	m11, m12, m13 := float64(mat[0]), float64(mat[4]), float64(mat[8])
	m21, m22, m23 := float64(mat[1]), float64(mat[5]), float64(mat[9])
	m31, m32, m33 := float64(mat[2]), float64(mat[6]), float64(mat[10])

	e := &EulerAngles{Order: order}
	switch order {
	case RotationOrderXYZ:
		e.Y = Element(math.Asin(clamp(m13, -1, 1)))
		if math.Abs(m13) < lock {
			e.X = Element(math.Atan2(-m23, m33))
			e.Z = Element(math.Atan2(-m12, m11))
		} else {
			e.X = Element(math.Atan2(m32, m22))
		}
	case RotationOrderYXZ:
		e.X = Element(math.Asin(-clamp(m23, -1, 1)))
		if math.Abs(m23) < lock {
			e.Y = Element(math.Atan2(m13, m33))
			e.Z = Element(math.Atan2(m21, m22))
		} else {
			e.Y = Element(math.Atan2(-m31, m11))
		}
	case RotationOrderZXY:
		e.X = Element(math.Asin(clamp(m32, -1, 1)))
		if math.Abs(m32) < lock {
			e.Y = Element(math.Atan2(-m31, m33))
			e.Z = Element(math.Atan2(-m12, m22))
		} else {
			e.Z = Element(math.Atan2(m21, m11))
		}
	case RotationOrderZYX:
		e.Y = Element(math.Asin(-clamp(m31, -1, 1)))
		if math.Abs(m31) < lock {
			e.X = Element(math.Atan2(m32, m33))
			e.Z = Element(math.Atan2(m21, m11))
		} else {
			e.Z = Element(math.Atan2(-m12, m22))
		}
	}
	return e
}

// ToQuaternion converts the angles to a unit quaternion.
func (e *EulerAngles) ToQuaternion() *Quaternion {
	cx, sx := math.Cos(float64(e.X)/2), math.Sin(float64(e.X)/2)
	cy, sy := math.Cos(float64(e.Y)/2), math.Sin(float64(e.Y)/2)
	cz, sz := math.Cos(float64(e.Z)/2), math.Sin(float64(e.Z)/2)

	switch e.Order {
	case RotationOrderXYZ:
		return NewQuaternion(
			float32(sx*cy*cz+cx*sy*sz),
			float32(cx*sy*cz-sx*cy*sz),
			float32(cx*cy*sz+sx*sy*cz),
			float32(cx*cy*cz-sx*sy*sz))
	case RotationOrderYXZ:
		return NewQuaternion(
			float32(sx*cy*cz+cx*sy*sz),
			float32(cx*sy*cz-sx*cy*sz),
			float32(cx*cy*sz-sx*sy*cz),
			float32(cx*cy*cz+sx*sy*sz))
	case RotationOrderZXY:
		return NewQuaternion(
			float32(sx*cy*cz-cx*sy*sz),
			float32(cx*sy*cz+sx*cy*sz),
			float32(cx*cy*sz+sx*sy*cz),
			float32(cx*cy*cz-sx*sy*sz))
	case RotationOrderZYX:
		return NewQuaternion(
			float32(sx*cy*cz-cx*sy*sz),
			float32(cx*sy*cz+sx*cy*sz),
			float32(cx*cy*sz-sx*sy*cz),
			float32(cx*cy*cz+sx*sy*sz))
	}
	return NewQuaternion(0, 0, 0, 1)
}
