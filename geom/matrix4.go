package geom

// Matrix4 is a 4x4 transform stored column-major, matching the glTF
// matrix layout. ApplyTo treats vectors as column vectors, so the
// translation lives in elements 12..14.
type Matrix4 [16]Element

func NewMatrix4() *Matrix4 {
	return &Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func NewMatrix4FromSlice(a []Element) *Matrix4 {
	mat := &Matrix4{}
	copy(mat[:], a)
	return mat
}

func NewTranslateMatrix4(x, y, z Element) *Matrix4 {
	return &Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func NewScaleMatrix4(x, y, z Element) *Matrix4 {
	return &Matrix4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// NewRotationMatrix4FromQuaternion builds the rotation matrix of a unit
// quaternion. The columns are the rotated basis axes, so this agrees
// with Quaternion.ApplyTo.
func NewRotationMatrix4FromQuaternion(q *Quaternion) *Matrix4 {
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2
	return &Matrix4{
		1 - yy - zz, xy + wz, xz - wy, 0,
		xy - wz, 1 - xx - zz, yz + wx, 0,
		xz + wy, yz - wx, 1 - xx - yy, 0,
		0, 0, 0, 1,
	}
}

func NewTRSMatrix4(t *Vector3, r *Quaternion, s *Vector3) *Matrix4 {
	return NewTranslateMatrix4(t.X, t.Y, t.Z).
		Mul(NewRotationMatrix4FromQuaternion(r)).
		Mul(NewScaleMatrix4(s.X, s.Y, s.Z))
}

// Mul returns b*a, so the receiver is the outer transform.
func (b *Matrix4) Mul(a *Matrix4) *Matrix4 {
	r := &Matrix4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum Element
			for k := 0; k < 4; k++ {
				sum += b[k*4+row] * a[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// ApplyTo transforms the point v, with an implicit w of 1.
func (m *Matrix4) ApplyTo(v *Vector3) *Vector3 {
	return &Vector3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

func (m *Matrix4) Translation() *Vector3 {
	return &Vector3{X: m[12], Y: m[13], Z: m[14]}
}

// minor is the 3x3 determinant left after deleting row r and column c.
func (m *Matrix4) minor(r, c int) Element {
	var s [9]Element
	i := 0
	for col := 0; col < 4; col++ {
		if col == c {
			continue
		}
		for row := 0; row < 4; row++ {
			if row == r {
				continue
			}
			s[i] = m[col*4+row]
			i++
		}
	}
	return s[0]*(s[4]*s[8]-s[5]*s[7]) -
		s[3]*(s[1]*s[8]-s[2]*s[7]) +
		s[6]*(s[1]*s[5]-s[2]*s[4])
}

func (m *Matrix4) Det() Element {
	var det Element
	sign := Element(1)
	for row := 0; row < 4; row++ {
		det += sign * m[row] * m.minor(row, 0)
		sign = -sign
	}
	return det
}

// Inverse returns the adjugate divided by the determinant. A singular
// matrix yields the zero matrix.
func (m *Matrix4) Inverse() *Matrix4 {
	r := &Matrix4{}
	det := m.Det()
	if det == 0 {
		return r
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			cof := m.minor(col, row) / det
			if (row+col)%2 == 1 {
				cof = -cof
			}
			r[col*4+row] = cof
		}
	}
	return r
}

// Decompose splits the matrix into translation, rotation and scale.
// A left-handed basis is corrected by negating the X axis and its scale.
func (m *Matrix4) Decompose() (*Vector3, *Quaternion, *Vector3) {
	pos := &Vector3{X: m[12], Y: m[13], Z: m[14]}

	bx := &Vector3{X: m[0], Y: m[1], Z: m[2]}
	by := &Vector3{X: m[4], Y: m[5], Z: m[6]}
	bz := &Vector3{X: m[8], Y: m[9], Z: m[10]}
	scale := &Vector3{X: bx.Len(), Y: by.Len(), Z: bz.Len()}

	bx = bx.Normalize()
	by = by.Normalize()
	bz = bz.Normalize()
	if bx.Cross(by).Dot(bz) < 0 {
		bx = bx.Scale(-1)
		scale.X = -scale.X
	}

	rot := NewQuaternionFromMatrix4(&Matrix4{
		bx.X, bx.Y, bx.Z, 0,
		by.X, by.Y, by.Z, 0,
		bz.X, bz.Y, bz.Z, 0,
		0, 0, 0, 1,
	})
	return pos, rot.Normalize(), scale
}
