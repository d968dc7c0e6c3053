package geom

import "testing"

func TestVector3Ops(t *testing.T) {
	const eps = 0.000001

	a := NewVector3(1, 2, 3)
	b := NewVector3(4, 5, 6)
	if *a.Add(b) != (Vector3{5, 7, 9}) {
		t.Error("add: ", a.Add(b))
	}
	if *b.Sub(a) != (Vector3{3, 3, 3}) {
		t.Error("sub: ", b.Sub(a))
	}
	if *a.Scale(2) != (Vector3{2, 4, 6}) {
		t.Error("scale: ", a.Scale(2))
	}
	if a.Dot(b) != 32 {
		t.Error("dot: ", a.Dot(b))
	}
	if *NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)) != (Vector3{0, 0, 1}) {
		t.Error("cross: ", NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)))
	}
	if Abs(NewVector3(3, 4, 0).Len()-5) > eps {
		t.Error("len: ", NewVector3(3, 4, 0).Len())
	}
}

func TestVector3Normalize(t *testing.T) {
	v := NewVector3(0, 3, 0)
	if *v.Normalize() != (Vector3{0, 1, 0}) {
		t.Error("normalize: ", v)
	}

	zero := NewVector3(0, 0, 0)
	if *zero.Normalize() != (Vector3{1, 0, 0}) {
		t.Error("zero vector should fall back to the X axis: ", zero)
	}
}

func TestAbs(t *testing.T) {
	if Abs(-2.5) != 2.5 || Abs(2.5) != 2.5 || Abs(0) != 0 {
		t.Error("abs")
	}
}
