package geom

import (
	"math"
	"testing"
)

func deg(d float64) float32 {
	return float32(d * math.Pi / 180)
}

func TestEulerQuaternionRoundTrip(t *testing.T) {
	const eps = 0.00001

	cases := []struct {
		order   RotationOrder
		x, y, z float64
	}{
		{RotationOrderXYZ, 10, 20, 30},
		{RotationOrderXYZ, -40, 55, 5},
		{RotationOrderYXZ, 10, 20, 30},
		{RotationOrderYXZ, 60, -15, 45},
		{RotationOrderZXY, 10, 20, 30},
		{RotationOrderZXY, -25, 35, -50},
		{RotationOrderZYX, 10, 20, 30},
		{RotationOrderZYX, 5, -60, 120},
	}
	for i, c := range cases {
		e1 := NewEuler(deg(c.x), deg(c.y), deg(c.z), c.order)
		q := e1.ToQuaternion()
		if Abs(q.Len()-1) > eps {
			t.Error("unit quaternion: ", i, q.Len())
		}
		e2 := NewEulerFromQuaternion(q, c.order)
		if e1.Vector3.Sub(&e2.Vector3).Len() > eps {
			t.Error("round trip: ", i, e1.Vector3, e2.Vector3)
		}
	}
}

func TestEulerFromMatrixGimbalLock(t *testing.T) {
	const eps = 0.00001

	// exact +90 degree turn around Y; columns are the rotated basis axes
	ry := &Matrix4{
		0, 0, -1, 0,
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
	}
	e := NewEulerFromMatrix4(ry, RotationOrderXYZ)
	if Abs(e.Y-math.Pi/2) > eps || Abs(e.X) > eps || Abs(e.Z) > eps {
		t.Error("gimbal lock: ", e.Vector3)
	}
}

func TestEulerIdentity(t *testing.T) {
	e := NewEulerFromMatrix4(NewMatrix4(), RotationOrderZXY)
	if e.Vector3 != (Vector3{}) {
		t.Error("identity matrix: ", e.Vector3)
	}

	q := NewEuler(0, 0, 0, RotationOrderYXZ).ToQuaternion()
	if *q != (Vector4{W: 1}) {
		t.Error("identity quaternion: ", q)
	}
}
