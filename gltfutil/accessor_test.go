package gltfutil

import (
	"testing"

	"github.com/logue/vrm2sl/geom"
	"github.com/qmuntal/gltf"
)

func docWithBuffer(data []byte, view *gltf.BufferView, acr *gltf.Accessor) *gltf.Document {
	view.Buffer = 0
	acr.BufferView = gltf.Index(0)
	return &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: uint32(len(data)), Data: data}},
		BufferViews: []*gltf.BufferView{view},
		Accessors:   []*gltf.Accessor{acr},
	}
}

func TestResolveLayout(t *testing.T) {
	data := make([]byte, 64)
	doc := docWithBuffer(data,
		&gltf.BufferView{ByteLength: 64},
		&gltf.Accessor{ComponentType: gltf.ComponentUshort, Type: gltf.AccessorVec4, Count: 8})

	l, err := ResolveLayout(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Stride != 8 {
		t.Error("default stride should be element size: ", l.Stride)
	}
	if l.Base != 0 || l.Count != 8 {
		t.Error("layout: ", l)
	}

	doc.BufferViews[0].ByteStride = 16
	l, err = ResolveLayout(doc, 0)
	if err == nil {
		t.Fatal("range check should fail for 8 elements with stride 16")
	}
	doc.Accessors[0].Count = 4
	l, err = ResolveLayout(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Stride != 16 {
		t.Error("stride from buffer view: ", l.Stride)
	}

	if _, err := ResolveLayout(doc, 5); err == nil {
		t.Error("accessor index out of range should fail")
	}
	doc.Accessors[0].BufferView = nil
	if _, err := ResolveLayout(doc, 0); err == nil {
		t.Error("accessor without buffer view should fail")
	}
}

func TestJointSlot(t *testing.T) {
	data := make([]byte, 32)
	doc := docWithBuffer(data,
		&gltf.BufferView{ByteLength: 32},
		&gltf.Accessor{ComponentType: gltf.ComponentUshort, Type: gltf.AccessorVec4, Count: 4})
	l, err := ResolveLayout(doc, 0)
	if err != nil {
		t.Fatal(err)
	}

	for v := 0; v < 4; v++ {
		for lane := 0; lane < 4; lane++ {
			if !l.SetJointSlot(v, lane, v*4+lane+300) {
				t.Fatal("SetJointSlot")
			}
		}
	}
	for v := 0; v < 4; v++ {
		for lane := 0; lane < 4; lane++ {
			got, ok := l.JointSlot(v, lane)
			if !ok || got != v*4+lane+300 {
				t.Error("slot: ", v, lane, got)
			}
		}
	}

	// u8 storage
	doc8 := docWithBuffer(make([]byte, 16),
		&gltf.BufferView{ByteLength: 16},
		&gltf.Accessor{ComponentType: gltf.ComponentUbyte, Type: gltf.AccessorVec4, Count: 4})
	l8, err := ResolveLayout(doc8, 0)
	if err != nil {
		t.Fatal(err)
	}
	l8.SetJointSlot(3, 2, 250)
	if got, ok := l8.JointSlot(3, 2); !ok || got != 250 {
		t.Error("u8 slot: ", got)
	}

	// float storage is not a joint accessor
	docf := docWithBuffer(make([]byte, 64),
		&gltf.BufferView{ByteLength: 64},
		&gltf.Accessor{ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec4, Count: 4})
	lf, _ := ResolveLayout(docf, 0)
	if _, ok := lf.JointSlot(0, 0); ok {
		t.Error("float accessor should not read joint slots")
	}
	if _, ok := lf.Float(0, 0); !ok {
		t.Error("float accessor should read float lanes")
	}
	if _, ok := l.Float(0, 0); ok {
		t.Error("u16 accessor should not read float lanes")
	}
}

func TestFloat(t *testing.T) {
	data := make([]byte, 64)
	doc := docWithBuffer(data,
		&gltf.BufferView{ByteLength: 64},
		&gltf.Accessor{ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec4, Count: 4})
	l, err := ResolveLayout(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]float32{0.5, 0.25, 0.125, 0.125}
	for lane, w := range want {
		l.SetFloat(2, lane, w)
	}
	for lane, w := range want {
		got, ok := l.Float(2, lane)
		if !ok || got != w {
			t.Error("lane: ", lane, got)
		}
	}
}

func TestMat4(t *testing.T) {
	data := make([]byte, 128)
	doc := docWithBuffer(data,
		&gltf.BufferView{ByteLength: 128},
		&gltf.Accessor{ComponentType: gltf.ComponentFloat, Type: gltf.AccessorMat4, Count: 2})
	l, err := ResolveLayout(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Stride != 64 {
		t.Fatal("mat4 stride: ", l.Stride)
	}

	mat := geom.NewTranslateMatrix4(1, 2, 3)
	l.SetMat4(1, mat)
	got := l.Mat4(1)
	if *got != *mat {
		t.Error("mat4 round trip: ", got)
	}
	if *l.Mat4(0) != (geom.Matrix4{}) {
		t.Error("element 0 should be untouched")
	}

	// moving raw bytes moves the exact element
	copy(l.Mat4Bytes(0), l.Mat4Bytes(1))
	if *l.Mat4(0) != *mat {
		t.Error("byte copy should move the matrix")
	}
}
