package gltfutil

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/logue/vrm2sl/geom"
	"github.com/qmuntal/gltf"
)

// AccessorLayout describes how an accessor's elements are packed in the
// binary buffer. Base is the absolute byte offset into the buffer data
// (bufferView offset + accessor offset). Stride falls back to the tightly
// packed element size when the buffer view has none.
type AccessorLayout struct {
	Base          uint32
	Stride        uint32
	Count         uint32
	ComponentType gltf.ComponentType
	Type          gltf.AccessorType

	data []byte
}

func componentSize(c gltf.ComponentType) uint32 {
	switch c {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentCount(t gltf.AccessorType) uint32 {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// ResolveLayout resolves an accessor index to its buffer layout. The byte
// range is validated here so element accessors can index without further
// bounds checks.
func ResolveLayout(doc *gltf.Document, accessor uint32) (*AccessorLayout, error) {
	if int(accessor) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	acr := doc.Accessors[accessor]
	if acr.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no buffer view", accessor)
	}
	if int(*acr.BufferView) >= len(doc.BufferViews) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", accessor, *acr.BufferView)
	}
	view := doc.BufferViews[*acr.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("accessor %d: buffer %d out of range", accessor, view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data

	elem := componentSize(acr.ComponentType) * componentCount(acr.Type)
	if elem == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported type %v/%v", accessor, acr.ComponentType, acr.Type)
	}
	stride := view.ByteStride
	if stride == 0 {
		stride = elem
	}
	l := &AccessorLayout{
		Base:          view.ByteOffset + acr.ByteOffset,
		Stride:        stride,
		Count:         acr.Count,
		ComponentType: acr.ComponentType,
		Type:          acr.Type,
		data:          data,
	}
	if acr.Count > 0 {
		end := uint64(l.Base) + uint64(acr.Count-1)*uint64(stride) + uint64(elem)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("accessor %d: %d bytes beyond buffer end", accessor, end-uint64(len(data)))
		}
	}
	return l, nil
}

func (l *AccessorLayout) offset(i, lane int, size uint32) uint32 {
	return l.Base + uint32(i)*l.Stride + uint32(lane)*size
}

// JointSlot reads the joint slot of one weight lane. ok is false when the
// component type is not an unsigned 8/16-bit integer.
func (l *AccessorLayout) JointSlot(vertex, lane int) (int, bool) {
	switch l.ComponentType {
	case gltf.ComponentUbyte:
		return int(l.data[l.offset(vertex, lane, 1)]), true
	case gltf.ComponentUshort:
		o := l.offset(vertex, lane, 2)
		return int(binary.LittleEndian.Uint16(l.data[o : o+2])), true
	}
	return 0, false
}

func (l *AccessorLayout) SetJointSlot(vertex, lane, slot int) bool {
	switch l.ComponentType {
	case gltf.ComponentUbyte:
		l.data[l.offset(vertex, lane, 1)] = byte(slot)
		return true
	case gltf.ComponentUshort:
		o := l.offset(vertex, lane, 2)
		binary.LittleEndian.PutUint16(l.data[o:o+2], uint16(slot))
		return true
	}
	return false
}

// Float reads one float lane of an element, such as a skin weight or a
// position component. ok is false for non-float storage.
func (l *AccessorLayout) Float(i, lane int) (float32, bool) {
	if l.ComponentType != gltf.ComponentFloat {
		return 0, false
	}
	o := l.offset(i, lane, 4)
	return math.Float32frombits(binary.LittleEndian.Uint32(l.data[o : o+4])), true
}

func (l *AccessorLayout) SetFloat(i, lane int, v float32) bool {
	if l.ComponentType != gltf.ComponentFloat {
		return false
	}
	o := l.offset(i, lane, 4)
	binary.LittleEndian.PutUint32(l.data[o:o+4], math.Float32bits(v))
	return true
}

// Mat4 reads the matrix at the given element index (column-major floats).
func (l *AccessorLayout) Mat4(i int) *geom.Matrix4 {
	o := l.Base + uint32(i)*l.Stride
	mat := &geom.Matrix4{}
	for k := 0; k < 16; k++ {
		mat[k] = math.Float32frombits(binary.LittleEndian.Uint32(l.data[o+uint32(k)*4 : o+uint32(k)*4+4]))
	}
	return mat
}

func (l *AccessorLayout) SetMat4(i int, mat *geom.Matrix4) {
	o := l.Base + uint32(i)*l.Stride
	for k := 0; k < 16; k++ {
		binary.LittleEndian.PutUint32(l.data[o+uint32(k)*4:o+uint32(k)*4+4], math.Float32bits(mat[k]))
	}
}

// Mat4Bytes returns the raw bytes of one matrix element. The slice aliases
// the buffer, so copies between element indexes move the exact bytes.
func (l *AccessorLayout) Mat4Bytes(i int) []byte {
	o := l.Base + uint32(i)*l.Stride
	return l.data[o : o+64]
}
