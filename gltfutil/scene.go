package gltfutil

import (
	"github.com/logue/vrm2sl/geom"
	"github.com/qmuntal/gltf"
)

// ParentMap flattens the children lists into a child→parent index map.
// Nodes nobody references are roots (-1). Input is assumed to be a forest.
func ParentMap(doc *gltf.Document) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, c := range node.Children {
			if int(c) < len(parents) {
				parents[c] = i
			}
		}
	}
	return parents
}

// LocalMatrix composes the node's local transform. A non-identity matrix
// field wins over TRS; glTF matrices are column-major like geom.Matrix4.
func LocalMatrix(node *gltf.Node) *geom.Matrix4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return geom.NewMatrix4FromSlice(m[:])
	}
	r := node.Rotation
	if r == ([4]float32{}) {
		r = [4]float32{0, 0, 0, 1}
	}
	s := node.Scale
	if s == ([3]float32{}) {
		s = [3]float32{1, 1, 1}
	}
	return geom.NewTRSMatrix4(
		geom.NewVector3FromArray(node.Translation),
		geom.NewQuaternionFromArray(r),
		geom.NewVector3FromArray(s))
}

// SetLocalTRS replaces the node transform with the decomposition of mat
// and unsets the matrix field.
func SetLocalTRS(node *gltf.Node, mat *geom.Matrix4) {
	pos, rot, scale := mat.Decompose()
	node.Matrix = gltf.DefaultMatrix
	node.Translation = [3]float32{pos.X, pos.Y, pos.Z}
	node.Rotation = [4]float32{rot.X, rot.Y, rot.Z, rot.W}
	node.Scale = [3]float32{scale.X, scale.Y, scale.Z}
}

// WorldMatrices resolves every node's world matrix through the parent
// chain. Resolution is memoized by node index; unparented nodes are roots.
func WorldMatrices(doc *gltf.Document) []*geom.Matrix4 {
	parents := ParentMap(doc)
	worlds := make([]*geom.Matrix4, len(doc.Nodes))
	var resolve func(i int) *geom.Matrix4
	resolve = func(i int) *geom.Matrix4 {
		if worlds[i] != nil {
			return worlds[i]
		}
		local := LocalMatrix(doc.Nodes[i])
		if p := parents[i]; p >= 0 {
			worlds[i] = resolve(p).Mul(local)
		} else {
			worlds[i] = local
		}
		return worlds[i]
	}
	for i := range doc.Nodes {
		resolve(i)
	}
	return worlds
}
