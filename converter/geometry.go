package converter

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/gltfutil"
)

// slVertexLimit is the per-primitive vertex ceiling for SL mesh uploads.
const slVertexLimit = 65535

// meshStatistics sums vertex and triangle counts over all mesh primitives and
// flags any primitive above the SL upload vertex limit.
func meshStatistics(doc *gltf.Document) (vertices, polygons int, issues []Issue) {
	for _, mesh := range doc.Meshes {
		name := mesh.Name
		if name == "" {
			name = "unnamed_mesh"
		}
		for i, prim := range mesh.Primitives {
			var count int
			if a, ok := prim.Attributes["POSITION"]; ok && int(a) < len(doc.Accessors) {
				count = int(doc.Accessors[a].Count)
			}
			vertices += count
			if count > slVertexLimit {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     CodeVertexLimitExceeded,
					Message: fmt.Sprintf("Vertex limit exceeded (mesh: %s, primitive: %d, current: %d / limit: %d)",
						name, i, count, slVertexLimit),
				})
			}
			var indexCount int
			if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
				indexCount = int(doc.Accessors[*prim.Indices].Count)
			}
			if indexCount > 0 {
				polygons += indexCount / 3
			} else {
				polygons += count / 3
			}
		}
	}
	return vertices, polygons, issues
}

// estimateHeight scans mesh POSITION data for the model's Y extent in meters
// and returns it in centimeters. ok is false when no float positions exist.
func estimateHeight(doc *gltf.Document) (float32, bool) {
	minY := float32(math.Inf(1))
	maxY := float32(math.Inf(-1))
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			a, ok := prim.Attributes["POSITION"]
			if !ok {
				continue
			}
			l, err := gltfutil.ResolveLayout(doc, a)
			if err != nil || l.ComponentType != gltf.ComponentFloat || l.Type != gltf.AccessorVec3 {
				continue
			}
			for i := 0; i < int(l.Count); i++ {
				y, _ := l.Float(i, 1)
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if minY > maxY {
		return 0, false
	}
	return float32(math.Abs(float64(maxY-minY))) * 100, true
}

// bakeScale multiplies a uniform scale factor into node translations and
// vertex positions instead of storing it as a node scale property. Some SL
// viewer versions apply the mesh node transform to skinned vertices, which
// would double-scale a model carrying a scaled root.
func bakeScale(doc *gltf.Document, factor float32) {
	f := float64(factor)
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f-1) <= 1e-6 {
		return
	}

	for _, node := range doc.Nodes {
		for i := range node.Translation {
			node.Translation[i] *= factor
		}
		// Raw matrix transforms carry their translation in the last column.
		node.Matrix[12] *= factor
		node.Matrix[13] *= factor
		node.Matrix[14] *= factor
	}

	positions := map[uint32]bool{}
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if a, ok := prim.Attributes["POSITION"]; ok {
				positions[a] = true
			}
			for _, target := range prim.Targets {
				if a, ok := target["POSITION"]; ok {
					positions[a] = true
				}
			}
		}
	}
	for a := range positions {
		l, err := gltfutil.ResolveLayout(doc, a)
		if err != nil || l.ComponentType != gltf.ComponentFloat || l.Type != gltf.AccessorVec3 {
			continue
		}
		for i := 0; i < int(l.Count); i++ {
			for lane := 0; lane < 3; lane++ {
				v, _ := l.Float(i, lane)
				l.SetFloat(i, lane, v*factor)
			}
		}
		// Keep the accessor bounds in sync with the scaled data.
		acr := doc.Accessors[a]
		if len(acr.Min) == 3 && len(acr.Max) == 3 {
			for i := 0; i < 3; i++ {
				acr.Min[i] *= factor
				acr.Max[i] *= factor
			}
		}
	}
}
