package converter

import (
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/geom"
	"github.com/logue/vrm2sl/gltfutil"
	"github.com/logue/vrm2sl/sl"
)

func containsNodeRef(list []uint32, target int) bool {
	for _, v := range list {
		if int(v) == target {
			return true
		}
	}
	return false
}

func appendNodeRef(list []uint32, target int) []uint32 {
	if containsNodeRef(list, target) {
		return list
	}
	return append(list, uint32(target))
}

func removeNodeRef(list []uint32, target int) []uint32 {
	kept := list[:0]
	for _, v := range list {
		if int(v) != target {
			kept = append(kept, v)
		}
	}
	return kept
}

// renameBones overwrites the display name of every resolved humanoid bone
// node with its SL skeleton name, core table first.
func renameBones(doc *gltf.Document, bones map[string]int) {
	for _, pair := range sl.AllBones() {
		if idx, ok := bones[pair.VRM]; ok && idx >= 0 && idx < len(doc.Nodes) {
			doc.Nodes[idx].Name = pair.SL
		}
	}
}

// ensureTargetBones verifies that every SL name expected from the resolved
// bone map actually exists among node names after renaming. A miss means the
// bone map pointed at stale or duplicate indices.
func ensureTargetBones(doc *gltf.Document, bones map[string]int) error {
	names := make(map[string]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if node.Name != "" {
			names[node.Name] = true
		}
	}
	var missing []string
	for _, pair := range sl.AllBones() {
		if _, ok := bones[pair.VRM]; !ok {
			continue
		}
		if !names[pair.SL] {
			missing = append(missing, pair.SL)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("Bone conversion incomplete: missing target SL bone names after rename: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// reconstructHierarchy reparents the resolved humanoid bones into the SL
// skeleton shape while keeping each bone's world transform. Later table
// entries override earlier ones, so when leftShoulder exists the chain
// becomes chest → leftShoulder → leftUpperArm instead of the fallback
// chest → leftUpperArm.
func reconstructHierarchy(doc *gltf.Document, bones map[string]int) {
	worlds := gltfutil.WorldMatrices(doc)

	finalParent := map[int]int{}
	for _, rel := range sl.AllHierarchy() {
		parent, okParent := bones[rel.Parent]
		child, okChild := bones[rel.Child]
		if !okParent || !okChild || parent == child {
			continue
		}
		finalParent[child] = parent
	}
	if len(finalParent) == 0 {
		return
	}

	// Planned (parent, child) links in first-mention order of each child.
	var planned [][2]int
	controlled := map[int]bool{}
	for _, rel := range sl.AllHierarchy() {
		child, ok := bones[rel.Child]
		if !ok || controlled[child] {
			continue
		}
		if parent, ok := finalParent[child]; ok {
			planned = append(planned, [2]int{parent, child})
			controlled[child] = true
		}
	}

	for _, node := range doc.Nodes {
		kept := node.Children[:0]
		for _, c := range node.Children {
			if !controlled[int(c)] {
				kept = append(kept, c)
			}
		}
		node.Children = kept
	}

	for _, link := range planned {
		parent, child := link[0], link[1]
		if parent < 0 || parent >= len(doc.Nodes) {
			continue
		}
		doc.Nodes[parent].Children = appendNodeRef(doc.Nodes[parent].Children, child)
	}

	for _, link := range planned {
		parent, child := link[0], link[1]
		if parent >= len(worlds) || child >= len(worlds) || child >= len(doc.Nodes) {
			continue
		}
		parentWorld := worlds[parent]
		if parentWorld.Det() == 0 {
			continue
		}
		gltfutil.SetLocalTRS(doc.Nodes[child], parentWorld.Inverse().Mul(worlds[child]))
	}

	if len(doc.Scenes) > 0 {
		scene := doc.Scenes[0]
		kept := scene.Nodes[:0]
		for _, n := range scene.Nodes {
			if !controlled[int(n)] {
				kept = append(kept, n)
			}
		}
		scene.Nodes = kept
	}
}

// normalizeBindRotations rewrites every SL-mapped bone to an identity local
// rotation while keeping its world position.
//
// Second Life reads joint bind positions from the inverse bind matrices and
// then applies its own default bone orientations when deforming the mesh, so
// any rotation left in the node hierarchy would be accounted for by the IBM
// but never re-applied by the viewer.
//
// Bones are visited parents before children so each child derives its local
// translation from the already settled parent position.
func normalizeBindRotations(doc *gltf.Document, bones map[string]int) {
	mapped := map[int]bool{}
	for _, pair := range sl.AllBones() {
		if idx, ok := bones[pair.VRM]; ok {
			mapped[idx] = true
		}
	}

	parents := gltfutil.ParentMap(doc)
	worlds := gltfutil.WorldMatrices(doc)

	topo := make([]int, 0, len(doc.Nodes))
	queue := make([]int, 0, len(doc.Nodes))
	for i := range doc.Nodes {
		if parents[i] < 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		topo = append(topo, idx)
		for _, c := range doc.Nodes[idx].Children {
			if int(c) < len(doc.Nodes) {
				queue = append(queue, int(c))
			}
		}
	}

	effective := make([]*geom.Vector3, len(doc.Nodes))
	for i, w := range worlds {
		effective[i] = w.Translation()
	}

	for _, idx := range topo {
		if !mapped[idx] {
			continue
		}
		parentT := geom.NewVector3(0, 0, 0)
		if p := parents[idx]; p >= 0 {
			parentT = effective[p]
		}
		local := worlds[idx].Translation().Sub(parentT)
		effective[idx] = parentT.Add(local)

		node := doc.Nodes[idx]
		node.Matrix = gltf.DefaultMatrix
		node.Translation = [3]float32{local.X, local.Y, local.Z}
		node.Rotation = [4]float32{0, 0, 0, 1}
		// SL never applies bone scale; residual near-unit values would skew
		// the joint positions read from the inverse bind matrices.
		node.Scale = [3]float32{1, 1, 1}
	}
}

// promotePelvisToSceneRoot collapses non-skeleton wrapper nodes between the
// scene root and mPelvis into a single identity-transform root holding only
// the pelvis. Children of the removed wrappers (mesh nodes and the like)
// become scene roots. Returns the identity root node index, or -1 when the
// pelvis has no wrapper ancestors.
func promotePelvisToSceneRoot(doc *gltf.Document, bones map[string]int) int {
	pelvis, ok := bones["hips"]
	if !ok || pelvis < 0 || pelvis >= len(doc.Nodes) {
		return -1
	}

	parents := gltfutil.ParentMap(doc)
	mapped := map[int]bool{}
	for _, idx := range bones {
		mapped[idx] = true
	}

	// ancestors[0] is the pelvis's direct parent, the last entry the topmost
	// wrapper below the scene root. The walk stops at anything that is
	// already an SL bone.
	var ancestors []int
	for current := pelvis; parents[current] >= 0; {
		p := parents[current]
		if strings.HasPrefix(doc.Nodes[p].Name, "m") || mapped[p] {
			break
		}
		ancestors = append(ancestors, p)
		current = p
	}
	if len(ancestors) == 0 {
		return -1
	}

	worlds := gltfutil.WorldMatrices(doc)
	pelvisT := worlds[pelvis].Translation()

	identityRoot := ancestors[len(ancestors)-1]
	intermediates := map[int]bool{}
	for _, a := range ancestors {
		if a != identityRoot {
			intermediates[a] = true
		}
	}

	gltfutil.SetLocalTRS(doc.Nodes[identityRoot], geom.NewMatrix4())

	if dp := parents[pelvis]; dp >= 0 {
		doc.Nodes[dp].Children = removeNodeRef(doc.Nodes[dp].Children, pelvis)
	}

	var orphans []int
	for _, a := range ancestors {
		for _, c := range doc.Nodes[a].Children {
			ci := int(c)
			if ci != pelvis && ci != identityRoot && !intermediates[ci] {
				orphans = append(orphans, ci)
			}
		}
	}
	for inter := range intermediates {
		doc.Nodes[inter].Children = nil
	}
	doc.Nodes[identityRoot].Children = []uint32{uint32(pelvis)}

	// The identity root carries no transform, so the pelvis's local
	// translation equals its world translation.
	pelvisNode := doc.Nodes[pelvis]
	pelvisNode.Matrix = gltf.DefaultMatrix
	pelvisNode.Translation = [3]float32{pelvisT.X, pelvisT.Y, pelvisT.Z}
	if pelvisNode.Rotation == ([4]float32{}) {
		pelvisNode.Rotation = [4]float32{0, 0, 0, 1}
	}

	if len(doc.Scenes) > 0 {
		scene := doc.Scenes[0]
		kept := scene.Nodes[:0]
		for _, n := range scene.Nodes {
			if intermediates[int(n)] || int(n) == pelvis {
				continue
			}
			kept = append(kept, n)
		}
		scene.Nodes = appendNodeRef(kept, identityRoot)
		for _, o := range orphans {
			scene.Nodes = appendNodeRef(scene.Nodes, o)
		}
	}

	return identityRoot
}

// setSkinSkeletonRoot points every skin's skeleton at the identity root,
// falling back to the pelvis and then to the skin's first joint. The glTF
// skeleton property does not require the root to appear in the joints list,
// and an identity-transform root injects no offset into importers that
// multiply it into the skinning equation.
func setSkinSkeletonRoot(doc *gltf.Document, bones map[string]int, identityRoot int) {
	skeleton := identityRoot
	if skeleton < 0 {
		if hips, ok := bones["hips"]; ok {
			skeleton = hips
		}
	}
	for _, skin := range doc.Skins {
		if skeleton >= 0 {
			skin.Skeleton = gltf.Index(uint32(skeleton))
			continue
		}
		if len(skin.Joints) > 0 {
			skin.Skeleton = gltf.Index(skin.Joints[0])
		}
	}
}

// regenerateInverseBindMatrices rebuilds every skin's inverse bind matrices
// from the current node transforms. Joints whose world matrix cannot be
// inverted fall back to the identity matrix.
func regenerateInverseBindMatrices(doc *gltf.Document) {
	if len(doc.Buffers) == 0 || len(doc.Buffers[0].Data) == 0 {
		return
	}
	worlds := gltfutil.WorldMatrices(doc)
	for _, skin := range doc.Skins {
		if skin.InverseBindMatrices == nil || len(skin.Joints) == 0 {
			continue
		}
		l, err := gltfutil.ResolveLayout(doc, *skin.InverseBindMatrices)
		if err != nil || l.ComponentType != gltf.ComponentFloat || l.Type != gltf.AccessorMat4 {
			continue
		}
		count := min(len(skin.Joints), int(l.Count))
		for i := 0; i < count; i++ {
			joint := int(skin.Joints[i])
			if joint >= len(worlds) {
				continue
			}
			inverse := geom.NewMatrix4()
			if w := worlds[joint]; w.Det() != 0 {
				inverse = w.Inverse()
			}
			l.SetMat4(i, inverse)
		}
	}
}
