package converter

import (
	"sort"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/gltfutil"
	"github.com/logue/vrm2sl/sl"
)

// skinBinding is one JOINTS_0/WEIGHTS_0 accessor pair used by a primitive
// bound to a skin.
type skinBinding struct {
	joints  uint32
	weights uint32
}

func collectSkinBindings(doc *gltf.Document, skin int) []skinBinding {
	seen := map[skinBinding]bool{}
	var bindings []skinBinding
	for _, node := range doc.Nodes {
		if node.Skin == nil || int(*node.Skin) != skin {
			continue
		}
		if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
			continue
		}
		for _, prim := range doc.Meshes[*node.Mesh].Primitives {
			j, okJoints := prim.Attributes["JOINTS_0"]
			w, okWeights := prim.Attributes["WEIGHTS_0"]
			if !okJoints || !okWeights {
				continue
			}
			b := skinBinding{joints: j, weights: w}
			if !seen[b] {
				seen[b] = true
				bindings = append(bindings, b)
			}
		}
	}
	return bindings
}

// resolveBinding resolves both accessors of a binding and checks the storage
// shape: VEC4 u8/u16 joints, VEC4 float weights.
func resolveBinding(doc *gltf.Document, b skinBinding) (jl, wl *gltfutil.AccessorLayout, ok bool) {
	jl, err := gltfutil.ResolveLayout(doc, b.joints)
	if err != nil {
		return nil, nil, false
	}
	wl, err = gltfutil.ResolveLayout(doc, b.weights)
	if err != nil {
		return nil, nil, false
	}
	if jl.Type != gltf.AccessorVec4 || wl.Type != gltf.AccessorVec4 {
		return nil, nil, false
	}
	if jl.ComponentType != gltf.ComponentUbyte && jl.ComponentType != gltf.ComponentUshort {
		return nil, nil, false
	}
	if wl.ComponentType != gltf.ComponentFloat {
		return nil, nil, false
	}
	return jl, wl, true
}

// remapUnmappedWeights moves vertex weights bound to bones with no SL
// counterpart (upperChest, J_Sec_* spring bones and the like) onto the
// nearest ancestor that is SL-mapped and a joint of the same skin. Weight
// on a joint with no such ancestor is dropped; compaction later resets
// vertices that lost all their influences.
func remapUnmappedWeights(doc *gltf.Document, bones map[string]int) {
	slNodes := map[int]bool{}
	for _, pair := range sl.AllBones() {
		if idx, ok := bones[pair.VRM]; ok {
			slNodes[idx] = true
		}
	}
	parents := gltfutil.ParentMap(doc)

	type slotWeight struct {
		slot   int
		weight float32
	}

	for skinIndex, skin := range doc.Skins {
		joints := skin.Joints
		if len(joints) == 0 {
			continue
		}

		nodeSlot := map[int]int{}
		for slot, j := range joints {
			if _, ok := nodeSlot[int(j)]; !ok {
				nodeSlot[int(j)] = slot
			}
		}

		// remap[slot] is the destination slot, or -1 when the weight has
		// nowhere representable to go.
		remap := make([]int, len(joints))
		changed := false
		for slot, j := range joints {
			remap[slot] = slot
			if int(j) >= len(parents) || slNodes[int(j)] {
				continue
			}
			remap[slot] = -1
			changed = true
			for p := parents[int(j)]; p >= 0; p = parents[p] {
				if !slNodes[p] {
					continue
				}
				if pos, ok := nodeSlot[p]; ok {
					remap[slot] = pos
					break
				}
			}
		}
		if !changed {
			continue
		}

		for _, bind := range collectSkinBindings(doc, skinIndex) {
			jl, wl, ok := resolveBinding(doc, bind)
			if !ok {
				continue
			}
			count := min(int(jl.Count), int(wl.Count))
			acc := make([]float32, len(joints))
			for v := 0; v < count; v++ {
				for i := range acc {
					acc[i] = 0
				}
				for lane := 0; lane < 4; lane++ {
					slot, _ := jl.JointSlot(v, lane)
					weight, _ := wl.Float(v, lane)
					if slot >= len(remap) {
						continue
					}
					if target := remap[slot]; target >= 0 && target < len(acc) {
						acc[target] += weight
					}
				}

				var top []slotWeight
				for s, w := range acc {
					if w > 1e-7 {
						top = append(top, slotWeight{s, w})
					}
				}
				sort.SliceStable(top, func(i, j int) bool { return top[i].weight > top[j].weight })
				if len(top) > 4 {
					top = top[:4]
				}
				var sum float32
				for _, entry := range top {
					sum += entry.weight
				}

				for lane := 0; lane < 4; lane++ {
					slot, weight := 0, float32(0)
					if lane < len(top) {
						slot = top[lane].slot
						if sum > 1e-7 {
							weight = top[lane].weight / sum
						}
					}
					jl.SetJointSlot(v, lane, slot)
					wl.SetFloat(v, lane, weight)
				}
			}
		}
	}
}

// compactSkins drops joint slots that no vertex meaningfully references,
// packing the joints list and the inverse bind matrix accessor in place.
// Vertices left pointing at a dropped slot move to the first kept slot with
// zero weight; fully unweighted vertices get a unit weight on that slot so
// the lane sums stay normalized.
func compactSkins(doc *gltf.Document) {
	for skinIndex, skin := range doc.Skins {
		bindings := collectSkinBindings(doc, skinIndex)
		if len(bindings) == 0 || len(skin.Joints) == 0 {
			continue
		}

		used := make([]bool, len(skin.Joints))
		for _, bind := range bindings {
			jl, wl, ok := resolveBinding(doc, bind)
			if !ok {
				continue
			}
			count := min(int(jl.Count), int(wl.Count))
			for v := 0; v < count; v++ {
				for lane := 0; lane < 4; lane++ {
					weight, _ := wl.Float(v, lane)
					if weight <= 1e-6 {
						continue
					}
					if slot, _ := jl.JointSlot(v, lane); slot < len(used) {
						used[slot] = true
					}
				}
			}
		}

		var keep []int
		for slot, u := range used {
			if u {
				keep = append(keep, slot)
			}
		}
		if len(keep) == 0 {
			keep = make([]int, len(skin.Joints))
			for slot := range keep {
				keep[slot] = slot
			}
		}

		oldToNew := make([]int, len(skin.Joints))
		for i := range oldToNew {
			oldToNew[i] = -1
		}
		for newIdx, oldIdx := range keep {
			oldToNew[oldIdx] = newIdx
		}
		fallback := 0
		for _, mapped := range oldToNew {
			if mapped >= 0 {
				fallback = mapped
				break
			}
		}

		for _, bind := range bindings {
			jl, wl, ok := resolveBinding(doc, bind)
			if !ok {
				continue
			}
			count := min(int(jl.Count), int(wl.Count))
			for v := 0; v < count; v++ {
				var slots [4]int
				var weights [4]float32
				for lane := 0; lane < 4; lane++ {
					slots[lane], _ = jl.JointSlot(v, lane)
					weights[lane], _ = wl.Float(v, lane)
				}
				for lane := 0; lane < 4; lane++ {
					if s := slots[lane]; s < len(oldToNew) && oldToNew[s] >= 0 {
						slots[lane] = oldToNew[s]
					} else {
						slots[lane] = fallback
						weights[lane] = 0
					}
				}
				var sum float32
				for _, w := range weights {
					sum += w
				}
				if sum > 1e-8 {
					for lane := range weights {
						weights[lane] /= sum
					}
				} else {
					slots = [4]int{fallback, fallback, fallback, fallback}
					weights = [4]float32{1, 0, 0, 0}
				}
				for lane := 0; lane < 4; lane++ {
					jl.SetJointSlot(v, lane, slots[lane])
					wl.SetFloat(v, lane, weights[lane])
				}
			}
		}

		compactInverseBindAccessor(doc, skin, keep)

		compacted := make([]uint32, 0, len(keep))
		for _, slot := range keep {
			if slot < len(skin.Joints) {
				compacted = append(compacted, skin.Joints[slot])
			}
		}
		skin.Joints = compacted
	}
}

// compactInverseBindAccessor rewrites the IBM accessor to hold only the kept
// slots, in keep order, and shrinks its element count. Kept blocks are
// copied out first since destinations can overlap sources.
func compactInverseBindAccessor(doc *gltf.Document, skin *gltf.Skin, keep []int) {
	if skin.InverseBindMatrices == nil {
		return
	}
	l, err := gltfutil.ResolveLayout(doc, *skin.InverseBindMatrices)
	if err != nil || l.ComponentType != gltf.ComponentFloat || l.Type != gltf.AccessorMat4 {
		return
	}

	matrices := make([][64]byte, 0, len(keep))
	for _, slot := range keep {
		if slot >= int(l.Count) {
			continue
		}
		var block [64]byte
		copy(block[:], l.Mat4Bytes(slot))
		matrices = append(matrices, block)
	}
	for i := range matrices {
		copy(l.Mat4Bytes(i), matrices[i][:])
	}
	doc.Accessors[*skin.InverseBindMatrices].Count = uint32(len(matrices))
}
