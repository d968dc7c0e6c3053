package converter

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/geom"
	"github.com/logue/vrm2sl/gltfutil"
)

// upperLimbTPoseTargets returns the local rotations the optional pose pass
// drives the shoulder, elbow and wrist bones toward. Both the SL and the VRM
// spellings are listed so the pass finds its nodes before or after renaming.
func upperLimbTPoseTargets() map[string]*geom.Quaternion {
	targets := map[string]*geom.Quaternion{}
	for _, name := range []string{
		"mShoulderLeft", "mElbowLeft", "mWristLeft",
		"mShoulderRight", "mElbowRight", "mWristRight",
		"leftUpperArm", "leftLowerArm", "leftHand",
		"rightUpperArm", "rightLowerArm", "rightHand",
	} {
		targets[name] = geom.NewQuaternion(0, 0, 0, 1)
	}
	return targets
}

// poseCorrection returns the rotation that moves current onto target when
// multiplied from the left.
func poseCorrection(current, target *geom.Quaternion) *geom.Quaternion {
	return target.Mul(current.Inverse())
}

// inverseCorrectVertex undoes a bone correction on a vertex so the mesh
// keeps its authored shape while the bone rotation changes.
func inverseCorrectVertex(v *geom.Vector3, correction *geom.Quaternion) *geom.Vector3 {
	return correction.Inverse().ApplyTo(v)
}

// rebuildInverseBind returns inverse(parentWorld x local). ok is false when
// the bind matrix is singular.
func rebuildInverseBind(parentWorld, local *geom.Matrix4) (*geom.Matrix4, bool) {
	bind := parentWorld.Mul(local)
	if bind.Det() == 0 {
		return nil, false
	}
	return bind.Inverse(), true
}

// applyTPoseCorrection drives the upper-limb bones toward their T-pose
// target rotations and rebuilds the inverse bind matrices of the corrected
// joints. After bind normalization the corrections are identity for mapped
// bones, so for typical inputs this re-derives the arm IBMs in place.
func applyTPoseCorrection(doc *gltf.Document) error {
	targets := upperLimbTPoseTargets()
	parents := gltfutil.ParentMap(doc)
	worlds := gltfutil.WorldMatrices(doc)

	for i, node := range doc.Nodes {
		target, ok := targets[node.Name]
		if !ok {
			continue
		}

		t, current, s := gltfutil.LocalMatrix(node).Decompose()
		correction := poseCorrection(current, target)
		corrected := correction.Mul(current)
		newLocal := geom.NewTRSMatrix4(t, corrected, s)
		gltfutil.SetLocalTRS(node, newLocal)

		parentWorld := geom.NewMatrix4()
		if p := parents[i]; p >= 0 {
			parentWorld = worlds[p]
		}
		inverse, ok := rebuildInverseBind(parentWorld, newLocal)
		if !ok {
			return fmt.Errorf("failed to invert bind matrix during targeted_node_correction for node %d (%s)", i, node.Name)
		}
		writeJointInverseBind(doc, i, inverse)
	}
	return nil
}

// writeJointInverseBind stores mat into every skin IBM slot that references
// the node.
func writeJointInverseBind(doc *gltf.Document, node int, mat *geom.Matrix4) {
	for _, skin := range doc.Skins {
		if skin.InverseBindMatrices == nil {
			continue
		}
		l, err := gltfutil.ResolveLayout(doc, *skin.InverseBindMatrices)
		if err != nil || l.ComponentType != gltf.ComponentFloat || l.Type != gltf.AccessorMat4 {
			continue
		}
		for slot, joint := range skin.Joints {
			if int(joint) != node || slot >= int(l.Count) {
				continue
			}
			l.SetMat4(slot, mat)
		}
	}
}
