package converter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/sl"
)

func TestValidateSource(t *testing.T) {
	vroid := &gltf.Document{Asset: gltf.Asset{Generator: "VRoid Studio 1.21.0"}}
	if issues := validateSource(vroid); len(issues) != 0 {
		t.Error("VRoid generator should pass: ", issues)
	}

	withExt := &gltf.Document{Extensions: gltf.Extensions{"VRM": json.RawMessage("{}")}}
	if issues := validateSource(withExt); len(issues) != 0 {
		t.Error("VRM extension should pass: ", issues)
	}

	other := &gltf.Document{Asset: gltf.Asset{Generator: "Blender 4.1"}}
	issues := validateSource(other)
	if len(issues) != 1 {
		t.Fatal("issue count: ", len(issues))
	}
	if issues[0].Severity != SeverityError || issues[0].Code != CodeUnsupportedSource {
		t.Error("issue: ", issues[0])
	}
}

func TestMissingRequiredBones(t *testing.T) {
	bones := map[string]int{}
	for i, name := range sl.RequiredBones {
		bones[name] = i
	}
	if missing := missingRequiredBones(bones); len(missing) != 0 {
		t.Error("full map: ", missing)
	}

	delete(bones, "leftHand")
	missing := missingRequiredBones(bones)
	if len(missing) != 1 || missing[0] != "leftHand" {
		t.Fatal("missing: ", missing)
	}

	issues := missingBoneIssues(missing)
	if len(issues) != 1 {
		t.Fatal("issue count: ", len(issues))
	}
	if issues[0].Severity != SeverityError || issues[0].Code != CodeMissingRequiredBone {
		t.Error("issue: ", issues[0])
	}
	if issues[0].Message != "Required bone 'leftHand' was not found" {
		t.Error("message: ", issues[0].Message)
	}
}

func TestValidateHierarchyFlatBones(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "Root", Children: []uint32{1, 2, 3}},
		{Name: "J_Bip_C_Hips"},
		{Name: "J_Bip_C_Spine"},
		{Name: "J_Bip_C_Chest"},
	}}
	bones := map[string]int{"hips": 1, "spine": 2, "chest": 3}

	issues := validateHierarchy(doc, bones)
	if len(issues) != 2 {
		t.Fatal("issue count: ", len(issues))
	}
	for _, issue := range issues {
		if issue.Severity != SeverityError || issue.Code != CodeInvalidBoneHierarchy {
			t.Error("issue: ", issue)
		}
	}
	if issues[0].Message != "Non-standard bone hierarchy: 'spine' parent index is 0 (expected 1)" {
		t.Error("spine message: ", issues[0].Message)
	}
	if issues[1].Message != "Non-standard bone hierarchy: 'chest' parent index is 0 (expected 2)" {
		t.Error("chest message: ", issues[1].Message)
	}
}

func TestValidateHierarchyUnparentedBone(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "J_Bip_C_Hips"},
		{Name: "J_Bip_C_Spine"},
	}}
	bones := map[string]int{"hips": 0, "spine": 1}

	issues := validateHierarchy(doc, bones)
	if len(issues) != 1 {
		t.Fatal("issue count: ", len(issues))
	}
	if issues[0].Message != "Non-standard bone hierarchy: parent for 'spine' is not set" {
		t.Error("message: ", issues[0].Message)
	}
}

func TestValidateHierarchyAcceptsUpperChest(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "J_Bip_C_Chest", Children: []uint32{1}},
		{Name: "J_Bip_C_UpperChest", Children: []uint32{2}},
		{Name: "J_Bip_C_Neck", Children: []uint32{3}},
		{Name: "J_Bip_C_Head"},
	}}
	bones := map[string]int{"chest": 0, "upperChest": 1, "neck": 2, "head": 3}

	if issues := validateHierarchy(doc, bones); len(issues) != 0 {
		t.Error("neck under upperChest should pass: ", issues)
	}
}

func TestValidateHierarchyMatchingBones(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "J_Bip_C_Hips", Children: []uint32{1}},
		{Name: "J_Bip_C_Spine", Children: []uint32{2}},
		{Name: "J_Bip_C_Chest"},
	}}
	bones := map[string]int{"hips": 0, "spine": 1, "chest": 2}

	if issues := validateHierarchy(doc, bones); len(issues) != 0 {
		t.Error("matching hierarchy: ", issues)
	}
}

func TestValidateBoneIndices(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{{Name: "J_Bip_C_Hips"}}}

	if issues := validateBoneIndices(doc, map[string]int{"hips": 0}); len(issues) != 0 {
		t.Error("valid index: ", issues)
	}

	issues := validateBoneIndices(doc, map[string]int{"hips": 99})
	if len(issues) != 1 {
		t.Fatal("issue count: ", len(issues))
	}
	if issues[0].Severity != SeverityError || issues[0].Code != CodeInvalidBoneNodeIndex {
		t.Error("issue: ", issues[0])
	}
	want := "Bone conversion precondition failed: 'hips' points to invalid node index 99 (node count: 1)"
	if issues[0].Message != want {
		t.Error("message: ", issues[0].Message)
	}
}

func TestMappedBones(t *testing.T) {
	bones := map[string]int{"jaw": 2, "hips": 0, "leftEye": 5}
	mapped := mappedBones(bones)
	if len(mapped) != 3 {
		t.Fatal("mapped count: ", len(mapped))
	}
	// Core table entries come first, then Bento in table order.
	want := []MappedBone{
		{VRM: "hips", SL: "mPelvis"},
		{VRM: "leftEye", SL: "mEyeLeft"},
		{VRM: "jaw", SL: "mFaceJaw"},
	}
	for i, m := range mapped {
		if m != want[i] {
			t.Error("pair: ", i, m, want[i])
		}
	}
}

func TestIssueMessageMentionsBoneName(t *testing.T) {
	issues := missingBoneIssues([]string{"rightFoot", "neck"})
	if len(issues) != 2 {
		t.Fatal("issue count: ", len(issues))
	}
	for i, name := range []string{"rightFoot", "neck"} {
		if !strings.Contains(issues[i].Message, "'"+name+"'") {
			t.Error("message: ", issues[i].Message)
		}
	}
}
