package vrm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestHumanBones(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Extensions = gltf.Extensions{
		ExtensionNameVRMC: &VRMCExt{
			Humanoid: HumanoidVRMC{HumanBones: map[string]*HumanBone{
				"hips":  {Node: 1},
				"spine": {Node: 2},
			}},
		},
		ExtensionName: &VRMExt{
			Humanoid: Humanoid{Bones: []*Bone{
				{Bone: "hips", Node: 9},
				{Bone: "leftHand", Node: 3},
				{Bone: "", Node: 4},
				{Bone: "rightHand", Node: -1},
			}},
		},
	}

	bones := HumanBones(doc)
	if len(bones) != 3 {
		t.Fatal("bone count: ", len(bones))
	}
	if bones["hips"] != 1 {
		t.Error("hips should come from the VRMC block: ", bones["hips"])
	}
	if bones["spine"] != 2 || bones["leftHand"] != 3 {
		t.Error("merged bones: ", bones)
	}
	if _, ok := bones["rightHand"]; ok {
		t.Error("negative node index should be skipped")
	}
}

func TestHumanBones_RawPayload(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Extensions = gltf.Extensions{
		ExtensionName: json.RawMessage(`{"humanoid":{"humanBones":[{"bone":"hips","node":5}]}}`),
	}

	bones := HumanBones(doc)
	if bones["hips"] != 5 {
		t.Error("hips: ", bones["hips"])
	}
}

func TestIsVRM(t *testing.T) {
	doc := gltf.NewDocument()
	if IsVRM(doc) {
		t.Error("plain document should not be VRM")
	}
	doc.Extensions = gltf.Extensions{"VRMC_springBone": json.RawMessage(`{}`)}
	if !IsVRM(doc) {
		t.Error("VRMC_springBone should count as VRM")
	}
}

func TestModelNameAndAuthor(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "VRoid Studio 1.21.0"
	doc.Asset.Copyright = "someone"
	if name := ModelName(doc); name != "VRoid Studio 1.21.0" {
		t.Error("generator fallback: ", name)
	}
	if author := Author(doc); author != "someone" {
		t.Error("copyright fallback: ", author)
	}

	doc.Extensions = gltf.Extensions{
		ExtensionNameVRMC: &VRMCExt{Meta: MetadataVRMC{Name: "AvatarB", Authors: []string{"bob"}}},
	}
	if name := ModelName(doc); name != "AvatarB" {
		t.Error("VRMC name: ", name)
	}
	if author := Author(doc); author != "bob" {
		t.Error("VRMC author: ", author)
	}

	doc.Extensions[ExtensionName] = &VRMExt{Meta: Metadata{Title: "AvatarA", Author: "alice"}}
	if name := ModelName(doc); name != "AvatarA" {
		t.Error("legacy title should win: ", name)
	}
	if author := Author(doc); author != "alice" {
		t.Error("legacy author should win: ", author)
	}
}

func TestMappingConfigApply(t *testing.T) {
	confpath := filepath.Join(t.TempDir(), "bonemap.yaml")
	confyaml := `
boneMappings:
  - bone: hips
    nodeName: Root_Hips
  - bone: head
    nodeName: NoSuchNode
`
	if err := os.WriteFile(confpath, []byte(confyaml), 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadMappingConfig(confpath)
	if err != nil {
		t.Fatal(err)
	}

	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "Armature"}, {Name: "Root_Hips"}}
	bones := map[string]int{"hips": 0, "head": 0}
	conf.Apply(doc, bones)

	if bones["hips"] != 1 {
		t.Error("hips override: ", bones["hips"])
	}
	if bones["head"] != 0 {
		t.Error("missing node should leave mapping untouched: ", bones["head"])
	}
}
