package vrm

import (
	"encoding/json"
	"strings"

	"github.com/qmuntal/gltf"
)

// LegacyExt returns the decoded "VRM" (0.x) extension block, or nil if the
// document does not carry one. Documents loaded before the extension was
// registered keep the raw payload, so that path is decoded here as well.
func LegacyExt(doc *gltf.Document) *VRMExt {
	switch ext := doc.Extensions[ExtensionName].(type) {
	case *VRMExt:
		return ext
	case json.RawMessage:
		if v, err := Unmarshal(ext); err == nil {
			return v.(*VRMExt)
		}
	}
	return nil
}

// VRMCExtension returns the decoded "VRMC_vrm" (1.0) extension block, or nil.
func VRMCExtension(doc *gltf.Document) *VRMCExt {
	switch ext := doc.Extensions[ExtensionNameVRMC].(type) {
	case *VRMCExt:
		return ext
	case json.RawMessage:
		if v, err := UnmarshalVRMC(ext); err == nil {
			return v.(*VRMCExt)
		}
	}
	return nil
}

// IsVRM reports whether any top-level extension key names VRM. The substring
// match is case-insensitive so it hits both the 0.x and the 1.0 key.
func IsVRM(doc *gltf.Document) bool {
	for key := range doc.Extensions {
		if strings.Contains(strings.ToLower(key), "vrm") {
			return true
		}
	}
	return false
}

// HumanBones extracts the humanoid bone map of the document: semantic bone
// name to node index. A VRM 1.0 block wins; the legacy 0.x block only fills
// bones the 1.0 block does not define. Entries with a negative node index
// are skipped.
func HumanBones(doc *gltf.Document) map[string]int {
	bones := map[string]int{}
	if ext := VRMCExtension(doc); ext != nil {
		for name, bone := range ext.Humanoid.HumanBones {
			if bone != nil && bone.Node >= 0 {
				bones[name] = bone.Node
			}
		}
	}
	if ext := LegacyExt(doc); ext != nil {
		for _, bone := range ext.Humanoid.Bones {
			if bone == nil || bone.Bone == "" || bone.Node < 0 {
				continue
			}
			if _, ok := bones[bone.Bone]; !ok {
				bones[bone.Bone] = bone.Node
			}
		}
	}
	return bones
}

// ModelName returns the display name recorded in the VRM metadata, falling
// back to the asset generator string when no metadata names the model.
func ModelName(doc *gltf.Document) string {
	if ext := LegacyExt(doc); ext != nil {
		if ext.Meta.Name != "" {
			return ext.Meta.Name
		}
		if ext.Meta.Title != "" {
			return ext.Meta.Title
		}
	}
	if ext := VRMCExtension(doc); ext != nil && ext.Meta.Name != "" {
		return ext.Meta.Name
	}
	if doc.Asset.Generator != "" {
		return doc.Asset.Generator
	}
	return ""
}

// Author returns the first author recorded in the VRM metadata, falling back
// to the asset copyright string.
func Author(doc *gltf.Document) string {
	if ext := LegacyExt(doc); ext != nil {
		if len(ext.Meta.Authors) > 0 && ext.Meta.Authors[0] != "" {
			return ext.Meta.Authors[0]
		}
		if ext.Meta.Author != "" {
			return ext.Meta.Author
		}
	}
	if ext := VRMCExtension(doc); ext != nil {
		if len(ext.Meta.Authors) > 0 && ext.Meta.Authors[0] != "" {
			return ext.Meta.Authors[0]
		}
	}
	if doc.Asset.Copyright != "" {
		return doc.Asset.Copyright
	}
	return ""
}
