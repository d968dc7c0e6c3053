package converter

import (
	"strings"

	"github.com/qmuntal/gltf"
)

// stripVRMExtensions removes the VRM extension blocks and clears the extras
// fields so no VRM-specific metadata leaks into the converted file.
func stripVRMExtensions(doc *gltf.Document) {
	for key := range doc.Extensions {
		if strings.Contains(strings.ToLower(key), "vrm") {
			delete(doc.Extensions, key)
		}
	}
	doc.ExtensionsUsed = filterVRMNames(doc.ExtensionsUsed)
	doc.ExtensionsRequired = filterVRMNames(doc.ExtensionsRequired)
	clearExtras(doc)
}

func filterVRMNames(names []string) []string {
	var kept []string
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), "vrm") {
			kept = append(kept, name)
		}
	}
	return kept
}

func clearExtras(doc *gltf.Document) {
	doc.Extras = nil
	doc.Asset.Extras = nil
	for _, a := range doc.Accessors {
		a.Extras = nil
	}
	for _, a := range doc.Animations {
		a.Extras = nil
	}
	for _, b := range doc.Buffers {
		b.Extras = nil
	}
	for _, v := range doc.BufferViews {
		v.Extras = nil
	}
	for _, c := range doc.Cameras {
		c.Extras = nil
	}
	for _, img := range doc.Images {
		img.Extras = nil
	}
	for _, m := range doc.Materials {
		m.Extras = nil
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			pbr.Extras = nil
			if pbr.BaseColorTexture != nil {
				pbr.BaseColorTexture.Extras = nil
			}
			if pbr.MetallicRoughnessTexture != nil {
				pbr.MetallicRoughnessTexture.Extras = nil
			}
		}
		if m.NormalTexture != nil {
			m.NormalTexture.Extras = nil
		}
		if m.OcclusionTexture != nil {
			m.OcclusionTexture.Extras = nil
		}
		if m.EmissiveTexture != nil {
			m.EmissiveTexture.Extras = nil
		}
	}
	for _, mesh := range doc.Meshes {
		mesh.Extras = nil
		for _, prim := range mesh.Primitives {
			prim.Extras = nil
		}
	}
	for _, n := range doc.Nodes {
		n.Extras = nil
	}
	for _, s := range doc.Samplers {
		s.Extras = nil
	}
	for _, s := range doc.Scenes {
		s.Extras = nil
	}
	for _, s := range doc.Skins {
		s.Extras = nil
	}
	for _, t := range doc.Textures {
		t.Extras = nil
	}
}

// removeUnsupportedFeatures drops animations and morph targets, neither of
// which survives an SL mesh upload.
func removeUnsupportedFeatures(doc *gltf.Document) {
	doc.Animations = nil
	for _, mesh := range doc.Meshes {
		mesh.Weights = nil
		for _, prim := range mesh.Primitives {
			prim.Targets = nil
		}
	}
}
