package converter

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/geom"
	"github.com/logue/vrm2sl/gltfutil"
)

// The diagnostic log captures the skeleton state of the written output so
// mismatches between joint worlds and bind matrices can be inspected without
// reimporting the file into a viewer.

type meshSkinLink struct {
	NodeIndex int     `json:"node_index"`
	NodeName  *string `json:"node_name"`
	SkinIndex *int    `json:"skin_index"`
}

type jointDiagnostic struct {
	Slot                 int         `json:"slot"`
	NodeIndex            int         `json:"node_index"`
	NodeName             *string     `json:"node_name"`
	ParentIndex          *int        `json:"parent_index"`
	ParentName           *string     `json:"parent_name"`
	LocalTranslation     [3]float32  `json:"local_translation"`
	LocalRotation        [4]float32  `json:"local_rotation"`
	LocalRotationDeg     [3]float32  `json:"local_rotation_deg"`
	WorldTranslation     [3]float32  `json:"world_translation"`
	IBMTranslation       *[3]float32 `json:"ibm_translation"`
	BindWorldTranslation *[3]float32 `json:"bind_world_translation"`
	WorldBindDistance    *float32    `json:"world_bind_distance"`
}

type skinDiagnostic struct {
	SkinIndex           int               `json:"skin_index"`
	SkeletonIndex       *int              `json:"skeleton_index"`
	SkeletonName        *string           `json:"skeleton_name"`
	JointsCount         int               `json:"joints_count"`
	InverseBindAccessor *int              `json:"inverse_bind_accessor"`
	Joints              []jointDiagnostic `json:"joints"`
}

type conversionDiagnosticLog struct {
	OutputPath        string           `json:"output_path"`
	ScaleFactor       float32          `json:"scale_factor"`
	NodeCount         int              `json:"node_count"`
	SkinCount         int              `json:"skin_count"`
	MeshNodesWithSkin []meshSkinLink   `json:"mesh_nodes_with_skin"`
	Skins             []skinDiagnostic `json:"skins"`
}

func diagnosticLogPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".diagnostic.json"
}

func nodeNameRef(doc *gltf.Document, index int) *string {
	if index < 0 || index >= len(doc.Nodes) || doc.Nodes[index].Name == "" {
		return nil
	}
	name := doc.Nodes[index].Name
	return &name
}

func writeConversionDiagnosticLog(outputPath, diagnosticPath string, scaleFactor float32) error {
	doc, err := gltfutil.LoadGLB(outputPath)
	if err != nil {
		return fmt.Errorf("failed to read output file %s: %w", outputPath, err)
	}

	parents := gltfutil.ParentMap(doc)
	worlds := gltfutil.WorldMatrices(doc)

	var meshLinks []meshSkinLink
	for i, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		link := meshSkinLink{NodeIndex: i, NodeName: nodeNameRef(doc, i)}
		if node.Skin != nil {
			skin := int(*node.Skin)
			link.SkinIndex = &skin
		}
		meshLinks = append(meshLinks, link)
	}

	skins := make([]skinDiagnostic, 0, len(doc.Skins))
	for skinIndex, skin := range doc.Skins {
		out := skinDiagnostic{SkinIndex: skinIndex, JointsCount: len(skin.Joints)}
		if skin.Skeleton != nil {
			skeleton := int(*skin.Skeleton)
			out.SkeletonIndex = &skeleton
			out.SkeletonName = nodeNameRef(doc, skeleton)
		}

		var ibm *gltfutil.AccessorLayout
		if skin.InverseBindMatrices != nil {
			accessor := int(*skin.InverseBindMatrices)
			out.InverseBindAccessor = &accessor
			l, err := gltfutil.ResolveLayout(doc, *skin.InverseBindMatrices)
			if err == nil && l.ComponentType == gltf.ComponentFloat && l.Type == gltf.AccessorMat4 {
				ibm = l
			}
		}

		for slot, joint := range skin.Joints {
			nodeIndex := int(joint)
			entry := jointDiagnostic{
				Slot:             slot,
				NodeIndex:        nodeIndex,
				NodeName:         nodeNameRef(doc, nodeIndex),
				LocalRotation:    [4]float32{0, 0, 0, 1},
				WorldTranslation: [3]float32{},
			}
			if nodeIndex < len(parents) {
				if p := parents[nodeIndex]; p >= 0 {
					entry.ParentIndex = &p
					entry.ParentName = nodeNameRef(doc, p)
				}
			}
			if nodeIndex < len(doc.Nodes) {
				node := doc.Nodes[nodeIndex]
				local := gltfutil.LocalMatrix(node).Translation()
				entry.LocalTranslation = [3]float32{local.X, local.Y, local.Z}
				if node.Rotation != [4]float32{} {
					entry.LocalRotation = node.Rotation
				}
				world := worlds[nodeIndex].Translation()
				entry.WorldTranslation = [3]float32{world.X, world.Y, world.Z}
			}
			const radToDeg = 180 / math.Pi
			euler := geom.NewEulerFromQuaternion(
				geom.NewQuaternionFromArray(entry.LocalRotation), geom.RotationOrderXYZ)
			entry.LocalRotationDeg = [3]float32{
				euler.X * radToDeg, euler.Y * radToDeg, euler.Z * radToDeg}
			if ibm != nil && slot < int(ibm.Count) {
				mat := ibm.Mat4(slot)
				t := mat.Translation()
				entry.IBMTranslation = &[3]float32{t.X, t.Y, t.Z}
				if mat.Det() != 0 {
					bind := mat.Inverse().Translation()
					entry.BindWorldTranslation = &[3]float32{bind.X, bind.Y, bind.Z}
					world := geom.NewVector3(
						entry.WorldTranslation[0],
						entry.WorldTranslation[1],
						entry.WorldTranslation[2],
					)
					distance := world.Sub(bind).Len()
					entry.WorldBindDistance = &distance
				}
			}
			out.Joints = append(out.Joints, entry)
		}
		skins = append(skins, out)
	}

	log := conversionDiagnosticLog{
		OutputPath:        outputPath,
		ScaleFactor:       scaleFactor,
		NodeCount:         len(doc.Nodes),
		SkinCount:         len(skins),
		MeshNodesWithSkin: meshLinks,
		Skins:             skins,
	}

	data, err := json.MarshalIndent(&log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize conversion diagnostic JSON: %w", err)
	}
	if err := os.WriteFile(diagnosticPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write conversion diagnostic log %s: %w", diagnosticPath, err)
	}
	return nil
}

// collectOutputTextureInfos reads texture dimensions back from a written GLB.
func collectOutputTextureInfos(outputPath string) ([]TextureInfo, error) {
	doc, err := gltfutil.LoadGLB(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file %s: %w", outputPath, err)
	}
	return collectTextureInfos(doc)
}

// DumpTextures decodes every embedded image and writes it into dir as a
// lossless WebP for inspection.
func DumpTextures(doc *gltf.Document, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create texture dump dir %s: %w", dir, err)
	}
	for i, img := range doc.Images {
		if img.BufferView == nil {
			continue
		}
		data := bufferViewBytes(doc, *img.BufferView)
		if data == nil {
			continue
		}
		decoded, err := decodeEmbeddedImage(data)
		if err != nil {
			return fmt.Errorf("failed to decode embedded texture view %d: %w", *img.BufferView, err)
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image_%d", i)
		}
		path := filepath.Join(dir, name+".webp")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create texture dump file %s: %w", path, err)
		}
		if err := nativewebp.Encode(f, decoded, nil); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode texture dump %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
