// Package vrm decodes the VRM humanoid avatar extensions of a glTF document.
//
// Both generations of the format are handled: the legacy "VRM" extension
// (VRM 0.x, written by VRoid Studio and UniVRM) and the current "VRMC_vrm"
// extension (VRM 1.0).
//
// https://vrm.dev/
// https://github.com/vrm-c/vrm-specification
package vrm

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

const (
	// ExtensionName is the glTF extension key of VRM 0.x.
	ExtensionName = "VRM"
	// ExtensionNameVRMC is the glTF extension key of VRM 1.0.
	ExtensionNameVRMC = "VRMC_vrm"
)

func init() {
	gltf.RegisterExtension(ExtensionName, Unmarshal)
	gltf.RegisterExtension(ExtensionNameVRMC, UnmarshalVRMC)
}

// Metadata is the meta block of VRM 0.x. VRoid Studio writes the model name
// to "title" but some exporters use "name", so both are kept.
type Metadata struct {
	Title   string   `json:"title"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Author  string   `json:"author"`
	Authors []string `json:"authors"`

	LicenseName     string `json:"licenseName"`
	OtherLicenseUrl string `json:"otherLicenseUrl"`
}

// Bone assigns a node to a humanoid bone slot (VRM 0.x).
type Bone struct {
	Bone             string  `json:"bone"`
	Node             int     `json:"node"`
	UseDefaultValues bool    `json:"useDefaultValues"`
	AxisLength       float32 `json:"axisLength"`
}

type Humanoid struct {
	Bones []*Bone `json:"humanBones"`
}

// VRMExt is the decoded "VRM" (0.x) extension block.
type VRMExt struct {
	Meta     Metadata `json:"meta"`
	Humanoid Humanoid `json:"humanoid"`

	FirstPerson        interface{} `json:"firstPerson"`
	BlendShapeMaster   interface{} `json:"blendShapeMaster"`
	SecondaryAnimation interface{} `json:"secondaryAnimation"`
	MaterialProperties interface{} `json:"materialProperties"`

	ExporterVersion string `json:"exporterVersion"`
}

func Unmarshal(data []byte) (interface{}, error) {
	var vrmext VRMExt
	if err := json.Unmarshal([]byte(data), &vrmext); err != nil {
		return nil, err
	}
	return &vrmext, nil
}

// MetadataVRMC is the meta block of VRM 1.0.
type MetadataVRMC struct {
	Name                 string   `json:"name"`
	Version              string   `json:"version"`
	Authors              []string `json:"authors"`
	CopyrightInformation string   `json:"copyrightInformation"`
	LicenseUrl           string   `json:"licenseUrl"`
}

// HumanBone assigns a node to a humanoid bone slot (VRM 1.0).
type HumanBone struct {
	Node int `json:"node"`
}

// HumanoidVRMC is the humanoid block of VRM 1.0, keyed by bone name.
type HumanoidVRMC struct {
	HumanBones map[string]*HumanBone `json:"humanBones"`
}

// VRMCExt is the decoded "VRMC_vrm" (1.0) extension block.
type VRMCExt struct {
	SpecVersion string       `json:"specVersion"`
	Meta        MetadataVRMC `json:"meta"`
	Humanoid    HumanoidVRMC `json:"humanoid"`
}

func UnmarshalVRMC(data []byte) (interface{}, error) {
	var vrmext VRMCExt
	if err := json.Unmarshal([]byte(data), &vrmext); err != nil {
		return nil, err
	}
	return &vrmext, nil
}
