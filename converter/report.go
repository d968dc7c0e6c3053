// Package converter turns a VRM humanoid avatar (GLB container) into a
// Second Life compatible rigged mesh: bones are renamed and reparented to
// the SL skeleton, bind rotations are normalized, skin weights are remapped
// and compacted, a uniform scale is baked into the geometry and the inverse
// bind matrices are regenerated from the final node transforms.
package converter

import (
	"fmt"

	"github.com/logue/vrm2sl/vrm"
)

// Severity of a reported issue.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
)

// Issue codes reported by Analyze and Convert.
const (
	CodeUnsupportedSource        = "UNSUPPORTED_SOURCE"
	CodeMissingRequiredBone      = "MISSING_REQUIRED_BONE"
	CodeInvalidBoneHierarchy     = "INVALID_BONE_HIERARCHY"
	CodeInvalidBoneNodeIndex     = "INVALID_BONE_NODE_INDEX"
	CodeVertexLimitExceeded      = "VERTEX_LIMIT_EXCEEDED"
	CodeTextureOversize1024_2048 = "TEXTURE_OVERSIZE_1024_2048"
	CodeTextureOversizeOver2048  = "TEXTURE_OVERSIZE_OVER_2048"
	CodeDiagnosticLogWritten     = "DIAGNOSTIC_LOG_WRITTEN"
)

// Issue is a single finding produced during analysis or conversion.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// TextureInfo records the pixel dimensions of one image of the document.
type TextureInfo struct {
	Index  int `json:"index"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UploadFeeEstimate sums the Second Life texture upload fee in L$ before
// and after the projected resize policy.
type UploadFeeEstimate struct {
	BeforeLindenDollar      int `json:"before_linden_dollar"`
	AfterResizeLindenDollar int `json:"after_resize_linden_dollar"`
	ReductionPercent        int `json:"reduction_percent"`
}

// MappedBone pairs a VRM humanoid bone name with its SL target name.
type MappedBone struct {
	VRM string `json:"vrm"`
	SL  string `json:"sl"`
}

// AnalysisReport is produced by Analyze without touching the input file.
type AnalysisReport struct {
	ModelName            string            `json:"model_name"`
	Author               string            `json:"author,omitempty"`
	EstimatedHeightCm    float32           `json:"estimated_height_cm"`
	BoneCount            int               `json:"bone_count"`
	MeshCount            int               `json:"mesh_count"`
	TotalVertices        int               `json:"total_vertices"`
	TotalPolygons        int               `json:"total_polygons"`
	MappedBones          []MappedBone      `json:"mapped_bones"`
	MissingRequiredBones []string          `json:"missing_required_bones"`
	TextureInfos         []TextureInfo     `json:"texture_infos"`
	FeeEstimate          UploadFeeEstimate `json:"fee_estimate"`
	Issues               []Issue           `json:"issues"`
}

// ConversionReport is returned by Convert after the output file is written.
type ConversionReport struct {
	ModelName                  string            `json:"model_name"`
	Author                     string            `json:"author,omitempty"`
	EstimatedHeightCm          float32           `json:"estimated_height_cm"`
	TargetHeightCm             float32           `json:"target_height_cm"`
	ComputedScaleFactor        float32           `json:"computed_scale_factor"`
	BoneCount                  int               `json:"bone_count"`
	MeshCount                  int               `json:"mesh_count"`
	TotalVertices              int               `json:"total_vertices"`
	TotalPolygons              int               `json:"total_polygons"`
	MappedBones                []MappedBone      `json:"mapped_bones"`
	TextureCount               int               `json:"texture_count"`
	TextureOver1024Count       int               `json:"texture_over_1024_count"`
	OutputTextureInfos         []TextureInfo     `json:"output_texture_infos"`
	OutputTextureOver1024Count int               `json:"output_texture_over_1024_count"`
	FeeEstimate                UploadFeeEstimate `json:"fee_estimate"`
	Issues                     []Issue           `json:"issues"`
}

// ResizeMethod selects the interpolation used for texture downscaling.
type ResizeMethod string

const (
	ResizeNearest  ResizeMethod = "nearest"
	ResizeBilinear ResizeMethod = "bilinear"
	ResizeBicubic  ResizeMethod = "bicubic"
	ResizeGaussian ResizeMethod = "gaussian"
	ResizeLanczos3 ResizeMethod = "lanczos3"
)

// ParseResizeMethod parses a method name as used in settings and CLI flags.
func ParseResizeMethod(s string) (ResizeMethod, error) {
	switch ResizeMethod(s) {
	case ResizeNearest, ResizeBilinear, ResizeBicubic, ResizeGaussian, ResizeLanczos3:
		return ResizeMethod(s), nil
	}
	return "", fmt.Errorf("unknown resize method: %q", s)
}

// ConvertOptions control scaling and texture policy for Analyze and Convert.
type ConvertOptions struct {
	// Target avatar height in centimeters.
	TargetHeightCm float32
	// Additional manual scale multiplier.
	ManualScale float32
	// Downscale oversized textures to a 1024px max edge on export.
	TextureAutoResize bool
	// Interpolation used when textures are resized.
	TextureResizeMethod ResizeMethod

	// Apply the upper-limb T-pose correction pass.
	TPoseCorrection bool
	// Optional bone-name override applied over the resolved humanoid map.
	BoneMap *vrm.MappingConfig
}

// DefaultOptions returns the conversion defaults (200cm target height,
// automatic 1024px texture resize with bilinear interpolation).
func DefaultOptions() *ConvertOptions {
	return &ConvertOptions{
		TargetHeightCm:      200,
		ManualScale:         1,
		TextureAutoResize:   true,
		TextureResizeMethod: ResizeBilinear,
	}
}
