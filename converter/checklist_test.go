package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteValidationChecklist(t *testing.T) {
	report := &ConversionReport{
		ModelName:           "TestAvatar",
		EstimatedHeightCm:   160,
		TargetHeightCm:      200,
		ComputedScaleFactor: 1.25,
		MeshCount:           1,
		BoneCount:           17,
		TotalVertices:       4,
		TotalPolygons:       1,
		FeeEstimate: UploadFeeEstimate{
			BeforeLindenDollar:      70,
			AfterResizeLindenDollar: 40,
			ReductionPercent:        42,
		},
	}

	path := filepath.Join(t.TempDir(), "checklist.md")
	if err := WriteValidationChecklist(path, "in.vrm", "out.glb", report); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		"# vrm2sl Final Validation Checklist",
		"- Input: `in.vrm`",
		"- Output: `out.glb`",
		"- Model: `TestAvatar`",
		"- Estimated height: `160.00 cm`",
		"- Target height: `200.00 cm`",
		"- Computed scale: `1.2500`",
		"- Texture fee estimate: `70L$ -> 40L$`",
		"## Validation Flow (Manual)",
		"- [ ] Open the converted `.glb` file in any 3D modeling tool.",
		"- [ ] Upload to Second Life and confirm avatar deformation is acceptable.",
		"- None",
	} {
		if !strings.Contains(text, want) {
			t.Error("checklist missing: ", want)
		}
	}
}

func TestWriteValidationChecklistIssues(t *testing.T) {
	report := &ConversionReport{
		Issues: []Issue{{
			Severity: SeverityWarning,
			Code:     CodeTextureOversize1024_2048,
			Message:  "Texture 'face' is 2048px",
		}},
	}

	path := filepath.Join(t.TempDir(), "checklist.md")
	if err := WriteValidationChecklist(path, "in.vrm", "out.glb", report); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	if !strings.Contains(text, "- [Warning] Texture 'face' is 2048px") {
		t.Error("issue line missing:\n", text)
	}
	if strings.Contains(text, "- None") {
		t.Error("issue list should replace the empty marker")
	}
}
