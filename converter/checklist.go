package converter

import (
	"fmt"
	"os"
	"strings"
)

// WriteValidationChecklist writes a markdown checklist for manually
// verifying the converted file in a modeling tool before uploading it to
// Second Life.
func WriteValidationChecklist(checklistPath, inputPath, outputPath string, report *ConversionReport) error {
	var b strings.Builder
	b.WriteString("# vrm2sl Final Validation Checklist\n\n")
	b.WriteString("## Conversion Summary\n\n")
	fmt.Fprintf(&b, "- Input: `%s`\n", inputPath)
	fmt.Fprintf(&b, "- Output: `%s`\n", outputPath)
	fmt.Fprintf(&b, "- Model: `%s`\n", report.ModelName)
	fmt.Fprintf(&b, "- Estimated height: `%.2f cm`\n", report.EstimatedHeightCm)
	fmt.Fprintf(&b, "- Target height: `%.2f cm`\n", report.TargetHeightCm)
	fmt.Fprintf(&b, "- Computed scale: `%.4f`\n", report.ComputedScaleFactor)
	fmt.Fprintf(&b, "- Meshes/Bones: `%d` / `%d`\n", report.MeshCount, report.BoneCount)
	fmt.Fprintf(&b, "- Vertices/Polygons: `%d` / `%d`\n", report.TotalVertices, report.TotalPolygons)
	fmt.Fprintf(&b, "- Texture fee estimate: `%dL$ -> %dL$`\n\n",
		report.FeeEstimate.BeforeLindenDollar, report.FeeEstimate.AfterResizeLindenDollar)

	b.WriteString("## Validation Flow (Manual)\n\n")
	b.WriteString("- [ ] Open the converted `.glb` file in any 3D modeling tool.\n")
	b.WriteString("- [ ] Confirm armature loads without collapse/crash.\n")
	b.WriteString("- [ ] Verify T-pose-like arm orientation (no severe A-pose residual).\n")
	b.WriteString("- [ ] Verify core hierarchy shape (pelvis->torso->chest->neck->head, limbs).\n")
	b.WriteString("- [ ] Verify eye/jaw/finger Bento bones exist when source contained them.\n")
	b.WriteString("- [ ] Verify there is no obvious skin explosion or detached limbs.\n")
	b.WriteString("- [ ] Upload to Second Life and confirm avatar deformation is acceptable.\n")
	b.WriteString("- [ ] Confirm idle/walk behavior has no critical breakage in-world.\n\n")

	b.WriteString("## Issues from Conversion\n\n")
	if len(report.Issues) == 0 {
		b.WriteString("- None\n")
	} else {
		for _, issue := range report.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", issue.Severity, issue.Message)
		}
	}

	if err := os.WriteFile(checklistPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write validation checklist %s: %w", checklistPath, err)
	}
	return nil
}
