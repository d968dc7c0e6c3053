package converter

import (
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/gltfutil"
	"github.com/logue/vrm2sl/sl"
	"github.com/logue/vrm2sl/vrm"
)

// validateSource flags inputs that do not look like VRoid Studio exports.
// Either a VRoid generator string or a VRM extension at the document root
// is accepted.
func validateSource(doc *gltf.Document) []Issue {
	if strings.Contains(strings.ToLower(doc.Asset.Generator), "vroid") || vrm.IsVRM(doc) {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Code:     CodeUnsupportedSource,
		Message:  "Only standard VRoid Studio VRM files are supported",
	}}
}

// missingRequiredBones lists required humanoid bones absent from the resolved
// bone map, in table order.
func missingRequiredBones(bones map[string]int) []string {
	var missing []string
	for _, name := range sl.RequiredBones {
		if _, ok := bones[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func missingBoneIssues(missing []string) []Issue {
	issues := make([]Issue, 0, len(missing))
	for _, name := range missing {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeMissingRequiredBone,
			Message:  fmt.Sprintf("Required bone '%s' was not found", name),
		})
	}
	return issues
}

// validateHierarchy checks the required parent-child relations on the resolved
// bones. Relations with an unresolved endpoint are skipped here; missing
// required bones are reported separately.
func validateHierarchy(doc *gltf.Document, bones map[string]int) []Issue {
	parents := gltfutil.ParentMap(doc)
	var issues []Issue
	for _, rel := range sl.RequiredParentRelations {
		child, okChild := bones[rel.Child]
		expected, okParent := bones[rel.Parent]
		if !okChild || !okParent || child < 0 || child >= len(parents) {
			continue
		}
		actual := parents[child]
		if actual < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     CodeInvalidBoneHierarchy,
				Message:  fmt.Sprintf("Non-standard bone hierarchy: parent for '%s' is not set", rel.Child),
			})
			continue
		}
		if actual == expected {
			continue
		}
		if rel.Child == "neck" {
			// The neck hangs off upperChest when the source has one.
			if upper, ok := bones["upperChest"]; ok && actual == upper {
				continue
			}
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeInvalidBoneHierarchy,
			Message:  fmt.Sprintf("Non-standard bone hierarchy: '%s' parent index is %d (expected %d)", rel.Child, actual, expected),
		})
	}
	return issues
}

// validateBoneIndices rejects bone map entries that point outside the node
// array before any node is renamed or reparented.
func validateBoneIndices(doc *gltf.Document, bones map[string]int) []Issue {
	var issues []Issue
	for _, pair := range sl.AllBones() {
		idx, ok := bones[pair.VRM]
		if !ok {
			continue
		}
		if idx < 0 || idx >= len(doc.Nodes) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     CodeInvalidBoneNodeIndex,
				Message: fmt.Sprintf("Bone conversion precondition failed: '%s' points to invalid node index %d (node count: %d)",
					pair.VRM, idx, len(doc.Nodes)),
			})
		}
	}
	return issues
}

// mappedBones lists the resolved VRM to SL pairs in table order.
func mappedBones(bones map[string]int) []MappedBone {
	var mapped []MappedBone
	for _, pair := range sl.AllBones() {
		if _, ok := bones[pair.VRM]; ok {
			mapped = append(mapped, MappedBone{VRM: pair.VRM, SL: pair.SL})
		}
	}
	return mapped
}
