package converter

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/logue/vrm2sl/gltfutil"
	"github.com/logue/vrm2sl/vrm"
)

// resolveHumanBones reads the humanoid bone map of the document and applies
// the optional name-based override on top.
func resolveHumanBones(doc *gltf.Document, opts *ConvertOptions) map[string]int {
	bones := vrm.HumanBones(doc)
	if opts.BoneMap != nil {
		opts.BoneMap.Apply(doc, bones)
	}
	return bones
}

func countNamedNodes(doc *gltf.Document) int {
	names := map[string]bool{}
	for _, node := range doc.Nodes {
		if node.Name != "" {
			names[node.Name] = true
		}
	}
	return len(names)
}

// Analyze inspects a VRM file and reports everything the conversion would
// act on: bone mapping, hierarchy problems, mesh statistics, texture sizes
// and the projected SL upload fee. The input file is not modified.
func Analyze(inputPath string, opts *ConvertOptions) (*AnalysisReport, error) {
	doc, err := gltfutil.LoadGLB(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return analyzeDocument(doc, inputPath, opts)
}

func analyzeDocument(doc *gltf.Document, inputPath string, opts *ConvertOptions) (*AnalysisReport, error) {
	issues := validateSource(doc)

	bones := resolveHumanBones(doc, opts)
	missing := missingRequiredBones(bones)
	issues = append(issues, missingBoneIssues(missing)...)
	issues = append(issues, validateHierarchy(doc, bones)...)
	issues = append(issues, validateBoneIndices(doc, bones)...)

	vertices, polygons, meshIssues := meshStatistics(doc)
	issues = append(issues, meshIssues...)

	textureInfos, err := collectTextureInfos(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to read textures of %s: %w", inputPath, err)
	}
	issues = append(issues, textureOversizeIssues(textureInfos, opts.TextureAutoResize)...)

	height, ok := estimateHeight(doc)
	if !ok {
		height = 170
	}

	modelName := vrm.ModelName(doc)
	if modelName == "" {
		modelName = inputPath
	}

	return &AnalysisReport{
		ModelName:            modelName,
		Author:               vrm.Author(doc),
		EstimatedHeightCm:    height,
		BoneCount:            countNamedNodes(doc),
		MeshCount:            len(doc.Meshes),
		TotalVertices:        vertices,
		TotalPolygons:        polygons,
		MappedBones:          mappedBones(bones),
		MissingRequiredBones: missing,
		TextureInfos:         textureInfos,
		FeeEstimate:          estimateUploadFee(textureInfos, opts.TextureAutoResize),
		Issues:               issues,
	}, nil
}

// Convert runs the full conversion and writes the SL-oriented .glb to
// outputPath. Missing required bones or any Error-severity analysis issue
// abort before anything is written.
func Convert(inputPath, outputPath string, opts *ConvertOptions) (*ConversionReport, error) {
	analysis, err := Analyze(inputPath, opts)
	if err != nil {
		return nil, err
	}

	if len(analysis.MissingRequiredBones) > 0 {
		return nil, fmt.Errorf("Missing required bones: %s", strings.Join(analysis.MissingRequiredBones, ", "))
	}
	var fatal []string
	for _, issue := range analysis.Issues {
		if issue.Severity == SeverityError {
			fatal = append(fatal, issue.Message)
		}
	}
	if len(fatal) > 0 {
		return nil, errors.New(strings.Join(fatal, " / "))
	}

	scale := opts.ManualScale
	if analysis.EstimatedHeightCm > 0 {
		scale = (opts.TargetHeightCm / analysis.EstimatedHeightCm) * opts.ManualScale
	}

	if err := transformAndWrite(inputPath, outputPath, scale, opts); err != nil {
		return nil, err
	}

	issues := analysis.Issues
	diagnosticPath := diagnosticLogPath(outputPath)
	if err := writeConversionDiagnosticLog(outputPath, diagnosticPath, scale); err != nil {
		log.Println("Diagnostic log not written:", err)
	} else {
		issues = append(issues, Issue{
			Severity: SeverityInfo,
			Code:     CodeDiagnosticLogWritten,
			Message:  fmt.Sprintf("Conversion diagnostic log written: %s", diagnosticPath),
		})
	}

	outputTextureInfos, err := collectOutputTextureInfos(outputPath)
	if err != nil {
		return nil, err
	}

	return &ConversionReport{
		ModelName:                  analysis.ModelName,
		Author:                     analysis.Author,
		EstimatedHeightCm:          analysis.EstimatedHeightCm,
		TargetHeightCm:             opts.TargetHeightCm,
		ComputedScaleFactor:        scale,
		BoneCount:                  analysis.BoneCount,
		MeshCount:                  analysis.MeshCount,
		TotalVertices:              analysis.TotalVertices,
		TotalPolygons:              analysis.TotalPolygons,
		MappedBones:                analysis.MappedBones,
		TextureCount:               len(analysis.TextureInfos),
		TextureOver1024Count:       countOver1024(analysis.TextureInfos),
		OutputTextureInfos:         outputTextureInfos,
		OutputTextureOver1024Count: countOver1024(outputTextureInfos),
		FeeEstimate:                analysis.FeeEstimate,
		Issues:                     issues,
	}, nil
}

func countOver1024(infos []TextureInfo) int {
	n := 0
	for _, info := range infos {
		if info.Width > 1024 || info.Height > 1024 {
			n++
		}
	}
	return n
}

func transformAndWrite(inputPath, outputPath string, scale float32, opts *ConvertOptions) error {
	doc, err := gltfutil.LoadGLB(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	bones := resolveHumanBones(doc, opts)

	renameBones(doc, bones)
	if err := ensureTargetBones(doc, bones); err != nil {
		return err
	}
	reconstructHierarchy(doc, bones)
	// SL reads bone bind positions from the inverse bind matrix translations
	// and applies its own orientations, so every mapped bone must carry an
	// identity rotation while keeping its world position.
	normalizeBindRotations(doc, bones)
	if opts.TPoseCorrection {
		if err := applyTPoseCorrection(doc); err != nil {
			return err
		}
	}
	remapUnmappedWeights(doc, bones)
	compactSkins(doc)
	identityRoot := promotePelvisToSceneRoot(doc, bones)
	setSkinSkeletonRoot(doc, bones, identityRoot)
	// The scale goes into the geometry itself rather than a root node scale,
	// so the regenerated IBMs below are already in the final scaled space.
	bakeScale(doc, scale)
	regenerateInverseBindMatrices(doc)
	stripVRMExtensions(doc)
	removeUnsupportedFeatures(doc)
	if err := resizeEmbeddedTextures(doc, opts.TextureAutoResize, opts.TextureResizeMethod); err != nil {
		return err
	}
	if err := gltfutil.SaveGLB(doc, outputPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
