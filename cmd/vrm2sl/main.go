package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/logue/vrm2sl/converter"
	"github.com/logue/vrm2sl/gltfutil"
	"github.com/logue/vrm2sl/project"
	"github.com/logue/vrm2sl/vrm"
)

func defaultOutputFile(input string) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := input[0 : len(input)-len(ext)]
	if ext == ".vrm" {
		return base + ".glb"
	}
	return base + "_sl.glb"
}

func writeReportJSON(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func printIssues(p *message.Printer, issues []converter.Issue) {
	for _, issue := range issues {
		p.Printf("- [%s] %s\n", issue.Severity, issue.Message)
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.vrm [output.glb]\n", os.Args[0])
		flag.PrintDefaults()
	}
	height := flag.Float64("height", 0, "target avatar height in cm (0:settings)")
	scale := flag.Float64("scale", 0, "manual scale multiplier (0:settings)")
	resize := flag.String("resize", "", "auto resize oversized textures (on|off)")
	resizeMethod := flag.String("resize-method", "", "nearest|bilinear|bicubic|gaussian|lanczos3")
	analyzeOnly := flag.Bool("analyze", false, "analyze the input and exit")
	reportPath := flag.String("report", "", "write the report as JSON")
	checklistPath := flag.String("checklist", "", "write a manual validation checklist (markdown)")
	boneMap := flag.String("bonemap", "", "bone mapping config for models without humanoid metadata")
	dumpTex := flag.String("dumptex", "", "dump embedded input textures into a directory as WebP")
	tpose := flag.Bool("tpose", false, "force identity rotations on the upper limb bones")
	loadSettings := flag.String("load-settings", "", "project settings file")
	saveSettings := flag.String("save-settings", "", "save the effective project settings")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	input := flag.Arg(0)
	output := flag.Arg(1)
	if output == "" {
		output = defaultOutputFile(input)
	}

	settings := project.DefaultSettings()
	if *loadSettings != "" {
		s, err := project.Load(*loadSettings)
		if err != nil {
			log.Fatal(err)
		}
		settings = s
	}
	if *height > 0 {
		settings.TargetHeightCm = float32(*height)
	}
	if *scale > 0 {
		settings.ManualScale = float32(*scale)
	}
	switch *resize {
	case "":
	case "on":
		settings.TextureAutoResize = true
	case "off":
		settings.TextureAutoResize = false
	default:
		log.Fatal("-resize must be on or off")
	}
	if *resizeMethod != "" {
		method, err := converter.ParseResizeMethod(*resizeMethod)
		if err != nil {
			log.Fatal(err)
		}
		settings.TextureResizeMethod = method
	}
	settings.InputPath = input
	settings.OutputPath = output

	opts := settings.Options()
	opts.TPoseCorrection = *tpose

	confFile := *boneMap
	if confFile == "" {
		confFile = input[0:len(input)-len(filepath.Ext(input))] + ".bonemap.yaml"
		if _, err := os.Stat(confFile); err != nil {
			confFile = ""
		}
	}
	if confFile != "" {
		conf, err := vrm.LoadMappingConfig(confFile)
		if err != nil {
			log.Fatal(err)
		}
		opts.BoneMap = conf
	}

	if *dumpTex != "" {
		doc, err := gltfutil.LoadGLB(input)
		if err != nil {
			log.Fatal(err)
		}
		if err := converter.DumpTextures(doc, *dumpTex); err != nil {
			log.Fatal(err)
		}
	}

	p := message.NewPrinter(language.English)

	if *analyzeOnly {
		analysis, err := converter.Analyze(input, opts)
		if err != nil {
			log.Fatal(err)
		}
		if *reportPath != "" {
			if err := writeReportJSON(*reportPath, analysis); err != nil {
				log.Fatal(err)
			}
		}
		author := analysis.Author
		if author == "" {
			author = "Unknown"
		}
		p.Printf("Model: %s\n", analysis.ModelName)
		p.Printf("Author: %s\n", author)
		p.Printf("Estimated height: %.2fcm\n", analysis.EstimatedHeightCm)
		p.Printf("Meshes: %d, Bones: %d, Vertices: %d, Polygons: %d\n",
			analysis.MeshCount, analysis.BoneCount, analysis.TotalVertices, analysis.TotalPolygons)
		p.Printf("Texture fee estimate: %dL$ -> %dL$ (%d%%)\n",
			analysis.FeeEstimate.BeforeLindenDollar,
			analysis.FeeEstimate.AfterResizeLindenDollar,
			analysis.FeeEstimate.ReductionPercent)
		p.Printf("Issues: %d\n", len(analysis.Issues))
		printIssues(p, analysis.Issues)
		if *saveSettings != "" {
			if err := project.Save(*saveSettings, settings); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	log.Print("out: ", output)
	report, err := converter.Convert(input, output, opts)
	if err != nil {
		log.Fatal(err)
	}
	if *reportPath != "" {
		if err := writeReportJSON(*reportPath, report); err != nil {
			log.Fatal(err)
		}
	}
	if *checklistPath != "" {
		if err := converter.WriteValidationChecklist(*checklistPath, input, output, report); err != nil {
			log.Fatal(err)
		}
	}

	p.Printf("Model: %s\n", report.ModelName)
	p.Printf("Height: %.2fcm -> %.2fcm (scale %.4f)\n",
		report.EstimatedHeightCm, report.TargetHeightCm, report.ComputedScaleFactor)
	p.Printf("Meshes: %d, Bones: %d, Vertices: %d, Polygons: %d\n",
		report.MeshCount, report.BoneCount, report.TotalVertices, report.TotalPolygons)
	p.Printf("Textures: %d (>1024px: %d -> %d)\n",
		report.TextureCount, report.TextureOver1024Count, report.OutputTextureOver1024Count)
	p.Printf("Texture fee estimate: %dL$ -> %dL$ (%d%%)\n",
		report.FeeEstimate.BeforeLindenDollar,
		report.FeeEstimate.AfterResizeLindenDollar,
		report.FeeEstimate.ReductionPercent)
	p.Printf("Mapped bones: %d\n", len(report.MappedBones))
	if len(report.Issues) > 0 {
		p.Printf("Issues: %d\n", len(report.Issues))
		printIssues(p, report.Issues)
	}

	if *saveSettings != "" {
		if err := project.Save(*saveSettings, settings); err != nil {
			log.Fatal(err)
		}
	}
}
