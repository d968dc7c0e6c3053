package converter

import (
	"bytes"
	"fmt"
	"math"

	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

var (
	gaussianKernel = &draw.Kernel{Support: 3, At: func(t float64) float64 {
		return math.Exp(-t * t / 2)
	}}
	lanczos3Kernel = &draw.Kernel{Support: 3, At: func(t float64) float64 {
		if t == 0 {
			return 1
		}
		t *= math.Pi
		return 3 * math.Sin(t) * math.Sin(t/3) / (t * t)
	}}
)

func (m ResizeMethod) scaler() draw.Scaler {
	switch m {
	case ResizeNearest:
		return draw.NearestNeighbor
	case ResizeBicubic:
		return draw.CatmullRom
	case ResizeGaussian:
		return gaussianKernel
	case ResizeLanczos3:
		return lanczos3Kernel
	}
	return draw.BiLinear
}

// feePerTexture returns the SL upload fee band in L$ for one texture.
func feePerTexture(width, height int) int {
	switch maxDim := max(width, height); {
	case maxDim <= 512:
		return 10
	case maxDim <= 1024:
		return 20
	case maxDim <= 2048:
		return 50
	}
	return 100
}

// textureTargetCap returns the longest edge the export policy allows for a
// texture whose current longest edge is maxDim.
func textureTargetCap(maxDim int, autoResize bool) int {
	switch {
	case maxDim <= 1024:
		return 1024
	case maxDim <= 2048:
		if autoResize {
			return 1024
		}
		return maxDim
	case autoResize:
		return 1024
	}
	return 2048
}

// projectedTextureSize predicts a texture's dimensions after the export
// resize policy. Aspect ratio is preserved and each dimension rounds to at
// least one pixel.
func projectedTextureSize(width, height int, autoResize bool) (int, int) {
	maxDim := max(width, height)
	target := textureTargetCap(maxDim, autoResize)
	if maxDim <= target {
		return width, height
	}
	scale := float64(target) / float64(maxDim)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// estimateUploadFee totals the texture upload fee before and after the
// export resize policy.
func estimateUploadFee(infos []TextureInfo, autoResize bool) UploadFeeEstimate {
	before, after := 0, 0
	for _, tex := range infos {
		before += feePerTexture(tex.Width, tex.Height)
		w, h := projectedTextureSize(tex.Width, tex.Height, autoResize)
		after += feePerTexture(w, h)
	}
	reduction := 0
	if before > 0 {
		reduction = (before - after) * 100 / before
	}
	return UploadFeeEstimate{
		BeforeLindenDollar:      before,
		AfterResizeLindenDollar: after,
		ReductionPercent:        reduction,
	}
}

// textureOversizeIssues warns about textures beyond the SL-friendly sizes.
func textureOversizeIssues(infos []TextureInfo, autoResize bool) []Issue {
	medium, large := 0, 0
	for _, tex := range infos {
		switch maxDim := max(tex.Width, tex.Height); {
		case maxDim > 2048:
			large++
		case maxDim > 1024:
			medium++
		}
	}
	var issues []Issue
	if medium > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeTextureOversize1024_2048,
			Message: fmt.Sprintf("Detected %d texture(s) with max edge between 1025 and 2048. "+
				"Enable the 1024px resize option if you want to downscale them", medium),
		})
	}
	if large > 0 {
		limit := 2048
		if autoResize {
			limit = 1024
		}
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeTextureOversizeOver2048,
			Message:  fmt.Sprintf("Detected %d texture(s) larger than 2048. They will be resized to a %dpx max on export", large, limit),
		})
	}
	return issues
}

func bufferViewBytes(doc *gltf.Document, view uint32) []byte {
	if int(view) >= len(doc.BufferViews) {
		return nil
	}
	v := doc.BufferViews[view]
	if int(v.Buffer) >= len(doc.Buffers) {
		return nil
	}
	data := doc.Buffers[v.Buffer].Data
	end := uint64(v.ByteOffset) + uint64(v.ByteLength)
	if end > uint64(len(data)) {
		return nil
	}
	return data[v.ByteOffset:end]
}

func decodeEmbeddedImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// TGA has no magic bytes, so format sniffing cannot find it.
		if tgaImg, tgaErr := tga.Decode(bytes.NewReader(data)); tgaErr == nil {
			return tgaImg, nil
		}
		return nil, err
	}
	return img, nil
}

// collectTextureInfos reads the dimensions of every embedded image.
func collectTextureInfos(doc *gltf.Document) ([]TextureInfo, error) {
	infos := make([]TextureInfo, 0, len(doc.Images))
	for i, img := range doc.Images {
		if img.BufferView == nil {
			return nil, fmt.Errorf("image %d is not embedded in the binary chunk", i)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(bufferViewBytes(doc, *img.BufferView)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded texture view %d: %w", *img.BufferView, err)
		}
		infos = append(infos, TextureInfo{Index: i, Width: cfg.Width, Height: cfg.Height})
	}
	return infos, nil
}

// resizeEmbeddedTextures applies the texture size policy to every embedded
// png/jpeg image, then rebuilds the binary chunk with every buffer view laid
// out on a 4-byte boundary. The rebuild runs even when no image changed, so
// view offsets always come out normalized.
func resizeEmbeddedTextures(doc *gltf.Document, autoResize bool, method ResizeMethod) error {
	if len(doc.BufferViews) == 0 || len(doc.Buffers) == 0 {
		return nil
	}
	bin := doc.Buffers[0].Data

	segments := make([][]byte, len(doc.BufferViews))
	for i, view := range doc.BufferViews {
		end := uint64(view.ByteOffset) + uint64(view.ByteLength)
		if end <= uint64(len(bin)) {
			segments[i] = append([]byte(nil), bin[view.ByteOffset:end]...)
		}
	}

	for _, img := range doc.Images {
		if img.BufferView == nil || int(*img.BufferView) >= len(segments) {
			continue
		}
		view := int(*img.BufferView)
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		var format string
		switch mime {
		case "image/png":
			format = "image/png"
		case "image/jpeg", "image/jpg":
			format = "image/jpeg"
		default:
			continue
		}

		decoded, err := decodeEmbeddedImage(segments[view])
		if err != nil {
			return fmt.Errorf("failed to decode embedded texture view %d: %w", view, err)
		}
		rect := decoded.Bounds()
		w, h := projectedTextureSize(rect.Dx(), rect.Dy(), autoResize)
		if w != rect.Dx() || h != rect.Dy() {
			dst := image.NewRGBA(image.Rect(0, 0, w, h))
			method.scaler().Scale(dst, dst.Bounds(), decoded, rect, draw.Over, nil)
			decoded = dst
		}

		buf := new(bytes.Buffer)
		if format == "image/png" {
			err = png.Encode(buf, decoded)
		} else {
			err = jpeg.Encode(buf, decoded, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to encode resized embedded texture view %d as %s: %w", view, mime, err)
		}
		segments[view] = buf.Bytes()
		img.MimeType = format
	}

	rebuilt := make([]byte, 0, len(bin))
	for i, seg := range segments {
		for len(rebuilt)%4 != 0 {
			rebuilt = append(rebuilt, 0)
		}
		doc.BufferViews[i].ByteOffset = uint32(len(rebuilt))
		doc.BufferViews[i].ByteLength = uint32(len(seg))
		rebuilt = append(rebuilt, seg...)
	}
	doc.Buffers[0].Data = rebuilt
	doc.Buffers[0].ByteLength = uint32(len(rebuilt))
	return nil
}
