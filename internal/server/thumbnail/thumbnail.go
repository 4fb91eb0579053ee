// Package thumbnail downscales uploaded images to small PNG previews.
package thumbnail

import (
	"bytes"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/mkarpenko/filekeeper/internal/common"
)

// TargetWidth is the thumbnail width in pixels; height follows the source
// aspect ratio.
const TargetWidth = 64

// Generate decodes data and returns a PNG scaled to TargetWidth. Images
// already narrower than TargetWidth are re-encoded at their original size,
// never upscaled. Undecodable input yields common.ErrorNotAnImage.
func Generate(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrorNotAnImage
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, common.ErrorNotAnImage
	}

	width, height := bounds.Dx(), bounds.Dy()
	if width > TargetWidth {
		height = height * TargetWidth / width
		if height < 1 {
			height = 1
		}
		width = TargetWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsImageContentType reports whether the declared content type is one we
// attempt to thumbnail.
func IsImageContentType(contentType string) bool {
	return len(contentType) > 6 && contentType[:6] == "image/"
}
