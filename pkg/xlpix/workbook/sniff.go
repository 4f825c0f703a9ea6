package workbook

import (
	"bytes"
	"image"
	"strings"

	"github.com/ujiie/xlpix/pkg/xlpix/models"

	// Raster decoders registered for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DetectFormat sniffs the raster format from the leading byte signature.
// Returns FormatUnknown when no known signature matches.
func DetectFormat(data []byte) models.ImageFormat {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return models.FormatPNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return models.FormatJPG
	case bytes.HasPrefix(data, []byte("GIF8")):
		return models.FormatGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return models.FormatBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return models.FormatTIFF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return models.FormatWEBP
	}
	return models.FormatUnknown
}

// NormalizeFormat reconciles a declared extension with the byte signature.
// A recognized extension wins (with "jpeg" folded to "jpg"); otherwise the
// signature decides. Unknown both ways yields FormatUnknown and the image is
// later skipped with a warning rather than written under a guessed name.
func NormalizeFormat(ext string, data []byte) models.ImageFormat {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch ext {
	case "jpeg", "jpg":
		return models.FormatJPG
	case "png":
		return models.FormatPNG
	case "gif":
		return models.FormatGIF
	case "bmp":
		return models.FormatBMP
	case "tif", "tiff":
		return models.FormatTIFF
	case "webp":
		return models.FormatWEBP
	}
	return DetectFormat(data)
}

// ProbeDimensions decodes just enough of the image to learn its pixel size.
// Best effort: any decode failure reports zero dimensions.
func ProbeDimensions(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
