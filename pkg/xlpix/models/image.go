// Package models defines data structures for workbook image extraction.
package models

// ImageFormat is a normalized raster image format identifier, used as the
// output file extension. The empty value means the format could not be
// determined from the declared extension or the byte signature.
type ImageFormat string

const (
	FormatPNG     ImageFormat = "png"
	FormatJPG     ImageFormat = "jpg"
	FormatGIF     ImageFormat = "gif"
	FormatBMP     ImageFormat = "bmp"
	FormatTIFF    ImageFormat = "tif"
	FormatWEBP    ImageFormat = "webp"
	FormatUnknown ImageFormat = ""
)

// EmbeddedImage is a raster image discovered inside a workbook, together
// with the worksheet cell it is anchored to. Immutable after discovery.
type EmbeddedImage struct {
	// Ordinal is the stable identity assigned at discovery (1-based,
	// document order across drawing parts).
	Ordinal int `json:"ordinal"`
	// Row is the 1-based anchor row, or 0 when the image is not anchored
	// (media-listing fallback).
	Row int `json:"row"`
	// Col is the 1-based anchor column, or 0 when not anchored.
	Col int `json:"col"`
	// Format is the normalized image format (declared extension corrected
	// by byte-signature sniffing).
	Format ImageFormat `json:"format"`
	// Data holds the raw image bytes, written verbatim to the archive.
	Data []byte `json:"-"`
	// Source identifies where the image came from, e.g. "drawing:3" or
	// "xl/media/image2.png".
	Source string `json:"source"`
	// Width and Height are probed pixel dimensions; zero when unknown.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Anchored reports whether the image carries a usable cell anchor.
func (img EmbeddedImage) Anchored() bool {
	return img.Row > 0 && img.Col > 0
}
