package xlpix

import (
	"fmt"
	"sort"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// IgnoredImage records an image excluded from the index, with the reason.
// Ignored images are data for diagnostics, not errors.
type IgnoredImage struct {
	Ordinal int
	Row     int
	Col     int
	Reason  string
}

// AnchorIndex maps target row numbers to the images anchored there in the
// designated image column. Within a row, discovery order is preserved so
// stacked images keep a deterministic sequence.
type AnchorIndex struct {
	byRow   map[int][]models.EmbeddedImage
	rows    []int
	ignored []IgnoredImage
}

// BuildIndex filters images to those anchored in imageCol at or below
// startRow and groups them by row. Images anchored elsewhere, above the
// data start, or not anchored at all are recorded as ignored. An empty
// input yields an empty index; there are no failure conditions.
func BuildIndex(images []models.EmbeddedImage, imageCol, startRow int) *AnchorIndex {
	if startRow < 1 {
		startRow = 1
	}
	idx := &AnchorIndex{byRow: make(map[int][]models.EmbeddedImage)}
	for _, img := range images {
		switch {
		case !img.Anchored():
			idx.ignored = append(idx.ignored, IgnoredImage{
				Ordinal: img.Ordinal,
				Reason:  "no cell anchor",
			})
		case img.Col != imageCol:
			idx.ignored = append(idx.ignored, IgnoredImage{
				Ordinal: img.Ordinal,
				Row:     img.Row,
				Col:     img.Col,
				Reason:  fmt.Sprintf("anchored in column %d, not the image column %d", img.Col, imageCol),
			})
		case img.Row < startRow:
			idx.ignored = append(idx.ignored, IgnoredImage{
				Ordinal: img.Ordinal,
				Row:     img.Row,
				Col:     img.Col,
				Reason:  fmt.Sprintf("anchored above the data start row %d", startRow),
			})
		default:
			if _, seen := idx.byRow[img.Row]; !seen {
				idx.rows = append(idx.rows, img.Row)
			}
			idx.byRow[img.Row] = append(idx.byRow[img.Row], img)
		}
	}
	sort.Ints(idx.rows)
	return idx
}

// Rows returns the distinct target rows in ascending order.
func (idx *AnchorIndex) Rows() []int {
	return idx.rows
}

// ImagesAt returns the images anchored at row, in discovery order.
func (idx *AnchorIndex) ImagesAt(row int) []models.EmbeddedImage {
	return idx.byRow[row]
}

// Ignored returns the images excluded from the index.
func (idx *AnchorIndex) Ignored() []IgnoredImage {
	return idx.ignored
}

// ImageCount returns the total number of indexed images.
func (idx *AnchorIndex) ImageCount() int {
	n := 0
	for _, imgs := range idx.byRow {
		n += len(imgs)
	}
	return n
}

// ImagesByOrdinal returns the indexed images keyed by identity, for the
// archive builder.
func (idx *AnchorIndex) ImagesByOrdinal() map[int]models.EmbeddedImage {
	m := make(map[int]models.EmbeddedImage, idx.ImageCount())
	for _, imgs := range idx.byRow {
		for _, img := range imgs {
			m[img.Ordinal] = img
		}
	}
	return m
}
