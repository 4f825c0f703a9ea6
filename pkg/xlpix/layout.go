package xlpix

import (
	"strings"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// Bounds for the header scan. Headers live near the top-left of real-world
// sheets; scanning the full used range would be wasted work on large files.
const (
	layoutScanRows  = 60
	layoutScanCols  = 40
	densityScanRows = 10000
)

// LayoutVocab holds the header substrings that identify the extraction
// columns during auto-detection. Matching is case-insensitive on
// whitespace-collapsed header text.
type LayoutVocab struct {
	// ImageHeaders mark the column images are pasted into.
	ImageHeaders []string
	// LabelHeaders mark the column holding naming labels (vendor codes).
	LabelHeaders []string
	// FallbackHeaders mark the secondary label column. A cell matching
	// both label and fallback terms counts as a label header.
	FallbackHeaders []string
}

// DefaultLayoutVocab returns the stock header vocabulary.
func DefaultLayoutVocab() LayoutVocab {
	return LayoutVocab{
		ImageHeaders:    []string{"image", "picture", "photo"},
		LabelHeaders:    []string{"vendor"},
		FallbackHeaders: []string{"material"},
	}
}

// LayoutSource is the sheet view layout detection needs.
type LayoutSource interface {
	CellReader
	Dimensions() (rows, cols int, err error)
}

// DetectLayout scans the top of a sheet for header cells naming the image,
// label, and fallback columns, and derives the first data row. Columns
// without a matching header fall back to defaults: column 1 for images and
// the densest of the conventional label columns for labels.
func DetectLayout(cells LayoutSource, vocab LayoutVocab) (*models.Layout, error) {
	rows, cols, err := cells.Dimensions()
	if err != nil {
		return nil, err
	}
	scanRows := min(max(rows, 1), layoutScanRows)
	scanCols := min(max(cols, 1), layoutScanCols)

	layout := &models.Layout{}
	for row := 1; row <= scanRows; row++ {
		for col := 1; col <= scanCols; col++ {
			v, err := cells.CellValue(row, col)
			if err != nil {
				continue
			}
			header := headerText(v)
			if header == "" {
				continue
			}
			if layout.ImageHeaderRow == 0 && containsAny(header, vocab.ImageHeaders) {
				layout.ImageCol, layout.ImageHeaderRow = col, row
			}
			if layout.LabelHeaderRow == 0 && containsAny(header, vocab.LabelHeaders) {
				layout.LabelCol, layout.LabelHeaderRow = col, row
			}
			if layout.FallbackHeaderRow == 0 &&
				containsAny(header, vocab.FallbackHeaders) && !containsAny(header, vocab.LabelHeaders) {
				layout.FallbackCol, layout.FallbackHeaderRow = col, row
			}
		}
	}

	if layout.ImageCol == 0 {
		layout.ImageCol = 1
	}
	if layout.LabelCol == 0 {
		layout.LabelCol = densestColumn(cells, rows, cols)
	}
	if layout.FallbackCol == 0 && layout.LabelCol+2 <= cols {
		// Conventional sheet layout keeps the secondary label two columns
		// right of the primary one.
		layout.FallbackCol = layout.LabelCol + 2
	}

	layout.StartRow = 2
	for _, headerRow := range []int{layout.ImageHeaderRow, layout.LabelHeaderRow, layout.FallbackHeaderRow} {
		if headerRow >= layout.StartRow {
			layout.StartRow = headerRow + 1
		}
	}
	return layout, nil
}

// densestColumn scores the conventional label columns by non-empty cell
// count and returns the best one. Used when no label header was found.
func densestColumn(cells LayoutSource, rows, cols int) int {
	maxRow := min(max(rows, 1), densityScanRows)
	best, bestScore := 4, -1
	for _, col := range []int{4, 2, 3, 1} {
		if col > cols && cols > 0 {
			continue
		}
		score := 0
		for row := 2; row <= maxRow; row++ {
			if v, err := cells.CellValue(row, col); err == nil && strings.TrimSpace(v) != "" {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}

// headerText lowercases and whitespace-collapses a cell value for header
// matching.
func headerText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(s, term) {
			return true
		}
	}
	return false
}
