package xlpix

import (
	"testing"
)

func TestDetectLayoutFromHeaders(t *testing.T) {
	cells := stubCells{cells: map[[2]int]string{
		{1, 1}: "Image",
		{1, 4}: "Vendor Material",
		{1, 6}: "Original Material",
		{2, 4}: "V-100",
	}, rows: 10, cols: 6}

	layout, err := DetectLayout(cells, DefaultLayoutVocab())
	if err != nil {
		t.Fatalf("DetectLayout failed: %v", err)
	}

	if layout.ImageCol != 1 {
		t.Errorf("ImageCol = %d, expected 1", layout.ImageCol)
	}
	if layout.LabelCol != 4 {
		t.Errorf("LabelCol = %d, expected 4", layout.LabelCol)
	}
	if layout.FallbackCol != 6 {
		t.Errorf("FallbackCol = %d, expected 6", layout.FallbackCol)
	}
	if layout.StartRow != 2 {
		t.Errorf("StartRow = %d, expected 2", layout.StartRow)
	}
	if layout.ImageHeaderRow != 1 || layout.LabelHeaderRow != 1 || layout.FallbackHeaderRow != 1 {
		t.Errorf("header rows = %d/%d/%d, expected 1/1/1",
			layout.ImageHeaderRow, layout.LabelHeaderRow, layout.FallbackHeaderRow)
	}
}

func TestDetectLayoutHeadersBelowRowOne(t *testing.T) {
	cells := stubCells{cells: map[[2]int]string{
		{1, 1}: "Extraction sheet",
		{3, 2}: "Picture",
		{3, 5}: "Vendor code",
	}, rows: 20, cols: 6}

	layout, err := DetectLayout(cells, DefaultLayoutVocab())
	if err != nil {
		t.Fatalf("DetectLayout failed: %v", err)
	}
	if layout.ImageCol != 2 || layout.LabelCol != 5 {
		t.Errorf("columns = %d/%d, expected 2/5", layout.ImageCol, layout.LabelCol)
	}
	if layout.StartRow != 4 {
		t.Errorf("StartRow = %d, expected 4", layout.StartRow)
	}
}

func TestDetectLayoutDensityFallback(t *testing.T) {
	// No headers at all: images default to column 1 and labels to the
	// densest conventional column.
	cells := stubCells{cells: map[[2]int]string{
		{2, 2}: "a",
		{3, 2}: "b",
		{4, 2}: "c",
		{3, 1}: "x",
	}, rows: 5, cols: 2}

	layout, err := DetectLayout(cells, DefaultLayoutVocab())
	if err != nil {
		t.Fatalf("DetectLayout failed: %v", err)
	}
	if layout.ImageCol != 1 {
		t.Errorf("ImageCol = %d, expected 1", layout.ImageCol)
	}
	if layout.LabelCol != 2 {
		t.Errorf("LabelCol = %d, expected 2", layout.LabelCol)
	}
	if layout.StartRow != 2 {
		t.Errorf("StartRow = %d, expected 2", layout.StartRow)
	}
}

func TestDetectLayoutCustomVocab(t *testing.T) {
	cells := stubCells{cells: map[[2]int]string{
		{1, 2}: "写真",
		{1, 3}: "品番",
	}, rows: 5, cols: 4}

	vocab := LayoutVocab{
		ImageHeaders: []string{"写真"},
		LabelHeaders: []string{"品番"},
	}
	layout, err := DetectLayout(cells, vocab)
	if err != nil {
		t.Fatalf("DetectLayout failed: %v", err)
	}
	if layout.ImageCol != 2 || layout.LabelCol != 3 {
		t.Errorf("columns = %d/%d, expected 2/3", layout.ImageCol, layout.LabelCol)
	}
}
