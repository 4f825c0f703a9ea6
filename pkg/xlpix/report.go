package xlpix

import (
	"fmt"
	"sort"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// BuildRecords joins the anchor index with the resolved labels, one record
// per target row, sorted by row number.
func BuildRecords(idx *AnchorIndex, labels map[int]models.ResolvedLabel) []models.MappingRecord {
	rows := targetRows(idx, labels)
	records := make([]models.MappingRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.MappingRecord{Row: row, Method: models.MethodUnresolved}
		if rl, ok := labels[row]; ok {
			rec.Label = rl.Label
			rec.Method = rl.Method
		}
		for _, img := range idx.ImagesAt(row) {
			rec.ImageOrdinals = append(rec.ImageOrdinals, img.Ordinal)
		}
		records = append(records, rec)
	}
	return records
}

// BuildReport aggregates the mapping into a non-mutating preview: counts,
// a per-label pivot, and warnings. Pure in-memory pass; identical inputs
// yield byte-identical output, warning order included.
func BuildReport(sheet string, idx *AnchorIndex, labels map[int]models.ResolvedLabel) *models.Report {
	rows := targetRows(idx, labels)

	report := &models.Report{Sheet: sheet, TargetRows: len(rows)}

	byLabel := make(map[string][]int)
	var unresolvedRows []int // rows with images but no label
	var imagelessRows []int  // rows with a label but no images
	var notes []string

	for _, row := range rows {
		images := len(idx.ImagesAt(row))
		label := ""
		if rl, ok := labels[row]; ok {
			label = rl.Label
			if rl.Note != "" {
				notes = append(notes, rl.Note)
			}
		}
		switch {
		case label != "" && images > 0:
			report.MappedRows++
		case label == "" && images > 0:
			unresolvedRows = append(unresolvedRows, row)
		case label != "" && images == 0:
			imagelessRows = append(imagelessRows, row)
		}
		if label != "" {
			byLabel[label] = append(byLabel[label], row)
		}
	}

	pivotLabels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		pivotLabels = append(pivotLabels, label)
	}
	sort.Strings(pivotLabels)

	for _, label := range pivotLabels {
		labelRows := byLabel[label]
		sort.Ints(labelRows)
		entry := models.PivotEntry{
			Label:    label,
			Rows:     labelRows,
			RowCount: len(labelRows),
		}
		for _, row := range labelRows {
			n := len(idx.ImagesAt(row))
			if n == 0 {
				entry.MissingImageRows++
			}
			entry.UniqueImages += n
		}
		report.Pivot = append(report.Pivot, entry)
	}

	for _, label := range pivotLabels {
		if len(byLabel[label]) > 1 {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"label %q appears on rows %v; output filenames will carry sequence suffixes",
				label, byLabel[label]))
		}
	}
	for _, row := range unresolvedRows {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"row %d: %d image(s) but no resolvable label; excluded from archive",
			row, len(idx.ImagesAt(row))))
	}
	for _, row := range imagelessRows {
		label := labels[row].Label
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"row %d: label %q has no images", row, label))
	}
	sort.Strings(notes)
	report.Warnings = append(report.Warnings, notes...)

	for _, ig := range idx.Ignored() {
		if ig.Reason == "no cell anchor" {
			report.UnanchoredImages++
		} else {
			report.IgnoredImages++
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("image #%d ignored: %s", ig.Ordinal, ig.Reason))
	}

	return report
}

// targetRows returns the union of rows holding images and rows with a
// non-empty resolved label, ascending. A row is a target because it has an
// image, a label, or both.
func targetRows(idx *AnchorIndex, labels map[int]models.ResolvedLabel) []int {
	seen := make(map[int]bool)
	var rows []int
	for _, row := range idx.Rows() {
		if !seen[row] {
			seen[row] = true
			rows = append(rows, row)
		}
	}
	for row, rl := range labels {
		if rl.Label != "" && !seen[row] {
			seen[row] = true
			rows = append(rows, row)
		}
	}
	sort.Ints(rows)
	return rows
}
