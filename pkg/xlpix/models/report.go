package models

// PivotEntry aggregates the rows that resolved to one label.
type PivotEntry struct {
	Label string `json:"label"`
	// Rows lists the distinct rows carrying this label, ascending.
	Rows []int `json:"rows"`
	// RowCount is len(Rows), kept explicit for serialized output.
	RowCount int `json:"row_count"`
	// MissingImageRows counts rows with this label but zero images.
	MissingImageRows int `json:"missing_image_rows"`
	// UniqueImages counts distinct image identities across the rows.
	UniqueImages int `json:"unique_images"`
}

// Report is the non-mutating preview of an extraction run: counts, a
// per-label pivot, and human-readable warnings. Idempotent for identical
// inputs, including warning order.
type Report struct {
	Sheet string `json:"sheet"`
	// TargetRows counts distinct rows that have an image, a label, or both.
	TargetRows int `json:"target_rows"`
	// MappedRows counts rows with both a non-empty label and at least one
	// image. Always <= TargetRows.
	MappedRows int `json:"mapped_rows"`
	// IgnoredImages counts images anchored outside the image column or
	// above the data start row.
	IgnoredImages int `json:"ignored_images"`
	// UnanchoredImages counts images that carry no cell anchor at all.
	UnanchoredImages int          `json:"unanchored_images"`
	Pivot            []PivotEntry `json:"pivot,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	// Layout echoes the detected sheet layout when auto-detection ran.
	Layout *Layout `json:"layout,omitempty"`
}

// Layout describes where the extraction columns and data rows live on a
// sheet, either caller-configured or auto-detected from header text.
type Layout struct {
	ImageCol    int `json:"image_col"`
	LabelCol    int `json:"label_col"`
	FallbackCol int `json:"fallback_col,omitempty"`
	// StartRow is the first data row; anchors above it are ignored.
	StartRow int `json:"start_row"`

	ImageHeaderRow    int `json:"image_header_row,omitempty"`
	LabelHeaderRow    int `json:"label_header_row,omitempty"`
	FallbackHeaderRow int `json:"fallback_header_row,omitempty"`
}
