package models

import "time"

// ManifestEntry describes one image file written into the archive.
type ManifestEntry struct {
	Filename string      `json:"filename"`
	Row      int         `json:"row"`
	Label    string      `json:"label"`
	Method   Method      `json:"method"`
	Ordinal  int         `json:"ordinal"`
	Format   ImageFormat `json:"format"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
}

// Manifest is the machine-readable summary written into the archive as
// manifest.json. Entries are sorted by (row, ordinal); the ordering and the
// filenames are byte-identical across repeated runs over the same inputs.
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Workbook    string    `json:"workbook"`
	Sheet       string    `json:"sheet"`
	RootFolder  string    `json:"root_folder"`

	Entries []ManifestEntry `json:"entries"`

	Packaged int `json:"packaged"`
	// Skipped counts images that had a target row but could not be
	// packaged (unresolved label, unrecognized format).
	Skipped int `json:"skipped"`
	// Ignored counts images excluded before mapping (off-column anchors,
	// anchors above the data start row, unanchored images).
	Ignored int `json:"ignored"`

	Warnings []string `json:"warnings,omitempty"`
}
