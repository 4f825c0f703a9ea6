// Package xlpix extracts raster images embedded in spreadsheet workbooks,
// names them through row-label resolution, and packages them into a
// deterministic archive. All state lives in per-request values; the package
// holds no mutable globals.
package xlpix

import (
	"fmt"
	"log/slog"
	"time"
)

// Options carries every knob for one extraction request. The zero value is
// not usable; start from DefaultOptions.
type Options struct {
	// Sheet is the worksheet to extract from. Required.
	Sheet string

	// ImageColumn is the 1-based column images must be anchored in.
	ImageColumn int
	// LabelColumn is the 1-based column holding naming labels.
	LabelColumn int
	// FallbackColumn, when positive, supplies labels for rows whose
	// primary label cell is blank.
	FallbackColumn int
	// FallbackPrefix is prepended to fallback-column labels.
	FallbackPrefix string
	// StartRow is the first data row; anchors above it are ignored.
	StartRow int

	// Strategy selects the label resolution strategy.
	Strategy Strategy
	// Overrides is the external row -> label list, required for
	// StrategyOverride.
	Overrides map[int]string

	// RowQualified embeds row numbers in output filenames instead of
	// per-label sequence counters.
	RowQualified bool

	// AutoDetect scans the sheet's header rows for the image, label, and
	// fallback columns instead of using the configured ones.
	AutoDetect bool
	// Vocab overrides the header vocabulary used by auto-detection.
	Vocab *LayoutVocab

	// MediaFallback pairs the container's media parts positionally with
	// labeled rows when the sheet has no anchored images at all.
	MediaFallback bool

	// RootFolder overrides the archive root directory name. Empty derives
	// it from the workbook filename.
	RootFolder string
	// RunID stamps the manifest and logs; empty generates a fresh one.
	RunID string
	// GeneratedAt overrides the manifest timestamp, mainly for tests.
	GeneratedAt time.Time
	// Concurrency bounds parallel dimension probing.
	Concurrency int

	// Logger receives progress records; nil falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options matching the conventional sheet layout:
// images in column A, labels in column D, data starting on row 2, labels
// inherited from the nearest non-blank cell above.
func DefaultOptions() Options {
	return Options{
		ImageColumn:    1,
		LabelColumn:    4,
		StartRow:       2,
		Strategy:       StrategyNearestAbove,
		FallbackPrefix: "MAT_",
	}
}

// Validate checks the options for structural problems. Validation failures
// are input errors: the run fails fast with no partial output.
func (o Options) Validate() error {
	if o.Sheet == "" {
		return fmt.Errorf("%w: sheet name is required", ErrInvalidConfig)
	}
	switch o.Strategy {
	case StrategySameRow, StrategyNearestAbove, StrategyOverride:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, o.Strategy)
	}
	if o.Strategy == StrategyOverride && o.Overrides == nil {
		return fmt.Errorf("%w: override strategy requires an override list", ErrInvalidConfig)
	}
	if !o.AutoDetect {
		if o.ImageColumn < 1 {
			return fmt.Errorf("%w: image column must be positive, got %d", ErrInvalidConfig, o.ImageColumn)
		}
		if o.Strategy != StrategyOverride && o.LabelColumn < 1 {
			return fmt.Errorf("%w: label column must be positive, got %d", ErrInvalidConfig, o.LabelColumn)
		}
	}
	if o.StartRow < 0 {
		return fmt.Errorf("%w: start row must not be negative, got %d", ErrInvalidConfig, o.StartRow)
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
