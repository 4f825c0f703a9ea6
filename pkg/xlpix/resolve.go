package xlpix

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// Strategy selects how a row's naming label is obtained.
type Strategy string

const (
	// StrategySameRow reads the label cell on the row itself.
	StrategySameRow Strategy = "same-row"
	// StrategyNearestAbove inherits the nearest non-blank label cell at or
	// above the row, so a label set once applies to the blank rows below
	// it until a new label appears.
	StrategyNearestAbove Strategy = "nearest-above"
	// StrategyOverride uses an externally supplied row -> label list.
	StrategyOverride Strategy = "override"
)

// ParseStrategy maps a selector string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.TrimSpace(strings.ToLower(s))) {
	case StrategySameRow:
		return StrategySameRow, nil
	case StrategyNearestAbove:
		return StrategyNearestAbove, nil
	case StrategyOverride:
		return StrategyOverride, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// method returns the resolution method tag for labels found through the
// strategy's primary path.
func (s Strategy) method() models.Method {
	switch s {
	case StrategySameRow:
		return models.MethodSameRow
	case StrategyNearestAbove:
		return models.MethodNearestAbove
	case StrategyOverride:
		return models.MethodOverride
	}
	return models.MethodUnresolved
}

// CellReader reads a single cell value on the sheet under extraction.
type CellReader interface {
	CellValue(row, col int) (string, error)
}

// Resolver resolves naming labels for target rows. It never fabricates a
// label and never fails: rows without a resolvable label come back with an
// empty label and the unresolved tag.
type Resolver struct {
	Cells    CellReader
	Strategy Strategy
	// LabelColumn is the 1-based column holding labels, used by the
	// same-row and nearest-above strategies.
	LabelColumn int
	// Overrides is the external row -> label list for StrategyOverride.
	Overrides map[int]string
	// FallbackColumn, when positive, supplies a secondary label cell for
	// rows whose primary label is blank. The fallback value is prefixed
	// with FallbackPrefix and the use is noted for diagnostics.
	FallbackColumn int
	FallbackPrefix string
}

// Resolve resolves a label for every row in rows.
func (r Resolver) Resolve(rows []int) map[int]models.ResolvedLabel {
	out := make(map[int]models.ResolvedLabel, len(rows))
	for _, row := range rows {
		out[row] = r.ResolveRow(row)
	}
	return out
}

// ResolveRow resolves a single row.
func (r Resolver) ResolveRow(row int) models.ResolvedLabel {
	label := r.primary(row)
	if label != "" {
		return models.ResolvedLabel{Row: row, Label: label, Method: r.Strategy.method()}
	}
	if r.FallbackColumn > 0 && r.Strategy != StrategyOverride {
		if fb := normalizeLabel(r.cell(row, r.FallbackColumn)); fb != "" {
			return models.ResolvedLabel{
				Row:    row,
				Label:  r.FallbackPrefix + fb,
				Method: r.Strategy.method(),
				Note:   fmt.Sprintf("row %d: label column empty, used fallback column %d", row, r.FallbackColumn),
			}
		}
	}
	return models.ResolvedLabel{Row: row, Method: models.MethodUnresolved}
}

// primary runs the strategy's main lookup path.
func (r Resolver) primary(row int) string {
	switch r.Strategy {
	case StrategySameRow:
		return normalizeLabel(r.cell(row, r.LabelColumn))
	case StrategyNearestAbove:
		for scan := row; scan >= 1; scan-- {
			if v := normalizeLabel(r.cell(scan, r.LabelColumn)); v != "" {
				return v
			}
		}
		return ""
	case StrategyOverride:
		return normalizeLabel(r.Overrides[row])
	}
	return ""
}

// cell reads one cell, treating read errors as blank. Resolution gaps are
// data, not errors.
func (r Resolver) cell(row, col int) string {
	if r.Cells == nil || col < 1 {
		return ""
	}
	v, err := r.Cells.CellValue(row, col)
	if err != nil {
		return ""
	}
	return v
}

// normalizeLabel applies NFKC normalization and trims surrounding
// whitespace. A whitespace-only value is blank.
func normalizeLabel(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
