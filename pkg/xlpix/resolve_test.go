package xlpix

import (
	"testing"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// stubCells is an in-memory CellReader/LayoutSource for core tests.
type stubCells struct {
	cells map[[2]int]string
	rows  int
	cols  int
}

func (s stubCells) CellValue(row, col int) (string, error) {
	return s.cells[[2]int{row, col}], nil
}

func (s stubCells) Dimensions() (rows, cols int, err error) {
	return s.rows, s.cols, nil
}

// column builds a stubCells with the given values down one column,
// starting at row 1.
func column(col int, values ...string) stubCells {
	cells := make(map[[2]int]string)
	for i, v := range values {
		cells[[2]int{i + 1, col}] = v
	}
	return stubCells{cells: cells, rows: len(values), cols: col}
}

func TestResolveNearestAbove(t *testing.T) {
	r := Resolver{
		Cells:       column(2, "A", "", "", "B", ""),
		Strategy:    StrategyNearestAbove,
		LabelColumn: 2,
	}

	expected := []string{"A", "A", "A", "B", "B"}
	for row := 1; row <= 5; row++ {
		got := r.ResolveRow(row)
		if got.Label != expected[row-1] {
			t.Errorf("row %d: label = %q, expected %q", row, got.Label, expected[row-1])
		}
		if got.Method != models.MethodNearestAbove {
			t.Errorf("row %d: method = %q, expected nearest-above", row, got.Method)
		}
	}
}

func TestResolveNearestAboveNothingAbove(t *testing.T) {
	r := Resolver{
		Cells:       column(1, "", "", "V-1"),
		Strategy:    StrategyNearestAbove,
		LabelColumn: 1,
	}
	got := r.ResolveRow(2)
	if got.Label != "" || got.Method != models.MethodUnresolved {
		t.Errorf("expected unresolved empty label, got %+v", got)
	}
}

func TestResolveSameRow(t *testing.T) {
	r := Resolver{
		Cells:       column(4, "V-100", "", "   ", "V-200"),
		Strategy:    StrategySameRow,
		LabelColumn: 4,
	}

	tests := []struct {
		row      int
		label    string
		method   models.Method
	}{
		{1, "V-100", models.MethodSameRow},
		{2, "", models.MethodUnresolved},
		{3, "", models.MethodUnresolved}, // whitespace-only is blank
		{4, "V-200", models.MethodSameRow},
	}
	for _, tt := range tests {
		got := r.ResolveRow(tt.row)
		if got.Label != tt.label || got.Method != tt.method {
			t.Errorf("row %d: got (%q, %q), expected (%q, %q)",
				tt.row, got.Label, got.Method, tt.label, tt.method)
		}
	}
}

func TestResolveOverride(t *testing.T) {
	r := Resolver{
		Strategy:  StrategyOverride,
		Overrides: map[int]string{5: "V-500", 7: "  "},
	}

	if got := r.ResolveRow(5); got.Label != "V-500" || got.Method != models.MethodOverride {
		t.Errorf("row 5: got %+v, expected override V-500", got)
	}
	if got := r.ResolveRow(6); got.Label != "" || got.Method != models.MethodUnresolved {
		t.Errorf("row 6: got %+v, expected unresolved", got)
	}
	// Whitespace-only override is blank, not a fabricated label.
	if got := r.ResolveRow(7); got.Label != "" || got.Method != models.MethodUnresolved {
		t.Errorf("row 7: got %+v, expected unresolved", got)
	}
}

func TestResolveFallbackColumn(t *testing.T) {
	cells := stubCells{cells: map[[2]int]string{
		{2, 4}: "V-100",
		{3, 6}: "M-9",
	}, rows: 3, cols: 6}

	r := Resolver{
		Cells:          cells,
		Strategy:       StrategySameRow,
		LabelColumn:    4,
		FallbackColumn: 6,
		FallbackPrefix: "MAT_",
	}

	got := r.ResolveRow(2)
	if got.Label != "V-100" || got.Note != "" {
		t.Errorf("row 2: got %+v, expected primary label with no note", got)
	}

	got = r.ResolveRow(3)
	if got.Label != "MAT_M-9" {
		t.Errorf("row 3: label = %q, expected MAT_M-9", got.Label)
	}
	if got.Method != models.MethodSameRow {
		t.Errorf("row 3: method = %q, expected same-row", got.Method)
	}
	if got.Note == "" {
		t.Error("row 3: fallback use should carry a note")
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  V-100  ", "V-100"},
		{"\t \n", ""},
		{"Ｖ１００", "V100"}, // NFKC folds full-width forms
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.input); got != tt.expected {
			t.Errorf("normalizeLabel(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
		wantErr  bool
	}{
		{"nearest-above", StrategyNearestAbove, false},
		{"Same-Row", StrategySameRow, false},
		{" override ", StrategyOverride, false},
		{"topmost", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseStrategy(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
