package overrides

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseValidDocument(t *testing.T) {
	doc := `{"overrides": [
		{"row": 2, "label": "V-100"},
		{"row": 7, "label": "EXTERNAL NAME"}
	]}`

	got, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	expected := map[int]string{2: "V-100", 7: "EXTERNAL NAME"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("override map mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyList(t *testing.T) {
	got, err := Parse([]byte(`{"overrides": []}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not JSON", `{overrides: [}`},
		{"missing overrides key", `{}`},
		{"missing label", `{"overrides": [{"row": 2}]}`},
		{"missing row", `{"overrides": [{"label": "V-100"}]}`},
		{"row below one", `{"overrides": [{"row": 0, "label": "V-100"}]}`},
		{"non-integer row", `{"overrides": [{"row": "2", "label": "V-100"}]}`},
		{"unknown entry field", `{"overrides": [{"row": 2, "label": "V-100", "sheet": "Sheet1"}]}`},
		{"unknown top-level field", `{"overrides": [], "version": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse accepted invalid document: %s", tt.doc)
			}
		})
	}
}

func TestParseRejectsDuplicateRow(t *testing.T) {
	doc := `{"overrides": [
		{"row": 2, "label": "V-100"},
		{"row": 2, "label": "V-200"}
	]}`

	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "repeats row 2") {
		t.Errorf("error = %v, expected duplicate-row error", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(path, []byte(`{"overrides": [{"row": 3, "label": "X"}]}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got[3] != "X" {
		t.Errorf("got %v, expected row 3 -> X", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
