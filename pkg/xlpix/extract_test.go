package xlpix

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
	"github.com/ujiie/xlpix/pkg/xlpix/workbook"
)

// fixtureWorkbook builds an xlsx with labels in column D and pictures
// anchored in column A at the given rows.
func fixtureWorkbook(t *testing.T, labels map[string]string, pictureCells []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range labels {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("failed to set %s: %v", cell, err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	for _, cell := range pictureCells {
		err := f.AddPictureFromBytes("Sheet1", cell, &excelize.Picture{
			Extension: ".png",
			File:      buf.Bytes(),
		})
		if err != nil {
			t.Fatalf("failed to add picture at %s: %v", cell, err)
		}
	}

	path := filepath.Join(t.TempDir(), "vendors.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}
	return path
}

func fixtureOptions() Options {
	opts := DefaultOptions()
	opts.Sheet = "Sheet1"
	opts.RunID = "test-run"
	opts.GeneratedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return opts
}

func TestPreviewNearestAbove(t *testing.T) {
	path := fixtureWorkbook(t,
		map[string]string{"D2": "V-100", "D4": "V-200"},
		[]string{"A2", "A3", "A4"})

	report, err := Preview(context.Background(), path, fixtureOptions())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if report.TargetRows != 3 || report.MappedRows != 3 {
		t.Errorf("target/mapped = %d/%d, expected 3/3", report.TargetRows, report.MappedRows)
	}
	// Row 3 inherits V-100 from row 2, so V-100 spans two rows.
	if len(report.Pivot) != 2 || report.Pivot[0].Label != "V-100" || report.Pivot[0].RowCount != 2 {
		t.Errorf("pivot = %+v", report.Pivot)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected one duplicate-label warning, got %v", report.Warnings)
	}
}

func TestExtractCommit(t *testing.T) {
	path := fixtureWorkbook(t,
		map[string]string{"D2": "V-100", "D4": "V-200"},
		[]string{"A2", "A3", "A4"})

	var buf bytes.Buffer
	result, err := Extract(context.Background(), &buf, path, fixtureOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Status != StatusOK {
		t.Fatalf("status = %q, expected ok", result.Status)
	}
	if result.Packaged != 3 || result.Skipped != 0 {
		t.Errorf("packaged/skipped = %d/%d, expected 3/0", result.Packaged, result.Skipped)
	}
	if result.ArchiveName != "vendors.zip" {
		t.Errorf("ArchiveName = %q, expected vendors.zip", result.ArchiveName)
	}

	names := make([]string, len(result.Manifest.Entries))
	for i, e := range result.Manifest.Entries {
		names[i] = e.Filename
	}
	expected := []string{"V-100_01.png", "V-100_02.png", "V-200.png"}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("filenames mismatch (-want +got):\n%s", diff)
	}

	for _, e := range result.Manifest.Entries {
		if e.Width != 4 || e.Height != 4 {
			t.Errorf("entry %s dimensions = %dx%d, expected 4x4", e.Filename, e.Width, e.Height)
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to reopen archive: %v", err)
	}
	if len(zr.File) != len(expected)+2 { // images + summary.txt + manifest.json
		t.Errorf("archive holds %d entries, expected %d", len(zr.File), len(expected)+2)
	}
}

func TestExtractEmptyResult(t *testing.T) {
	path := fixtureWorkbook(t, map[string]string{"D2": "V-100"}, nil)

	var buf bytes.Buffer
	result, err := Extract(context.Background(), &buf, path, fixtureOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Status != StatusEmpty {
		t.Fatalf("status = %q, expected empty", result.Status)
	}
	if buf.Len() != 0 {
		t.Errorf("empty run wrote %d bytes, expected none", buf.Len())
	}
}

func TestExtractUnresolvedRowExcluded(t *testing.T) {
	// Image on row 2 with no label anywhere above it.
	path := fixtureWorkbook(t, map[string]string{"D6": "V-100"}, []string{"A2"})

	var buf bytes.Buffer
	result, err := Extract(context.Background(), &buf, path, fixtureOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Status != StatusEmpty {
		t.Fatalf("status = %q, expected empty", result.Status)
	}
	warned := 0
	for _, w := range result.Report.Warnings {
		if bytes.Contains([]byte(w), []byte("no resolvable label")) {
			warned++
		}
	}
	if warned != 1 {
		t.Errorf("expected exactly one unresolved-row warning, got %d (%v)", warned, result.Report.Warnings)
	}
}

func TestExtractOverrideStrategy(t *testing.T) {
	path := fixtureWorkbook(t, nil, []string{"A2"})

	opts := fixtureOptions()
	opts.Strategy = StrategyOverride
	opts.Overrides = map[int]string{2: "EXTERNAL", 9: "UNUSED"}

	report, err := Preview(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	// Row 2 has image+label, row 9 is a label-only target.
	if report.TargetRows != 2 || report.MappedRows != 1 {
		t.Errorf("target/mapped = %d/%d, expected 2/1", report.TargetRows, report.MappedRows)
	}

	var buf bytes.Buffer
	result, err := Extract(context.Background(), &buf, path, opts)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Packaged != 1 {
		t.Fatalf("packaged = %d, expected 1", result.Packaged)
	}
	if result.Manifest.Entries[0].Filename != "EXTERNAL.png" {
		t.Errorf("filename = %q, expected EXTERNAL.png", result.Manifest.Entries[0].Filename)
	}
	if result.Manifest.Entries[0].Method != models.MethodOverride {
		t.Errorf("method = %q, expected override", result.Manifest.Entries[0].Method)
	}
}

func TestExtractUnknownSheet(t *testing.T) {
	path := fixtureWorkbook(t, nil, nil)

	opts := fixtureOptions()
	opts.Sheet = "Missing"

	var buf bytes.Buffer
	_, err := Extract(context.Background(), &buf, path, opts)
	if !errors.Is(err, workbook.ErrSheetNotFound) {
		t.Errorf("error = %v, expected ErrSheetNotFound", err)
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Component != "workbook" {
		t.Errorf("error = %v, expected workbook ExtractionError", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{"valid defaults", func(o *Options) {}, nil},
		{"missing sheet", func(o *Options) { o.Sheet = "" }, ErrInvalidConfig},
		{"bad strategy", func(o *Options) { o.Strategy = "topmost" }, ErrUnknownStrategy},
		{"zero image column", func(o *Options) { o.ImageColumn = 0 }, ErrInvalidConfig},
		{"zero label column", func(o *Options) { o.LabelColumn = 0 }, ErrInvalidConfig},
		{"override without list", func(o *Options) {
			o.Strategy = StrategyOverride
			o.Overrides = nil
		}, ErrInvalidConfig},
		{"override ignores label column", func(o *Options) {
			o.Strategy = StrategyOverride
			o.Overrides = map[int]string{}
			o.LabelColumn = 0
		}, nil},
		{"auto-detect ignores columns", func(o *Options) {
			o.AutoDetect = true
			o.ImageColumn = 0
			o.LabelColumn = 0
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Sheet = "Sheet1"
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, expected nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestArchiveRootName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Spring Catalog.xlsx", "Spring Catalog"},
		{"parts.xlsm", "parts"},
		{"a/b.xlsx", "a_b"},
		{".xlsx", "Workbook_Images"},
		{"", "Workbook_Images"},
	}
	for _, tt := range tests {
		if got := ArchiveRootName(tt.input); got != tt.expected {
			t.Errorf("ArchiveRootName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
