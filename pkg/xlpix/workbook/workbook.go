// Package workbook opens spreadsheet containers and exposes the narrow view
// the extraction core needs: sheet names, canonical cell values, and the
// embedded raster images with their anchor cells.
package workbook

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedExtension indicates the input is not a supported workbook
// container (.xlsx or .xlsm).
var ErrUnsupportedExtension = errors.New("unsupported workbook extension")

// ErrSheetNotFound indicates the requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNoSheets indicates the workbook contains no sheets at all.
var ErrNoSheets = errors.New("no sheets found in workbook")

// Workbook is an opened container. The file bytes are read once and shared
// by two views: an excelize file for sheet and cell access, and a zip reader
// for the raw OOXML drawing parts.
type Workbook struct {
	name string
	data []byte
	f    *excelize.File
	zr   *zip.Reader
}

// Open reads the workbook at path into memory. The extension is validated
// before any parsing happens.
func Open(path string) (*Workbook, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(filepath.Base(path), data)
}

// OpenReader reads a workbook from r. The name is used for extension
// validation and for deriving the archive root folder.
func OpenReader(r io.Reader, name string) (*Workbook, error) {
	if err := CheckExtension(name); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(name, data)
}

// FromBytes builds both container views over already-loaded bytes.
func FromBytes(name string, data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not open workbook container: %w", err)
	}
	return &Workbook{name: name, data: data, f: f, zr: zr}, nil
}

// CheckExtension validates that name has a supported workbook extension.
func CheckExtension(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(name))
}

// Close releases the excelize view.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Name returns the workbook file name (no path).
func (w *Workbook) Name() string {
	return w.name
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// HasSheet reports whether the named sheet exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// CellValue returns the trimmed value of cell (row, col), both 1-based.
// Numeric cells are canonicalized to plain decimal notation (no grouping,
// no trailing zeros); text cells pass through verbatim so values like
// "00123" keep their leading zeros.
func (w *Workbook) CellValue(sheet string, row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	raw, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", err
	}
	ctype, err := w.f.GetCellType(sheet, cell)
	if err != nil {
		return "", err
	}
	switch ctype {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return strings.TrimSpace(raw), nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return strings.TrimSpace(raw), nil
}

// Dimensions returns the used extent of a sheet as (rows, cols).
func (w *Workbook) Dimensions(sheet string) (rows, cols int, err error) {
	if !w.HasSheet(sheet) {
		return 0, 0, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	grid, err := w.f.GetRows(sheet)
	if err != nil {
		return 0, 0, err
	}
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return len(grid), cols, nil
}

// Cells returns a single-sheet cell reader view.
func (w *Workbook) Cells(sheet string) *SheetCells {
	return &SheetCells{wb: w, sheet: sheet}
}

// SheetCells adapts a Workbook to per-sheet (row, col) cell access.
type SheetCells struct {
	wb    *Workbook
	sheet string
}

// CellValue reads cell (row, col) on the bound sheet.
func (c *SheetCells) CellValue(row, col int) (string, error) {
	return c.wb.CellValue(c.sheet, row, col)
}

// Dimensions returns the used extent of the bound sheet.
func (c *SheetCells) Dimensions() (rows, cols int, err error) {
	return c.wb.Dimensions(c.sheet)
}
