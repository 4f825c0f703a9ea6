package xlpix

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
	"github.com/ujiie/xlpix/pkg/xlpix/workbook"
)

// Result is the outcome of a commit-mode extraction.
type Result struct {
	Status   Status
	Report   *models.Report
	Manifest *models.Manifest
	// ArchiveName is the suggested download filename, "<root>.zip".
	ArchiveName string
	Packaged    int
	Skipped     int
}

// ListSheets returns the workbook's sheet names in workbook order.
func ListSheets(path string) ([]string, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, workbook.ErrNoSheets
	}
	return names, nil
}

// Preview runs the mapping pipeline without producing any output storage:
// it returns the diagnostics report for the caller to inspect before
// committing.
func Preview(ctx context.Context, path string, opts Options) (*models.Report, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	plan, err := planRun(ctx, wb, opts)
	if err != nil {
		return nil, err
	}
	opts.logger().Debug("preview built",
		"sheet", opts.Sheet,
		"target_rows", plan.report.TargetRows,
		"mapped_rows", plan.report.MappedRows,
		"warnings", len(plan.report.Warnings))
	return plan.report, nil
}

// Extract runs the full pipeline and writes the archive to w. When nothing
// can be packaged the returned result carries StatusEmpty and no bytes are
// written.
func Extract(ctx context.Context, w io.Writer, path string, opts Options) (*Result, error) {
	started := time.Now()

	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	plan, err := planRun(ctx, wb, opts)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	root := opts.RootFolder
	if root == "" {
		root = ArchiveRootName(wb.Name())
	}

	manifest, status, err := BuildArchive(ctx, w, plan.records, plan.images, BuildOptions{
		RootFolder:   root,
		Workbook:     wb.Name(),
		Sheet:        opts.Sheet,
		RowQualified: opts.RowQualified,
		RunID:        runID,
		GeneratedAt:  opts.GeneratedAt,
		Layout:       &plan.layout,
		Warnings:     plan.report.Warnings,
		IgnoredCount: plan.report.IgnoredImages + plan.report.UnanchoredImages,
		Concurrency:  opts.Concurrency,
	})
	if err != nil {
		return nil, NewExtractionError(opts.Sheet, "archive", err)
	}

	opts.logger().Info("extraction complete",
		"run_id", runID,
		"sheet", opts.Sheet,
		"status", string(status),
		"packaged", manifest.Packaged,
		"skipped", manifest.Skipped,
		"ignored", manifest.Ignored,
		"elapsed", time.Since(started))

	return &Result{
		Status:      status,
		Report:      plan.report,
		Manifest:    manifest,
		ArchiveName: root + ".zip",
		Packaged:    manifest.Packaged,
		Skipped:     manifest.Skipped,
	}, nil
}

// runPlan is the shared mapping state behind both preview and commit.
type runPlan struct {
	layout  models.Layout
	idx     *AnchorIndex
	labels  map[int]models.ResolvedLabel
	records []models.MappingRecord
	report  *models.Report
	images  map[int]models.EmbeddedImage
}

// planRun runs accessor -> anchor index -> label resolver -> diagnostics
// over an opened workbook.
func planRun(ctx context.Context, wb *workbook.Workbook, opts Options) (*runPlan, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !wb.HasSheet(opts.Sheet) {
		return nil, NewExtractionError(opts.Sheet, "workbook",
			fmt.Errorf("%w: %q", workbook.ErrSheetNotFound, opts.Sheet))
	}

	cells := wb.Cells(opts.Sheet)

	layout := models.Layout{
		ImageCol:    opts.ImageColumn,
		LabelCol:    opts.LabelColumn,
		FallbackCol: opts.FallbackColumn,
		StartRow:    max(opts.StartRow, 1),
	}
	autoDetected := false
	if opts.AutoDetect {
		vocab := DefaultLayoutVocab()
		if opts.Vocab != nil {
			vocab = *opts.Vocab
		}
		detected, err := DetectLayout(cells, vocab)
		if err != nil {
			return nil, NewExtractionError(opts.Sheet, "layout", err)
		}
		layout = *detected
		autoDetected = true
	}

	images, err := wb.Images(opts.Sheet)
	if err != nil {
		return nil, NewExtractionError(opts.Sheet, "images", err)
	}

	resolver := Resolver{
		Cells:          cells,
		Strategy:       opts.Strategy,
		LabelColumn:    layout.LabelCol,
		Overrides:      opts.Overrides,
		FallbackColumn: layout.FallbackCol,
		FallbackPrefix: opts.FallbackPrefix,
	}

	var mediaNote string
	if opts.MediaFallback && !anyAnchored(images) {
		images, mediaNote, err = mediaFallbackImages(wb, cells, resolver, layout)
		if err != nil {
			return nil, NewExtractionError(opts.Sheet, "images", err)
		}
	}

	idx := BuildIndex(images, layout.ImageCol, layout.StartRow)
	labels := resolver.Resolve(resolutionRows(idx, opts.Overrides))
	records := BuildRecords(idx, labels)
	report := BuildReport(opts.Sheet, idx, labels)
	if mediaNote != "" {
		report.Warnings = append(report.Warnings, mediaNote)
	}
	if autoDetected {
		report.Layout = &layout
	}

	return &runPlan{
		layout:  layout,
		idx:     idx,
		labels:  labels,
		records: records,
		report:  report,
		images:  idx.ImagesByOrdinal(),
	}, nil
}

// resolutionRows returns the rows labels must be resolved for: every
// indexed row plus, under an override list, every override row so that
// label-only rows still count as targets.
func resolutionRows(idx *AnchorIndex, overrides map[int]string) []int {
	seen := make(map[int]bool)
	var rows []int
	for _, row := range idx.Rows() {
		seen[row] = true
		rows = append(rows, row)
	}
	for row := range overrides {
		if !seen[row] {
			rows = append(rows, row)
		}
	}
	return rows
}

func anyAnchored(images []models.EmbeddedImage) bool {
	for _, img := range images {
		if img.Anchored() {
			return true
		}
	}
	return false
}

// mediaFallbackImages pairs the container's media parts positionally with
// rows that have a resolvable label, for workbooks whose images were pasted
// without cell anchors. Surplus media entries stay unanchored and are later
// reported as ignored.
func mediaFallbackImages(wb *workbook.Workbook, cells *workbook.SheetCells, resolver Resolver, layout models.Layout) ([]models.EmbeddedImage, string, error) {
	media, err := wb.MediaImages()
	if err != nil {
		return nil, "", err
	}
	if len(media) == 0 {
		return nil, "", nil
	}

	maxRow, _, err := cells.Dimensions()
	if err != nil {
		return nil, "", err
	}
	var candidates []int
	for row := layout.StartRow; row <= maxRow; row++ {
		if resolver.ResolveRow(row).Label != "" {
			candidates = append(candidates, row)
		}
	}

	for i := range media {
		if i < len(candidates) {
			media[i].Row = candidates[i]
			media[i].Col = layout.ImageCol
		}
	}

	note := ""
	if len(candidates) > 0 && len(media) != len(candidates) {
		note = fmt.Sprintf("media items (%d) and labeled data rows (%d) count mismatch", len(media), len(candidates))
	}
	return media, note, nil
}

var controlChars = regexp.MustCompile(`[\x00-\x1f]+`)

// ArchiveRootName derives the archive root folder from the workbook
// filename, keeping original casing and spaces while preventing invalid
// paths.
func ArchiveRootName(workbookName string) string {
	stem := strings.TrimSuffix(workbookName, filepath.Ext(workbookName))
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(stem))
	name = strings.TrimSpace(controlChars.ReplaceAllString(name, ""))
	if name == "" {
		return "Workbook_Images"
	}
	return name
}
