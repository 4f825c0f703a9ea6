package xlpix

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
	"github.com/ujiie/xlpix/pkg/xlpix/workbook"
)

// Status reports the outcome of an archive build.
type Status string

const (
	// StatusOK means at least one image was packaged.
	StatusOK Status = "ok"
	// StatusEmpty means nothing was packaged. The builder writes no
	// archive bytes in this case; an empty run is an explicit condition
	// for the caller to present, not a zero-byte download.
	StatusEmpty Status = "empty"
)

const defaultProbeConcurrency = 4

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BuildOptions configures one archive build.
type BuildOptions struct {
	// RootFolder is the directory all archive entries live under,
	// typically derived from the workbook filename.
	RootFolder string
	Workbook   string
	Sheet      string
	// RowQualified embeds the row number in filenames (LABEL_R12) instead
	// of per-label sequence counters.
	RowQualified bool
	RunID        string
	GeneratedAt  time.Time
	// Layout, when set, is echoed into the summary.
	Layout *models.Layout
	// Warnings are diagnostics carried into the manifest and summary
	// ahead of the builder's own packaging warnings.
	Warnings []string
	// IgnoredCount is the number of images excluded before mapping.
	IgnoredCount int
	// Concurrency bounds parallel dimension probing; zero means a small
	// default.
	Concurrency int
}

type pendingEntry struct {
	entry models.ManifestEntry
	data  []byte
}

// BuildArchive packages the mapped images into a zip archive written to w,
// along with a human summary and a machine-readable manifest. Given the
// same ordered inputs it produces identical filenames and manifest
// ordering. Rows without a label and images with an unrecognized format
// are skipped, never fatal.
func BuildArchive(ctx context.Context, w io.Writer, records []models.MappingRecord, images map[int]models.EmbeddedImage, opts BuildOptions) (*models.Manifest, Status, error) {
	if opts.RootFolder == "" {
		opts.RootFolder = "Workbook_Images"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	manifest := &models.Manifest{
		RunID:       opts.RunID,
		GeneratedAt: opts.GeneratedAt,
		Workbook:    opts.Workbook,
		Sheet:       opts.Sheet,
		RootFolder:  opts.RootFolder,
		Ignored:     opts.IgnoredCount,
	}
	manifest.Warnings = append(manifest.Warnings, opts.Warnings...)

	ordered := make([]models.MappingRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Row < ordered[j].Row })

	entries := planEntries(ordered, images, opts, manifest)

	if len(entries) == 0 {
		manifest.Entries = []models.ManifestEntry{}
		return manifest, StatusEmpty, nil
	}

	if err := probeDimensions(ctx, entries, opts.Concurrency); err != nil {
		return nil, "", err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].entry.Row != entries[j].entry.Row {
			return entries[i].entry.Row < entries[j].entry.Row
		}
		return entries[i].entry.Ordinal < entries[j].entry.Ordinal
	})
	for _, pe := range entries {
		manifest.Entries = append(manifest.Entries, pe.entry)
	}
	manifest.Packaged = len(entries)

	if err := writeArchive(w, entries, manifest, opts); err != nil {
		return nil, "", err
	}
	return manifest, StatusOK, nil
}

// planEntries assigns collision-free filenames to every packageable
// (label, image) pair, recording skips in the manifest.
func planEntries(records []models.MappingRecord, images map[int]models.EmbeddedImage, opts BuildOptions, manifest *models.Manifest) []pendingEntry {
	// First pass: count packageable images per name group so single-image
	// groups keep bare names while larger groups get sequence suffixes.
	groupTotals := make(map[string]int)
	for _, rec := range records {
		if rec.Label == "" {
			continue
		}
		for _, ordinal := range rec.ImageOrdinals {
			img, ok := images[ordinal]
			if !ok || img.Format == models.FormatUnknown {
				continue
			}
			groupTotals[nameGroup(rec, opts.RowQualified)]++
		}
	}

	var entries []pendingEntry
	groupSeq := make(map[string]int)
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.Label == "" {
			// Already surfaced as an unresolved-row warning upstream.
			manifest.Skipped += len(rec.ImageOrdinals)
			continue
		}
		for _, ordinal := range rec.ImageOrdinals {
			img, ok := images[ordinal]
			if !ok {
				manifest.Skipped++
				continue
			}
			if img.Format == models.FormatUnknown {
				manifest.Skipped++
				manifest.Warnings = append(manifest.Warnings, fmt.Sprintf(
					"image #%d (row %d): unrecognized image format; skipped", ordinal, rec.Row))
				continue
			}

			group := nameGroup(rec, opts.RowQualified)
			groupSeq[group]++
			base := group
			if groupTotals[group] > 1 {
				base = fmt.Sprintf("%s_%02d", group, groupSeq[group])
			}
			entries = append(entries, pendingEntry{
				entry: models.ManifestEntry{
					Filename: uniqueFilename(base, string(img.Format), seen),
					Row:      rec.Row,
					Label:    rec.Label,
					Method:   rec.Method,
					Ordinal:  ordinal,
					Format:   img.Format,
				},
				data: img.Data,
			})
		}
	}
	return entries
}

// nameGroup returns the base filename shared by a record's images.
func nameGroup(rec models.MappingRecord, rowQualified bool) string {
	base := SanitizeLabel(rec.Label)
	if rowQualified {
		return fmt.Sprintf("%s_R%d", base, rec.Row)
	}
	return base
}

// SanitizeLabel strips filesystem-hostile characters from a label,
// collapsing runs of them to a single underscore. A label that sanitizes
// to nothing becomes "Image".
func SanitizeLabel(label string) string {
	s := unsafeNameChars.ReplaceAllString(strings.TrimSpace(label), "_")
	s = strings.Trim(s, "._-")
	if s == "" {
		return "Image"
	}
	return s
}

// uniqueFilename joins base and ext, bumping a numeric suffix on the rare
// literal collision (a label that already ends in a sequence suffix).
func uniqueFilename(base, ext string, seen map[string]bool) string {
	candidate := base + "." + ext
	for counter := 2; seen[candidate]; counter++ {
		candidate = fmt.Sprintf("%s_%d.%s", base, counter, ext)
	}
	seen[candidate] = true
	return candidate
}

// probeDimensions fills pixel sizes concurrently. Each entry is
// independent; ordering is restored afterwards by the post-hoc sort.
func probeDimensions(ctx context.Context, entries []pendingEntry, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultProbeConcurrency
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range entries {
		g.Go(func() error {
			w, h := workbook.ProbeDimensions(entries[i].data)
			entries[i].entry.Width = w
			entries[i].entry.Height = h
			return nil
		})
	}
	return g.Wait()
}

// writeArchive writes image entries, summary.txt, and manifest.json under
// the root folder. Entries are written in manifest order.
func writeArchive(w io.Writer, entries []pendingEntry, manifest *models.Manifest, opts BuildOptions) error {
	zw := zip.NewWriter(w)
	for _, pe := range entries {
		f, err := zw.Create(opts.RootFolder + "/" + pe.entry.Filename)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %q: %w", pe.entry.Filename, err)
		}
		if _, err := f.Write(pe.data); err != nil {
			return fmt.Errorf("failed to write archive entry %q: %w", pe.entry.Filename, err)
		}
	}

	f, err := zw.Create(opts.RootFolder + "/summary.txt")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, renderSummary(manifest, opts)); err != nil {
		return err
	}

	f, err = zw.Create(opts.RootFolder + "/manifest.json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}

	return zw.Close()
}

// renderSummary produces the human-readable summary.txt content.
func renderSummary(manifest *models.Manifest, opts BuildOptions) string {
	lines := []string{
		"Workbook Image Extraction Summary",
		"=================================",
		fmt.Sprintf("Run ID: %s", manifest.RunID),
		fmt.Sprintf("Generated at: %s", manifest.GeneratedAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("Workbook file: %s", manifest.Workbook),
		fmt.Sprintf("Sheet: %s", manifest.Sheet),
		fmt.Sprintf("Output root folder: %s", manifest.RootFolder),
	}
	if opts.Layout != nil {
		fallback := "none"
		if opts.Layout.FallbackCol > 0 {
			fallback = fmt.Sprintf("%d", opts.Layout.FallbackCol)
		}
		lines = append(lines,
			fmt.Sprintf("Image column: %d", opts.Layout.ImageCol),
			fmt.Sprintf("Label column: %d", opts.Layout.LabelCol),
			fmt.Sprintf("Fallback column: %s", fallback),
			fmt.Sprintf("Data start row: %d", opts.Layout.StartRow),
		)
	}
	lines = append(lines,
		fmt.Sprintf("Packaged images: %d", manifest.Packaged),
		fmt.Sprintf("Skipped images: %d", manifest.Skipped),
		fmt.Sprintf("Ignored images: %d", manifest.Ignored),
		"",
		"Files:",
	)
	for _, e := range manifest.Entries {
		lines = append(lines, fmt.Sprintf("- %s (row %d, label %s)", e.Filename, e.Row, e.Label))
	}
	lines = append(lines,
		"",
		"Rules:",
		"- Images are packaged only when anchored in the image column.",
		"- File names come from the resolved row label.",
		"- Labels shared by multiple images get zero-padded sequence suffixes.",
		"",
	)
	if len(manifest.Warnings) > 0 {
		lines = append(lines, "Warnings:")
		for _, warning := range manifest.Warnings {
			lines = append(lines, "- "+warning)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
