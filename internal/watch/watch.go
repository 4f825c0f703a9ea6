// Package watch runs extraction over workbooks dropped into a directory:
// each new .xlsx/.xlsm file is opened once it is stable and its images are
// packaged into a zip next to the intake folder.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/ujiie/xlpix/pkg/xlpix"
	"github.com/ujiie/xlpix/pkg/xlpix/workbook"
)

// Options configures a watch loop.
type Options struct {
	// Dir is the intake directory to watch.
	Dir string
	// OutputDir receives the produced archives.
	OutputDir string
	// Extract is the per-workbook extraction configuration. An empty
	// Sheet means the workbook's first sheet.
	Extract xlpix.Options
	// MaxFileBytes skips workbooks larger than this; zero disables the
	// gate.
	MaxFileBytes int64
	Logger       *slog.Logger

	// settle is how long a file must stay quiet before processing.
	Settle time.Duration
}

// Run watches the intake directory until ctx is canceled. Individual
// workbook failures are logged, not fatal.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.Dir, err)
	}
	log.Info("watching for workbooks", "dir", opts.Dir, "out", opts.OutputDir)

	// Suppress duplicate events for the same path while it is handled.
	var mu sync.Mutex
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := event.Name
			if workbook.CheckExtension(path) != nil {
				continue
			}
			mu.Lock()
			if pending[path] {
				mu.Unlock()
				continue
			}
			pending[path] = true
			mu.Unlock()

			go func() {
				defer func() {
					mu.Lock()
					delete(pending, path)
					mu.Unlock()
				}()
				if err := handle(ctx, path, opts, log); err != nil {
					log.Error("workbook processing failed", "file", filepath.Base(path), "error", err)
				}
			}()
		}
	}
}

// handle waits for the dropped file to stabilize, then extracts it.
func handle(ctx context.Context, path string, opts Options, log *slog.Logger) error {
	if err := waitStable(ctx, path, opts.Settle); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
		log.Warn("workbook exceeds size ceiling; skipped",
			"file", filepath.Base(path), "size", info.Size(), "limit", opts.MaxFileBytes)
		return nil
	}

	extractOpts := opts.Extract
	extractOpts.Logger = log
	if extractOpts.Sheet == "" {
		sheets, err := xlpix.ListSheets(path)
		if err != nil {
			return err
		}
		extractOpts.Sheet = sheets[0]
	}

	outPath := filepath.Join(opts.OutputDir, xlpix.ArchiveRootName(filepath.Base(path))+".zip")
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	result, err := xlpix.Extract(ctx, out, path, extractOpts)
	closeErr := out.Close()
	if err != nil {
		os.Remove(outPath)
		return err
	}
	if closeErr != nil {
		return closeErr
	}
	if result.Status == xlpix.StatusEmpty {
		os.Remove(outPath)
		log.Info("nothing to extract", "file", filepath.Base(path), "sheet", extractOpts.Sheet)
		return nil
	}
	log.Info("archive written",
		"file", filepath.Base(path), "archive", outPath, "packaged", result.Packaged)
	return nil
}

// waitStable retries opening the workbook with backoff while the producer
// may still be writing it.
func waitStable(ctx context.Context, path string, settle time.Duration) error {
	return retry.Do(
		func() error {
			wb, err := workbook.Open(path)
			if err != nil {
				return err
			}
			return wb.Close()
		},
		retry.Context(ctx),
		retry.Attempts(6),
		retry.Delay(settle),
	)
}
