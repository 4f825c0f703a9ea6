package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ujiie/xlpix/internal/cli"
	"github.com/ujiie/xlpix/pkg/xlpix"
)

// errNothingExtracted is the explicit empty-result condition: the run
// succeeded but found nothing to package, so no archive is left behind.
var errNothingExtracted = errors.New("no images were extracted; ensure images are anchored in the image column")

var (
	extractFlags extractionFlags
	extractOut   string
)

var extractCmd = &cobra.Command{
	Use:   "extract [workbook]",
	Short: "Package a sheet's images into a named zip archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := checkInput(path); err != nil {
			return err
		}
		opts, err := extractFlags.options(cmd)
		if err != nil {
			return err
		}

		outPath := extractOut
		if outPath == "" {
			outPath = xlpix.ArchiveRootName(filepath.Base(path)) + ".zip"
		}
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create archive file: %w", err)
		}

		result, err := xlpix.Extract(cmd.Context(), out, path, opts)
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
			return errNothingExtracted
		}

		return cli.Output(map[string]any{
			"archive":  outPath,
			"packaged": result.Packaged,
			"skipped":  result.Skipped,
			"warnings": result.Manifest.Warnings,
		})
	},
}

func init() {
	addExtractionFlags(extractCmd, &extractFlags)
	extractCmd.MarkFlagRequired("sheet")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "archive output path (default: <workbook>.zip)")
}
