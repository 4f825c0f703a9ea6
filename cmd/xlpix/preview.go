package main

import (
	"github.com/spf13/cobra"

	"github.com/ujiie/xlpix/internal/cli"
	"github.com/ujiie/xlpix/pkg/xlpix"
)

var previewFlags extractionFlags

var previewCmd = &cobra.Command{
	Use:   "preview [workbook]",
	Short: "Report the image/label mapping without writing an archive",
	Long: `Preview builds the full row mapping for a sheet and reports counts, a
per-label pivot, and every conflict it found (duplicate labels, images
without a resolvable label, labels without images). Nothing is written;
use it to vet a workbook before extract.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkInput(args[0]); err != nil {
			return err
		}
		opts, err := previewFlags.options(cmd)
		if err != nil {
			return err
		}
		report, err := xlpix.Preview(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		return cli.Output(report)
	},
}

func init() {
	addExtractionFlags(previewCmd, &previewFlags)
	previewCmd.MarkFlagRequired("sheet")
}
