package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ujiie/xlpix/internal/watch"
)

var (
	watchFlags  extractionFlags
	watchDir    string
	watchOutDir string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract every workbook dropped into a directory",
	Long: `Watch monitors an intake directory and runs extraction on each workbook
that appears in it, writing the archives to the output directory. When no
sheet is configured the workbook's first sheet is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := watchDir
		if dir == "" {
			dir = cfg.Watch.Dir
		}
		if dir == "" {
			return fmt.Errorf("no intake directory: pass --dir or set watch.dir in config")
		}
		outDir := watchOutDir
		if outDir == "" {
			outDir = cfg.Watch.OutputDir
		}

		opts, err := watchFlags.options(cmd)
		if err != nil {
			return err
		}
		if opts.Sheet == "" {
			opts.Sheet = cfg.Watch.Sheet
		}

		return watch.Run(cmd.Context(), watch.Options{
			Dir:          dir,
			OutputDir:    outDir,
			Extract:      opts,
			MaxFileBytes: cfg.MaxFileBytes,
			Logger:       logger,
		})
	},
}

func init() {
	addExtractionFlags(watchCmd, &watchFlags)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "intake directory to watch")
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory archives are written to")
}
