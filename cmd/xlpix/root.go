package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ujiie/xlpix/internal/cli"
	"github.com/ujiie/xlpix/internal/config"
	"github.com/ujiie/xlpix/internal/overrides"
	"github.com/ujiie/xlpix/pkg/xlpix"
	"github.com/ujiie/xlpix/pkg/xlpix/workbook"
	"github.com/ujiie/xlpix/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "xlpix",
	Short: "Extract and package images embedded in spreadsheet workbooks",
	Long: `xlpix locates raster images embedded in a workbook sheet, names each one
after the label resolved for its anchor row (nearest non-empty label above,
the same-row cell value, or an external override list), and packages the
result into a zip archive with a summary and a machine-readable manifest.

Preview mode reports the row/label mapping and its conflicts without
writing anything; extract mode commits the archive.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./xlpix.yaml or ~/.xlpix/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cli.SetOutputFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile)
		return err
	}

	rootCmd.AddCommand(sheetsCmd, previewCmd, extractCmd, watchCmd, versionCmd)
}

// checkInput gates a workbook path before any parsing: the file must
// exist, carry a supported extension, and fit under the size ceiling.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("workbook not found: %s", path)
	}
	if err := workbook.CheckExtension(path); err != nil {
		return err
	}
	if cfg.MaxFileBytes > 0 && info.Size() > cfg.MaxFileBytes {
		return fmt.Errorf("workbook too large: %d bytes (limit %d)", info.Size(), cfg.MaxFileBytes)
	}
	return nil
}

// extractionFlags are the mapping knobs shared by preview, extract, and
// watch. Unset flags fall back to the loaded config.
type extractionFlags struct {
	sheet          string
	imageCol       string
	labelCol       string
	fallbackCol    string
	fallbackPrefix string
	strategy       string
	overridesPath  string
	startRow       int
	rowQualified   bool
	autoDetect     bool
	mediaFallback  bool
}

func addExtractionFlags(cmd *cobra.Command, f *extractionFlags) {
	cmd.Flags().StringVarP(&f.sheet, "sheet", "s", "", "sheet name (required)")
	cmd.Flags().StringVar(&f.imageCol, "image-col", "", "column images are anchored in (letter or number)")
	cmd.Flags().StringVar(&f.labelCol, "label-col", "", "column holding naming labels (letter or number)")
	cmd.Flags().StringVar(&f.fallbackCol, "fallback-col", "", "secondary label column (letter or number)")
	cmd.Flags().StringVar(&f.fallbackPrefix, "fallback-prefix", "", "prefix for fallback-column labels")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "label resolution strategy: nearest-above, same-row, override")
	cmd.Flags().StringVar(&f.overridesPath, "overrides", "", "JSON file with an external row/label override list")
	cmd.Flags().IntVar(&f.startRow, "start-row", 0, "first data row; anchors above it are ignored")
	cmd.Flags().BoolVar(&f.rowQualified, "row-qualified", false, "embed row numbers in output filenames")
	cmd.Flags().BoolVar(&f.autoDetect, "auto-detect", false, "detect image/label columns from header text")
	cmd.Flags().BoolVar(&f.mediaFallback, "media-fallback", false, "pair unanchored media parts with labeled rows when no anchors exist")
}

// options merges flags over config into core extraction options.
func (f *extractionFlags) options(cmd *cobra.Command) (xlpix.Options, error) {
	opts := xlpix.DefaultOptions()
	opts.Sheet = f.sheet
	opts.Logger = logger

	pick := func(flagValue, cfgValue string) string {
		if flagValue != "" {
			return flagValue
		}
		return cfgValue
	}

	var err error
	if opts.ImageColumn, err = config.ParseColumn(pick(f.imageCol, cfg.ImageColumn)); err != nil {
		return opts, err
	}
	if opts.LabelColumn, err = config.ParseColumn(pick(f.labelCol, cfg.LabelColumn)); err != nil {
		return opts, err
	}
	if opts.FallbackColumn, err = config.ParseColumn(pick(f.fallbackCol, cfg.FallbackColumn)); err != nil {
		return opts, err
	}
	if opts.Strategy, err = xlpix.ParseStrategy(pick(f.strategy, cfg.Strategy)); err != nil {
		return opts, err
	}

	opts.FallbackPrefix = pick(f.fallbackPrefix, cfg.FallbackPrefix)
	opts.StartRow = cfg.StartRow
	if cmd.Flags().Changed("start-row") {
		opts.StartRow = f.startRow
	}
	opts.RowQualified = f.rowQualified || cfg.RowQualified
	opts.AutoDetect = f.autoDetect || cfg.AutoDetect
	opts.MediaFallback = f.mediaFallback || cfg.MediaFallback

	if f.overridesPath != "" {
		opts.Strategy = xlpix.StrategyOverride
		if opts.Overrides, err = overrides.Load(f.overridesPath); err != nil {
			return opts, err
		}
	}

	if len(cfg.Headers.Image)+len(cfg.Headers.Label)+len(cfg.Headers.Fallback) > 0 {
		vocab := xlpix.DefaultLayoutVocab()
		if len(cfg.Headers.Image) > 0 {
			vocab.ImageHeaders = cfg.Headers.Image
		}
		if len(cfg.Headers.Label) > 0 {
			vocab.LabelHeaders = cfg.Headers.Label
		}
		if len(cfg.Headers.Fallback) > 0 {
			vocab.FallbackHeaders = cfg.Headers.Fallback
		}
		opts.Vocab = &vocab
	}

	return opts, nil
}
