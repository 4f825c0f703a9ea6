// Package config loads CLI configuration from defaults, an optional YAML
// file, and XLPIX_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
)

// Config is the tool-level configuration. Column values accept either a
// spreadsheet letter ("A", "D") or a 1-based number.
type Config struct {
	ImageColumn    string `mapstructure:"image_column"`
	LabelColumn    string `mapstructure:"label_column"`
	FallbackColumn string `mapstructure:"fallback_column"`
	FallbackPrefix string `mapstructure:"fallback_prefix"`
	Strategy       string `mapstructure:"strategy"`
	StartRow       int    `mapstructure:"start_row"`
	AutoDetect     bool   `mapstructure:"auto_detect"`
	MediaFallback  bool   `mapstructure:"media_fallback"`
	RowQualified   bool   `mapstructure:"row_qualified"`
	// MaxFileBytes gates workbook size before anything is parsed.
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`

	Headers HeadersConfig `mapstructure:"headers"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// HeadersConfig configures the auto-detection header vocabulary.
type HeadersConfig struct {
	Image    []string `mapstructure:"image"`
	Label    []string `mapstructure:"label"`
	Fallback []string `mapstructure:"fallback"`
}

// WatchConfig configures drop-folder mode.
type WatchConfig struct {
	Dir       string `mapstructure:"dir"`
	OutputDir string `mapstructure:"output_dir"`
	Sheet     string `mapstructure:"sheet"`
}

// DefaultConfig returns the stock configuration: images in column A,
// labels in column D, nearest-above resolution, 50 MiB size ceiling.
func DefaultConfig() Config {
	return Config{
		ImageColumn:    "A",
		LabelColumn:    "D",
		FallbackPrefix: "MAT_",
		Strategy:       "nearest-above",
		StartRow:       2,
		MaxFileBytes:   50 * 1024 * 1024,
		Watch: WatchConfig{
			OutputDir: ".",
		},
	}
}

// Load reads configuration from cfgFile, or from ./xlpix.yaml and
// ~/.xlpix/config.yaml when cfgFile is empty. A missing config file is not
// an error; defaults and environment apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("image_column", defaults.ImageColumn)
	v.SetDefault("label_column", defaults.LabelColumn)
	v.SetDefault("fallback_column", defaults.FallbackColumn)
	v.SetDefault("fallback_prefix", defaults.FallbackPrefix)
	v.SetDefault("strategy", defaults.Strategy)
	v.SetDefault("start_row", defaults.StartRow)
	v.SetDefault("max_file_bytes", defaults.MaxFileBytes)
	v.SetDefault("watch.output_dir", defaults.Watch.OutputDir)

	v.SetEnvPrefix("XLPIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("xlpix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.xlpix")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ParseColumn converts a column given as a letter name or a 1-based number
// into its numeric index.
func ParseColumn(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column number must be positive, got %d", n)
		}
		return n, nil
	}
	n, err := excelize.ColumnNameToNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", s, err)
	}
	return n, nil
}
