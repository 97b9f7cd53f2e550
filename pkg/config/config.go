// Package config loads and validates sbfl settings from .sbfl.yaml, SBFL_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Sentinel validation errors.
var (
	ErrNegativeForcedFailures = errors.New("coverage.forced_failures must not be negative")
	ErrNegativeWorkers        = errors.New("coverage.workers must not be negative")
	ErrInvalidExtension       = errors.New("coverage.extension must start with a dot")
	ErrInvalidSize            = errors.New("invalid size")
	ErrInvalidFileName        = errors.New("output.file_name must be a plain file name")
	ErrUnknownFormat          = errors.New("unknown output format")
	ErrNegativeTop            = errors.New("output.top must not be negative")
	ErrUnknownTheme           = errors.New("unknown output.theme")
	ErrInvalidLogLevel        = errors.New("invalid logging.level")
	ErrInvalidLogFormat       = errors.New("invalid logging.format")
)

var (
	// knownFormats mirrors the exporters available to the run command.
	knownFormats    = []string{"csv", "json", "yaml", "yml", "xlsx", "html"}
	knownLogLevels  = []string{"debug", "info", "warn", "error"}
	knownLogFormats = []string{"text", "json"}
	knownThemes     = []string{"light", "dark"}
)

// Config holds all sbfl configuration.
type Config struct {
	Coverage CoverageConfig `mapstructure:"coverage"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CoverageConfig controls how record files are discovered and read.
type CoverageConfig struct {
	Extension      string `mapstructure:"extension"`
	MaxRecordSize  string `mapstructure:"max_record_size"`
	ForcedFailures int    `mapstructure:"forced_failures"`
	Workers        int    `mapstructure:"workers"`
}

// OutputConfig controls which files are written.
type OutputConfig struct {
	FileName string   `mapstructure:"file_name"`
	Formats  []string `mapstructure:"formats"`
	Top      int      `mapstructure:"top"`
	Theme    string   `mapstructure:"theme"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Coverage: CoverageConfig{
			Extension:      DefaultCoverageExtension,
			MaxRecordSize:  DefaultCoverageMaxRecordSize,
			ForcedFailures: DefaultCoverageForcedFailure,
			Workers:        DefaultCoverageWorkers,
		},
		Output: OutputConfig{
			FileName: DefaultOutputFileName,
			Formats:  DefaultOutputFormats(),
			Top:      DefaultOutputTop,
			Theme:    DefaultOutputTheme,
		},
		Logging: LoggingConfig{
			Level:  DefaultLoggingLevel,
			Format: DefaultLoggingFormat,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Coverage.ForcedFailures < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeForcedFailures, c.Coverage.ForcedFailures)
	}

	if c.Coverage.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeWorkers, c.Coverage.Workers)
	}

	if !strings.HasPrefix(c.Coverage.Extension, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, c.Coverage.Extension)
	}

	_, err := c.Coverage.MaxRecordBytes()
	if err != nil {
		return err
	}

	name := c.Output.FileName
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	for _, format := range c.Output.Formats {
		if !slices.Contains(knownFormats, strings.ToLower(format)) {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}
	}

	if c.Output.Top < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTop, c.Output.Top)
	}

	if !slices.Contains(knownThemes, strings.ToLower(c.Output.Theme)) {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, c.Output.Theme)
	}

	if !slices.Contains(knownLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(knownLogFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// MaxRecordBytes parses MaxRecordSize (humanize format, e.g. "16MB", "1MiB").
// An empty string or "0" means unlimited and returns 0.
func (c CoverageConfig) MaxRecordBytes() (int64, error) {
	trimmed := strings.TrimSpace(c.MaxRecordSize)
	if trimmed == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: coverage.max_record_size %q: %w", ErrInvalidSize, c.MaxRecordSize, err)
	}

	return int64(size), nil //nolint:gosec // record size limits are far below MaxInt64.
}
