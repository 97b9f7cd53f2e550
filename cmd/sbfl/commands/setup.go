package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/config"
	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/export"
	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
	"github.com/Sumatoshi-tech/sbfl/pkg/plot"
	"github.com/Sumatoshi-tech/sbfl/pkg/version"
)

// telemetry bundles the observability handles a command needs.
type telemetry struct {
	providers observability.Providers
	red       *observability.REDMetrics
	ranking   *observability.RankingMetrics
}

func (t *telemetry) logger() *slog.Logger {
	return t.providers.Logger
}

func (t *telemetry) shutdown() {
	err := t.providers.Shutdown(context.Background())
	if err != nil {
		t.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

type telemetryOptions struct {
	mode        observability.AppMode
	logging     config.LoggingConfig
	metricsFile string
	logWriter   io.Writer
	verbose     bool
	silent      bool
	debugTrace  bool
}

func initTelemetry(ctx context.Context, opts telemetryOptions) (*telemetry, error) {
	cfg := observability.FromEnv(observability.DefaultConfig())
	cfg.ServiceVersion = version.Version
	cfg.Mode = opts.mode
	cfg.MetricsFile = opts.metricsFile
	cfg.LogWriter = opts.logWriter
	cfg.LogLevel = observability.ParseLogLevel(opts.logging.Level)
	cfg.LogJSON = strings.EqualFold(opts.logging.Format, "json") || opts.mode == observability.ModeMCP
	cfg.DebugTrace = opts.debugTrace

	switch {
	case opts.silent:
		cfg.LogLevel = slog.LevelError
	case opts.verbose:
		cfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	tel := &telemetry{providers: providers}

	tel.red, err = observability.NewREDMetrics(providers.Meter)
	if err != nil {
		tel.shutdown()

		return nil, err
	}

	tel.ranking, err = observability.NewRankingMetrics(providers.Meter)
	if err != nil {
		tel.shutdown()

		return nil, err
	}

	return tel, nil
}

// outputFlags are shared by commands that write exports.
type outputFlags struct {
	configPath  string
	formats     []string
	top         int
	outputDir   string
	metricsFile string
	noColor     bool
	silent      bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file (default: .sbfl.yaml in CWD or $HOME)")
	cmd.Flags().StringSliceVar(&f.formats, "formats", nil,
		"Export formats: "+strings.Join(export.Formats(), ", ")+" (csv is always written)")
	cmd.Flags().IntVar(&f.top, "top", 0, "Ranked methods printed to the terminal (0 = config value)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Directory for exports (default: the record directory)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path on exit")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&f.silent, "silent", false, "Print nothing but errors")
}

// loadConfig reads the config file and applies flags the user set explicitly.
func (f *outputFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("formats") {
		cfg.Output.Formats = f.formats
	}

	if cmd.Flags().Changed("top") {
		cfg.Output.Top = f.top
	}

	return cfg, nil
}

func (f *outputFlags) isSilent(cmd *cobra.Command) bool {
	return f.silent || boolFlag(cmd, flagQuiet)
}

func (f *outputFlags) telemetry(cmd *cobra.Command, cfg *config.Config) (*telemetry, error) {
	return initTelemetry(cmd.Context(), telemetryOptions{
		mode:        observability.ModeCLI,
		logging:     cfg.Logging,
		metricsFile: f.metricsFile,
		logWriter:   cmd.ErrOrStderr(),
		verbose:     boolFlag(cmd, flagVerbose),
		silent:      f.isSilent(cmd),
	})
}

// runnerOptions translates configuration into pipeline options.
func runnerOptions(cfg *config.Config, tel *telemetry, outputDir string) ([]pipeline.Option, error) {
	maxBytes, err := cfg.Coverage.MaxRecordBytes()
	if err != nil {
		return nil, err
	}

	exporters, err := export.ForFormats(cfg.Output.Formats)
	if err != nil {
		return nil, err
	}

	theme, err := plot.ParseTheme(cfg.Output.Theme)
	if err != nil {
		return nil, err
	}

	for i, exp := range exporters {
		if page, ok := exp.(export.HTML); ok {
			page.Theme = theme
			exporters[i] = page
		}
	}

	logger := tel.logger()

	aggregator := coverage.NewAggregator(
		coverage.WithExtension(cfg.Coverage.Extension),
		coverage.WithWorkers(cfg.Coverage.Workers),
		coverage.WithMaxRecordSize(maxBytes),
		coverage.WithLogger(observability.Component(logger, "aggregator")),
	)

	return []pipeline.Option{
		pipeline.WithAggregator(aggregator),
		pipeline.WithExporters(exporters...),
		pipeline.WithFileName(cfg.Output.FileName),
		pipeline.WithOutputDir(outputDir),
		pipeline.WithLogger(observability.Component(logger, "pipeline")),
		pipeline.WithTracer(tel.providers.Tracer),
		pipeline.WithREDMetrics(tel.red),
		pipeline.WithRankingMetrics(tel.ranking),
	}, nil
}
