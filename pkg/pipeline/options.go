package pipeline

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/export"
	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
)

// Option configures a Runner.
type Option func(*Runner)

// WithAggregator sets the aggregator used to scan record directories.
func WithAggregator(a *coverage.Aggregator) Option {
	return func(r *Runner) {
		if a != nil {
			r.aggregator = a
		}
	}
}

// WithExporters sets the output formats. The CSV exporter is always added
// first when missing.
func WithExporters(exporters ...export.Exporter) Option {
	return func(r *Runner) { r.exporters = exporters }
}

// WithFileName sets the CSV file name written into the record directory.
func WithFileName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.fileName = name
		}
	}
}

// WithOutputDir writes exports into dir instead of the record directory.
func WithOutputDir(dir string) Option {
	return func(r *Runner) { r.outputDir = dir }
}

// WithSnapshot saves the aggregation table to path after each non-empty scan.
func WithSnapshot(path string) Option {
	return func(r *Runner) { r.snapshotPath = path }
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer for per-stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithREDMetrics records request, error and duration metrics per run.
func WithREDMetrics(m *observability.REDMetrics) Option {
	return func(r *Runner) { r.red = m }
}

// WithRankingMetrics records what each run consumed and produced.
func WithRankingMetrics(m *observability.RankingMetrics) Option {
	return func(r *Runner) { r.rankingMetrics = m }
}
