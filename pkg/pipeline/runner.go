// Package pipeline runs the fault localization pass: aggregate record files,
// score and rank methods, then export the ranking.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/export"
	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
)

const (
	opRun     = "run"
	opPublish = "publish"
	opRank    = "rank"

	spanRun       = "sbfl.run"
	spanAggregate = "sbfl.aggregate"
	spanRank      = "sbfl.rank"
	spanExport    = "sbfl.export"
)

// Runner executes ranking passes. A Runner keeps no state between runs and
// is safe for concurrent use.
type Runner struct {
	aggregator     *coverage.Aggregator
	exporters      []export.Exporter
	fileName       string
	outputDir      string
	snapshotPath   string
	logger         *slog.Logger
	tracer         trace.Tracer
	red            *observability.REDMetrics
	rankingMetrics *observability.RankingMetrics
}

// Result describes one completed run.
type Result struct {
	Table   *coverage.Table
	Entries []ranking.Entry

	// Files lists the paths written, CSV first.
	Files []string

	// Written is false when the run found no records and produced no output.
	Written bool

	Duration time.Duration
}

// NewRunner creates a Runner. Without options it reads ".txt" records
// sequentially and writes only Suspicion.csv.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		fileName: export.DefaultFileName,
		logger:   slog.Default(),
		tracer:   nooptrace.NewTracerProvider().Tracer("sbfl"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.aggregator == nil {
		r.aggregator = coverage.NewAggregator(coverage.WithLogger(r.logger))
	}

	r.exporters = withCSV(r.exporters)

	return r
}

func withCSV(exporters []export.Exporter) []export.Exporter {
	for _, exp := range exporters {
		if exp.Name() == export.FormatCSV {
			return exporters
		}
	}

	return append([]export.Exporter{export.CSV{}}, exporters...)
}

// Run aggregates the records in dir, ranks every method and exports the
// ranking. The first forcedFailures records are treated as failed.
// A directory without usable records is a no-op: nothing is written and the
// error is nil.
func (r *Runner) Run(ctx context.Context, dir string, forcedFailures int) (*Result, error) {
	var result *Result

	err := r.red.Observe(ctx, opRun, func(ctx context.Context) error {
		ctx, span := r.tracer.Start(ctx, spanRun)
		defer span.End()

		res, err := r.run(ctx, dir, forcedFailures)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return err
		}

		result = res

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Runner) run(ctx context.Context, dir string, forcedFailures int) (*Result, error) {
	start := time.Now()

	table, err := r.aggregate(ctx, dir, forcedFailures)
	if err != nil {
		return nil, err
	}

	if r.snapshotPath != "" && !table.Empty() {
		err = SaveSnapshot(r.snapshotPath, NewSnapshot(dir, forcedFailures, table))
		if err != nil {
			return nil, err
		}

		r.logger.InfoContext(ctx, "saved aggregation snapshot", "path", r.snapshotPath)
	}

	result, err := r.publish(ctx, dir, forcedFailures, table)
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)

	return result, nil
}

// Publish ranks an existing table and exports it into dir. It backs
// re-rendering from a snapshot without rescanning records.
func (r *Runner) Publish(ctx context.Context, dir string, forcedFailures int, table *coverage.Table) (*Result, error) {
	var result *Result

	err := r.red.Observe(ctx, opPublish, func(ctx context.Context) error {
		start := time.Now()

		res, err := r.publish(ctx, dir, forcedFailures, table)
		if err != nil {
			return err
		}

		res.Duration = time.Since(start)
		result = res

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Rank aggregates the records in dir and ranks every method without
// exporting anything. It uses the same aggregator as Run.
func (r *Runner) Rank(ctx context.Context, dir string, forcedFailures int) (*Result, error) {
	var result *Result

	err := r.red.Observe(ctx, opRank, func(ctx context.Context) error {
		start := time.Now()

		table, err := r.aggregate(ctx, dir, forcedFailures)
		if err != nil {
			return err
		}

		result = &Result{Table: table, Duration: time.Since(start)}
		if !table.Empty() {
			result.Entries = r.rank(ctx, table)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Runner) publish(ctx context.Context, dir string, forcedFailures int, table *coverage.Table) (*Result, error) {
	if table == nil || table.Empty() {
		r.logger.InfoContext(ctx, "no coverage records found, nothing to export", "dir", dir)
		r.recordRun(ctx, table, nil, nil)

		return &Result{Table: table}, nil
	}

	entries := r.rank(ctx, table)

	files, err := r.export(ctx, export.NewReport(dir, forcedFailures, table, entries), dir)
	if err != nil {
		return nil, err
	}

	r.recordRun(ctx, table, entries, files)

	r.logger.InfoContext(ctx, "completed exporting suspicion data",
		"methods", len(entries), "files", len(files))

	return &Result{Table: table, Entries: entries, Files: files, Written: true}, nil
}

func (r *Runner) aggregate(ctx context.Context, dir string, forcedFailures int) (*coverage.Table, error) {
	ctx, span := r.tracer.Start(ctx, spanAggregate)
	defer span.End()

	start := time.Now()

	table, err := r.aggregator.Aggregate(ctx, dir, forcedFailures)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("aggregate %s: %w", dir, err)
	}

	span.SetAttributes(
		attribute.Int("coverage.records", table.Records),
		attribute.Int("coverage.skipped", table.Skipped),
		attribute.Int("coverage.passed", table.TotalPassed),
		attribute.Int("coverage.failed", table.TotalFailed),
	)

	r.logger.DebugContext(ctx, "aggregation finished",
		"records", table.Records, "skipped", table.Skipped,
		"methods", table.Len(), "duration", time.Since(start))

	return table, nil
}

func (r *Runner) rank(ctx context.Context, table *coverage.Table) []ranking.Entry {
	_, span := r.tracer.Start(ctx, spanRank)
	defer span.End()

	start := time.Now()
	entries := ranking.Rank(table)

	span.SetAttributes(attribute.Int("ranking.methods", len(entries)))

	r.logger.DebugContext(ctx, "ranking finished", "methods", len(entries), "duration", time.Since(start))

	return entries
}

func (r *Runner) export(ctx context.Context, report *export.Report, dir string) ([]string, error) {
	if r.outputDir != "" {
		dir = r.outputDir
	}

	files := make([]string, 0, len(r.exporters))

	for _, exp := range r.exporters {
		path := export.OutputPath(dir, r.fileName, exp)

		err := r.exportOne(ctx, exp, path, report)
		if err != nil {
			return files, err
		}

		files = append(files, path)
	}

	return files, nil
}

func (r *Runner) exportOne(ctx context.Context, exp export.Exporter, path string, report *export.Report) error {
	ctx, span := r.tracer.Start(ctx, spanExport, trace.WithAttributes(attribute.String("export.format", exp.Name())))
	defer span.End()

	start := time.Now()

	err := exp.Export(path, report)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	r.logger.DebugContext(ctx, "exported", "format", exp.Name(), "path", path, "duration", time.Since(start))

	return nil
}

func (r *Runner) recordRun(ctx context.Context, table *coverage.Table, entries []ranking.Entry, files []string) {
	if r.rankingMetrics == nil {
		return
	}

	stats := observability.RunStats{Methods: len(entries)}

	if table != nil {
		stats.Records = table.Records
		stats.Skipped = table.Skipped
		stats.TotalPassed = table.TotalPassed
		stats.TotalFailed = table.TotalFailed
	}

	if len(files) > 0 {
		for _, exp := range r.exporters[:len(files)] {
			stats.Formats = append(stats.Formats, exp.Name())
		}
	}

	r.rankingMetrics.RecordRun(ctx, stats)
}
