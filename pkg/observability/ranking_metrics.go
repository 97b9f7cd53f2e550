package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOutcome = "outcome"
	attrFormat  = "format"
)

var methodsBuckets = []float64{0, 10, 100, 1_000, 10_000, 100_000, 1_000_000}

// RankingMetrics holds instruments describing what a run consumed and produced.
type RankingMetrics struct {
	records  metric.Int64Counter
	skipped  metric.Int64Counter
	tests    metric.Int64Counter
	methods  metric.Int64Histogram
	exported metric.Int64Counter
}

// RunStats summarizes one run, decoupled from the pipeline types.
type RunStats struct {
	Records     int
	Skipped     int
	TotalPassed int
	TotalFailed int
	Methods     int
	Formats     []string
}

// NewRankingMetrics creates ranking metric instruments from the given meter.
func NewRankingMetrics(mt metric.Meter) (*RankingMetrics, error) {
	records, errRecords := mt.Int64Counter("sbfl.coverage.records.total",
		metric.WithDescription("Record files folded into aggregation tables"), metric.WithUnit("{record}"))
	skipped, errSkipped := mt.Int64Counter("sbfl.coverage.skipped.total",
		metric.WithDescription("Record files skipped as empty, malformed, binary or unreadable"),
		metric.WithUnit("{record}"))
	tests, errTests := mt.Int64Counter("sbfl.coverage.tests.total",
		metric.WithDescription("Tests counted by effective outcome"), metric.WithUnit("{test}"))
	methods, errMethods := mt.Int64Histogram("sbfl.ranking.methods",
		metric.WithDescription("Distinct methods ranked per run"), metric.WithUnit("{method}"),
		metric.WithExplicitBucketBoundaries(methodsBuckets...))
	exported, errExported := mt.Int64Counter("sbfl.export.files.total",
		metric.WithDescription("Files written by export format"), metric.WithUnit("{file}"))

	if err := errors.Join(errRecords, errSkipped, errTests, errMethods, errExported); err != nil {
		return nil, fmt.Errorf("create ranking metrics: %w", err)
	}

	return &RankingMetrics{records: records, skipped: skipped, tests: tests, methods: methods, exported: exported}, nil
}

// RecordRun records the statistics of a completed run. Safe on a nil receiver.
func (rm *RankingMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if rm == nil {
		return
	}

	rm.records.Add(ctx, int64(stats.Records))
	rm.skipped.Add(ctx, int64(stats.Skipped))
	rm.tests.Add(ctx, int64(stats.TotalPassed), metric.WithAttributes(attribute.String(attrOutcome, "passed")))
	rm.tests.Add(ctx, int64(stats.TotalFailed), metric.WithAttributes(attribute.String(attrOutcome, "failed")))
	rm.methods.Record(ctx, int64(stats.Methods))

	for _, format := range stats.Formats {
		rm.exported.Add(ctx, 1, metric.WithAttributes(attribute.String(attrFormat, format)))
	}
}
