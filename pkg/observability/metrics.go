package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation outcomes recorded on the status attribute.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const (
	attrOp     = "op"
	attrStatus = "status"
)

// durationBuckets spans 1ms to 5min in seconds.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300}

// REDMetrics records rate, errors and duration of runs and MCP tool calls,
// keyed by operation name.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	failures metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	requests, errRequests := mt.Int64Counter("sbfl.requests.total",
		metric.WithDescription("Total number of operations"), metric.WithUnit("{request}"))
	duration, errDuration := mt.Float64Histogram("sbfl.request.duration.seconds",
		metric.WithDescription("Operation duration in seconds"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	failures, errFailures := mt.Int64Counter("sbfl.errors.total",
		metric.WithDescription("Total number of failed operations"), metric.WithUnit("{error}"))
	inflight, errInflight := mt.Int64UpDownCounter("sbfl.inflight.requests",
		metric.WithDescription("Number of in-flight operations"), metric.WithUnit("{request}"))

	if err := errors.Join(errRequests, errDuration, errFailures, errInflight); err != nil {
		return nil, fmt.Errorf("create red metrics: %w", err)
	}

	return &REDMetrics{requests: requests, duration: duration, failures: failures, inflight: inflight}, nil
}

// RecordRequest records a completed operation. Safe on a nil receiver.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	opAttr := attribute.String(attrOp, op)
	withStatus := metric.WithAttributes(opAttr, attribute.String(attrStatus, status))

	rm.requests.Add(ctx, 1, withStatus)
	rm.duration.Record(ctx, duration.Seconds(), withStatus)

	if status == StatusError {
		rm.failures.Add(ctx, 1, metric.WithAttributes(opAttr))
	}
}

// TrackInflight counts op as in flight until the returned func is called.
// Safe on a nil receiver.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflight.Add(ctx, 1, attrs)

	return func() { rm.inflight.Add(ctx, -1, attrs) }
}

// Observe runs fn as operation op and records its duration and outcome.
// It returns fn's error. Safe on a nil receiver.
func (rm *REDMetrics) Observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	defer rm.TrackInflight(ctx, op)()

	start := time.Now()
	err := fn(ctx)

	status := StatusOK
	if err != nil {
		status = StatusError
	}

	rm.RecordRequest(ctx, op, status, time.Since(start))

	return err
}
