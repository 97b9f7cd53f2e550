package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
)

const opPrefix = "mcp."

// errToolResult marks a call that returned an IsError result without a Go error.
var errToolResult = errors.New("tool reported an error result")

type toolHandler[In any] func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error)

type instrumentation struct {
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// instrument wraps handler with a server span and RED metrics under the
// operation name "mcp.<tool>". Sampled calls get a trailing "trace_id=<id>"
// text block so clients can correlate a response with its trace.
func instrument[In any](inst instrumentation, name string, handler toolHandler[In]) toolHandler[In] {
	op := opPrefix + name

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		span := trace.SpanFromContext(ctx)

		if inst.tracer != nil {
			ctx, span = inst.tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		var (
			result  *mcpsdk.CallToolResult
			output  ToolOutput
			callErr error
		)

		// Observe sees IsError results as failures; the Go error returned to
		// the SDK stays the handler's own.
		_ = inst.metrics.Observe(ctx, op, func(ctx context.Context) error {
			result, output, callErr = handler(ctx, req, in)
			if callErr != nil {
				return callErr
			}

			if result != nil && result.IsError {
				return errToolResult
			}

			return nil
		})

		if inst.tracer == nil {
			return result, output, callErr
		}

		if callErr != nil || (result != nil && result.IsError) {
			span.SetAttributes(attribute.Bool("error", true))
			span.SetStatus(codes.Error, name)
		}

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{Text: "trace_id=" + sc.TraceID().String()})
		}

		return result, output, callErr
	}
}
