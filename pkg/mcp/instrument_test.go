package mcp

import (
	"context"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
)

type noInput struct{}

func errorCounts(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "sbfl.errors.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}

	return total
}

func TestInstrument_SpanAndTraceID(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	inst := instrumentation{tracer: tp.Tracer("test")}

	handler := instrument(inst, "echo", func(context.Context, *mcpsdk.CallToolRequest, noInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "ok"}}}, ToolOutput{}, nil
	})

	result, _, err := handler(context.Background(), nil, noInput{})
	require.NoError(t, err)
	require.Len(t, result.Content, 2)

	text, ok := result.Content[1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "trace_id=")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mcp.echo", spans[0].Name())
}

func TestInstrument_ErrorResultCountsAsError(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	handler := instrument(instrumentation{metrics: red}, "echo",
		func(context.Context, *mcpsdk.CallToolRequest, noInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
			return errorResult(errors.New("boom"))
		})

	result, _, err := handler(context.Background(), nil, noInput{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Len(t, result.Content, 1)
	assert.Equal(t, int64(1), errorCounts(t, reader))
}

func TestInstrument_NoDependencies(t *testing.T) {
	t.Parallel()

	handler := instrument(instrumentation{}, "echo",
		func(context.Context, *mcpsdk.CallToolRequest, noInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
			return &mcpsdk.CallToolResult{}, ToolOutput{}, nil
		})

	result, _, err := handler(context.Background(), nil, noInput{})
	require.NoError(t, err)
	assert.Empty(t, result.Content)
}
