package observability_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
)

// Init installs global providers, so these tests do not run in parallel.

func TestInit_NoopWithoutExporters(t *testing.T) {
	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &buf

	providers, err := observability.Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	providers.Logger.Info("hello")
	assert.Contains(t, buf.String(), "service=sbfl")

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_MetricsFileWrittenOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbfl.prom")

	cfg := observability.DefaultConfig()
	cfg.MetricsFile = path
	cfg.LogWriter = &bytes.Buffer{}
	cfg.ShutdownTimeout = time.Second

	providers, err := observability.Init(context.Background(), cfg)
	require.NoError(t, err)

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "run", observability.StatusOK, 20*time.Millisecond)

	ranking, err := observability.NewRankingMetrics(providers.Meter)
	require.NoError(t, err)

	ranking.RecordRun(context.Background(), observability.RunStats{
		Records: 3, TotalPassed: 2, TotalFailed: 1, Methods: 5, Formats: []string{"csv"},
	})

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "sbfl_requests")
	assert.Contains(t, text, "sbfl_coverage_records")
	assert.Contains(t, text, `format="csv"`)
}
