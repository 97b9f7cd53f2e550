package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileSink collects OTel metrics into a private Prometheus registry and
// dumps them in text exposition format, for batch jobs scraped through the
// node_exporter textfile collector.
type TextfileSink struct {
	path     string
	registry *prometheus.Registry
	reader   sdkmetric.Reader
}

// NewTextfileSink creates a sink writing to path. Each sink owns its own
// registry, so several sinks never conflict.
func NewTextfileSink(path string) (*TextfileSink, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileSink{path: path, registry: registry, reader: exporter}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (s *TextfileSink) Reader() sdkmetric.Reader {
	return s.reader
}

// Gatherer exposes the underlying registry.
func (s *TextfileSink) Gatherer() prometheus.Gatherer {
	return s.registry
}

// Write gathers the current metric values and writes them to the sink path.
// prometheus.WriteToTextfile writes through a temporary file and renames it.
func (s *TextfileSink) Write() error {
	err := prometheus.WriteToTextfile(s.path, s.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", s.path, err)
	}

	return nil
}
