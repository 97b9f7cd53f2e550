package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName names the tracer and meter of every sbfl component.
const instrumentationName = "sbfl"

// Providers holds the initialized observability providers.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown writes the metrics textfile (if configured), flushes pending
	// telemetry and releases resources. Must be called before process exit.
	Shutdown func(ctx context.Context) error
}

// closers runs registered cleanup steps in reverse order of registration.
type closers []func(ctx context.Context) error

func (c *closers) add(fn func(ctx context.Context) error) {
	*c = append(*c, fn)
}

func (c closers) close(ctx context.Context) error {
	errs := make([]error, 0, len(c))
	for _, fn := range slices.Backward(c) {
		errs = append(errs, fn(ctx))
	}

	return errors.Join(errs...)
}

// Init installs global tracer and meter providers and returns handles to
// them. Without an OTLP endpoint or a metrics file every provider is a no-op.
func Init(ctx context.Context, cfg Config) (Providers, error) {
	res, err := newResource(ctx, cfg)
	if err != nil {
		return Providers{}, err
	}

	var cleanup closers

	tp, err := tracerProvider(ctx, cfg, res, &cleanup)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("build tracer provider: %w", err), cleanup.close(ctx))
	}

	mp, err := meterProvider(ctx, cfg, res, &cleanup)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("build meter provider: %w", err), cleanup.close(ctx))
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return Providers{
		Tracer: tp.Tracer(instrumentationName),
		Meter:  mp.Meter(instrumentationName),
		Logger: NewLogger(cfg),
		Shutdown: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return cleanup.close(ctx)
		},
	}, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	optional := []struct {
		value string
		attr  func(string) attribute.KeyValue
	}{
		{cfg.ServiceVersion, semconv.ServiceVersion},
		{cfg.Environment, semconv.DeploymentEnvironment},
		{string(cfg.Mode), attribute.Key("app.mode").String},
	}

	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, o.attr(o.value))
		}
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

// tracerProvider exports spans over OTLP gRPC through the attribute filter.
func tracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource, cleanup *closers,
) (trace.TracerProvider, error) {
	if cfg.OTLPEndpoint == "" {
		return nooptrace.NewTracerProvider(), nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	// Dropped attributes are only reported when traces are being debugged.
	var dropLog *slog.Logger
	if cfg.DebugTrace {
		dropLog = NewLogger(Config{LogLevel: slog.LevelWarn, ServiceName: cfg.ServiceName, Mode: cfg.Mode})
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(exporter), dropLog)),
	)
	cleanup.add(tp.Shutdown)

	return tp, nil
}

func selectSampler(cfg Config) sdktrace.Sampler {
	switch {
	case cfg.DebugTrace:
		return sdktrace.AlwaysSample()
	case cfg.SampleRatio > 0 && cfg.SampleRatio < 1:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// meterProvider attaches an OTLP periodic reader and a textfile sink as
// configured. Closers run in reverse, so the textfile is written before the
// provider shuts its readers down.
func meterProvider(
	ctx context.Context, cfg Config, res *resource.Resource, cleanup *closers,
) (metric.MeterProvider, error) {
	if cfg.OTLPEndpoint == "" && cfg.MetricsFile == "" {
		return noopmetric.NewMeterProvider(), nil
	}

	readers := make([]sdkmetric.Option, 0, 2)

	if cfg.OTLPEndpoint != "" {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		if len(cfg.OTLPHeaders) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}

		readers = append(readers, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	var sink *TextfileSink

	if cfg.MetricsFile != "" {
		var err error

		sink, err = NewTextfileSink(cfg.MetricsFile)
		if err != nil {
			return nil, err
		}

		readers = append(readers, sdkmetric.WithReader(sink.Reader()))
	}

	mp := sdkmetric.NewMeterProvider(append(readers, sdkmetric.WithResource(res))...)
	cleanup.add(mp.Shutdown)

	if sink != nil {
		cleanup.add(func(context.Context) error { return sink.Write() })
	}

	return mp, nil
}
