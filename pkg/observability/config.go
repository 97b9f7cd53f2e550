// Package observability provides OpenTelemetry tracing, metrics and
// trace-aware structured logging for the sbfl CLI and MCP server.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the CLI command execution mode.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName     = "sbfl"
	defaultShutdownTimeout = 5 * time.Second
)

// Standard OTel environment variables read by FromEnv.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
	envEnvironment  = "OTEL_DEPLOYMENT_ENVIRONMENT"
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables OTLP export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling.
	DebugTrace bool

	// SampleRatio is the root sampling ratio. Zero samples everything.
	SampleRatio float64

	// MetricsFile, when set, receives a Prometheus text-format dump of all
	// metrics on shutdown (node_exporter textfile collector format).
	MetricsFile string

	LogLevel slog.Level
	LogJSON  bool

	// LogWriter receives log output. Nil means stderr.
	LogWriter io.Writer

	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// FromEnv fills the OTLP exporter settings from the standard OTel
// environment variables, keeping any value already set in cfg.
func FromEnv(cfg Config) Config {
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
	}

	if cfg.OTLPHeaders == nil {
		cfg.OTLPHeaders = ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
	}

	if !cfg.OTLPInsecure {
		cfg.OTLPInsecure = strings.EqualFold(os.Getenv(envOTLPInsecure), "true")
	}

	if cfg.Environment == "" {
		cfg.Environment = os.Getenv(envEnvironment)
	}

	return cfg
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown values map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseOTLPHeaders parses an OTLP headers string in "key=value,key=value"
// format. Returns nil for empty or invalid input.
func ParseOTLPHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	result := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}

		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
