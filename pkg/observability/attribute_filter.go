package observability

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// attrAction is what the span filter does with one attribute key.
type attrAction int

const (
	attrDrop attrAction = iota
	attrKeep
	attrBaseName
)

// exportedPrefixes are attribute namespaces sbfl spans may carry.
var exportedPrefixes = []string{"sbfl.", "coverage.", "ranking.", "export.", "mcp.", "error."}

// keyActions override the prefix rule. Directories are reduced to their last
// element and method signatures never leave the process.
var keyActions = map[string]attrAction{
	"error":          attrKeep,
	"coverage.dir":   attrBaseName,
	"export.path":    attrBaseName,
	"ranking.method": attrDrop,
}

func actionFor(key string) attrAction {
	if action, ok := keyActions[key]; ok {
		return action
	}

	for _, prefix := range exportedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return attrKeep
		}
	}

	return attrDrop
}

// spanScrubber rewrites the attributes of ended spans before a delegate
// processor exports them.
type spanScrubber struct {
	next   sdktrace.SpanProcessor
	logger *slog.Logger
}

// NewAttributeFilter wraps next so that exported spans only carry sbfl
// attribute namespaces. Path attributes are shortened to their base name.
// A non-nil logger receives one warning per dropped key.
func NewAttributeFilter(next sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &spanScrubber{next: next, logger: logger}
}

func (s *spanScrubber) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {
	s.next.OnStart(parent, span)
}

func (s *spanScrubber) OnEnd(span sdktrace.ReadOnlySpan) {
	s.next.OnEnd(&scrubbedSpan{ReadOnlySpan: span, attrs: s.scrub(span.Attributes())})
}

func (s *spanScrubber) Shutdown(ctx context.Context) error {
	if err := s.next.Shutdown(ctx); err != nil {
		return fmt.Errorf("span scrubber shutdown: %w", err)
	}

	return nil
}

func (s *spanScrubber) ForceFlush(ctx context.Context) error {
	if err := s.next.ForceFlush(ctx); err != nil {
		return fmt.Errorf("span scrubber flush: %w", err)
	}

	return nil
}

func (s *spanScrubber) scrub(in []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(in))

	for _, kv := range in {
		switch actionFor(string(kv.Key)) {
		case attrKeep:
			out = append(out, kv)
		case attrBaseName:
			out = append(out, kv.Key.String(filepath.Base(kv.Value.Emit())))
		case attrDrop:
			if s.logger != nil {
				s.logger.Warn("span attribute dropped", "key", string(kv.Key))
			}
		}
	}

	return out
}

// scrubbedSpan overrides Attributes with a precomputed list.
type scrubbedSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *scrubbedSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
