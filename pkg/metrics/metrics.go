// Package metrics provides interfaces for defining self-contained, named
// metrics and an ordered registry to evaluate them together.
//
// Each metric is a computation unit that:
//   - Declares its input type
//   - Computes a typed output
//   - Provides metadata for documentation and report headers
package metrics

import (
	"errors"
	"fmt"
)

// ErrDuplicateMetric is returned when a metric name is registered twice.
var ErrDuplicateMetric = errors.New("metric already registered")

// Metric is the core interface that all metrics must implement.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for reports.
	DisplayName() string

	// Description explains what the metric measures and how to read it.
	Description() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Func adapts a plain function plus metadata into a Metric.
type Func[In, Out any] struct {
	MetricMeta

	Fn func(In) Out
}

// Compute calls the wrapped function.
func (f Func[In, Out]) Compute(input In) Out { return f.Fn(input) }

// Registry holds a collection of metrics evaluated in registration order.
type Registry[In, Out any] struct {
	order   []string
	metrics map[string]Metric[In, Out]
}

// NewRegistry creates an empty metric registry.
func NewRegistry[In, Out any]() *Registry[In, Out] {
	return &Registry[In, Out]{metrics: make(map[string]Metric[In, Out])}
}

// Register adds a metric to the registry.
func (r *Registry[In, Out]) Register(m Metric[In, Out]) error {
	if _, exists := r.metrics[m.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, m.Name())
	}

	r.metrics[m.Name()] = m
	r.order = append(r.order, m.Name())

	return nil
}

// Get retrieves a metric by name.
func (r *Registry[In, Out]) Get(name string) (Metric[In, Out], bool) {
	m, ok := r.metrics[name]

	return m, ok
}

// Names returns all registered metric names in registration order.
func (r *Registry[In, Out]) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// All returns the registered metrics in registration order.
func (r *Registry[In, Out]) All() []Metric[In, Out] {
	out := make([]Metric[In, Out], 0, len(r.order))

	for _, name := range r.order {
		out = append(out, r.metrics[name])
	}

	return out
}

// ComputeAll evaluates every metric against input, keyed by metric name.
func (r *Registry[In, Out]) ComputeAll(input In) map[string]Out {
	out := make(map[string]Out, len(r.order))

	for _, name := range r.order {
		out[name] = r.metrics[name].Compute(input)
	}

	return out
}
