package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry stages the metrics of a single push. A new Registry must be created
// for every push; it is not safe for concurrent use.
type Registry struct {
	reg    *prometheus.Registry
	series map[string]struct{}
	count  int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		reg:    prometheus.NewRegistry(),
		series: make(map[string]struct{}),
	}
}

// Register constructs m as a Prometheus collector and adds it to the registry.
// It fails with *TypeMismatchError when the value does not fit the kind and
// with *DuplicateNameError when any series name it exposes is already taken,
// e.g. a gauge "x_sum" next to a summary "x".
func (r *Registry) Register(m Metric) (prometheus.Collector, error) {
	name := m.ExposedName()
	series := m.SeriesNames()
	for _, s := range series {
		if _, exists := r.series[s]; exists {
			return nil, &DuplicateNameError{Name: s}
		}
	}

	c, err := m.collector()
	if err != nil {
		return nil, err
	}

	if err := r.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil, &DuplicateNameError{Name: name}
		}
		return nil, fmt.Errorf("metrics: register %q: %w", name, err)
	}

	for _, s := range series {
		r.series[s] = struct{}{}
	}
	r.count++
	return c, nil
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	return r.count
}

// Gatherer returns the underlying gatherer for transmission.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
