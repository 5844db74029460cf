// Package metrics models the metric definitions simplepipe pushes and stages
// them in a per-push Prometheus registry.
package metrics

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// infoSuffix is appended to the name of info metrics, which are exposed as
// a constant gauge carrying the info labels.
const infoSuffix = "_info"

// Metric is a single observability data point. A Metric is treated as
// immutable: registering it never modifies it.
type Metric struct {
	// Name is the external identifier of the metric.
	Name string
	// Description is the help text.
	Description string
	// Value is a number for gauge, summary and histogram metrics and a
	// string-keyed mapping of label values for info metrics. The shape is
	// checked when the metric is registered, not when it is parsed.
	Value any
	// Kind selects how the metric is constructed.
	Kind Kind
}

// Batch is an ordered set of metrics pushed together under one job.
type Batch []Metric

// ExposedName returns the name the metric is registered under.
func (m Metric) ExposedName() string {
	if m.Kind == KindInfo {
		return m.Name + infoSuffix
	}
	return m.Name
}

// SeriesNames returns every sample name the metric exposes once
// registered. Summaries add _sum and _count series to the base name;
// histograms also add _bucket.
func (m Metric) SeriesNames() []string {
	switch m.Kind {
	case KindSummary:
		return []string{m.Name, m.Name + "_sum", m.Name + "_count"}
	case KindHistogram:
		return []string{m.Name, m.Name + "_bucket", m.Name + "_sum", m.Name + "_count"}
	default:
		return []string{m.ExposedName()}
	}
}

// collector constructs the Prometheus collector for m and records its value.
func (m Metric) collector() (prometheus.Collector, error) {
	switch m.Kind {
	case KindGauge:
		v, err := m.number()
		if err != nil {
			return nil, err
		}
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: m.Name,
			Help: m.Description,
		})
		g.Set(v)
		return g, nil

	case KindSummary:
		v, err := m.number()
		if err != nil {
			return nil, err
		}
		s := prometheus.NewSummary(prometheus.SummaryOpts{
			Name: m.Name,
			Help: m.Description,
		})
		s.Observe(v)
		return s, nil

	case KindHistogram:
		v, err := m.number()
		if err != nil {
			return nil, err
		}
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    m.Name,
			Help:    m.Description,
			Buckets: prometheus.DefBuckets,
		})
		h.Observe(v)
		return h, nil

	case KindInfo:
		labels, err := m.labels()
		if err != nil {
			return nil, err
		}
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        m.ExposedName(),
			Help:        m.Description,
			ConstLabels: labels,
		})
		g.Set(1)
		return g, nil

	default:
		return nil, fmt.Errorf("metrics: %q: unsupported metric kind %q", m.Name, m.Kind)
	}
}

// number converts the value of a numeric metric to float64.
func (m Metric) number() (float64, error) {
	if v, ok := toFloat64(m.Value); ok {
		return v, nil
	}
	return 0, &TypeMismatchError{Name: m.Name, Kind: m.Kind, Value: m.Value, Want: "a number"}
}

// labels converts the value of an info metric into a fresh label set.
func (m Metric) labels() (prometheus.Labels, error) {
	mismatch := &TypeMismatchError{Name: m.Name, Kind: m.Kind, Value: m.Value, Want: "a mapping of string values"}

	switch v := m.Value.(type) {
	case map[string]string:
		labels := make(prometheus.Labels, len(v))
		for k, s := range v {
			labels[k] = s
		}
		return labels, nil
	case map[string]any:
		labels := make(prometheus.Labels, len(v))
		for k, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return nil, mismatch
			}
			labels[k] = s
		}
		return labels, nil
	default:
		return nil, mismatch
	}
}

// toFloat64 accepts the numeric shapes produced by JSON and YAML decoding,
// Go numeric values, and numeric strings.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
