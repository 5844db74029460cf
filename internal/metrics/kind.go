package metrics

import "fmt"

// Kind is the observability category of a metric. It decides how the metric
// is constructed in a Registry and which value shapes are accepted.
type Kind string

// Supported metric kinds. The set is closed; ParseKind rejects anything else.
const (
	KindGauge     Kind = "gauge"
	KindSummary   Kind = "summary"
	KindHistogram Kind = "histogram"
	KindInfo      Kind = "info"
)

var kinds = []Kind{KindGauge, KindSummary, KindHistogram, KindInfo}

// Kinds returns all supported kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the serialized form of k.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a serialized kind. Matching is case-sensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("metrics: unknown metric kind %q (must be one of %v)", s, kinds)
	}
	return k, nil
}
