// Package loader turns serialized metric definitions into a metrics.Batch.
//
// Parsing is all-or-nothing: the first invalid record fails the whole load
// and no partial batch is returned.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/simplepipe/internal/fsutil"
	"github.com/plexsphere/simplepipe/internal/metrics"
)

// Record field names.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldValue       = "value"
	FieldKind        = "metric_type"
)

// ErrInvalidMetric matches any *ValidationError.
var ErrInvalidMetric = errors.New("loader: invalid metric record")

// ValidationError identifies the record and field that failed validation.
type ValidationError struct {
	// Index is the zero-based position of the record in its source.
	Index  int
	Field  string
	Reason string
}

// Error returns the formatted error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("loader: record %d: field %q %s", e.Index, e.Field, e.Reason)
}

// Is supports errors.Is matching against ErrInvalidMetric.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidMetric
}

// LoadFile detects the format of the file at path, decodes it and parses the
// records it contains.
func LoadFile(path string) (metrics.Batch, error) {
	format, err := fsutil.DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	records, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", path, err)
	}
	return ParseRecords(records, format)
}

// decode unmarshals a document that must be a sequence of mappings.
func decode(data []byte, format fsutil.Format) ([]map[string]any, error) {
	var records []map[string]any
	switch format {
	case fsutil.FormatJSON:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	case fsutil.FormatYAML:
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	default:
		return nil, &fsutil.UnsupportedFormatError{Suffix: string(format)}
	}
	if records == nil {
		return nil, errors.New("document is not a sequence of metric records")
	}
	return records, nil
}

// ParseRecords converts decoded records into a batch, preserving their order.
// Each record needs a non-empty string name, a string description, a non-null
// value and a metric_type naming a supported kind. Unknown keys are ignored.
func ParseRecords(records []map[string]any, format fsutil.Format) (metrics.Batch, error) {
	if !format.Valid() {
		return nil, &fsutil.UnsupportedFormatError{Suffix: string(format)}
	}

	batch := make(metrics.Batch, 0, len(records))
	for i, rec := range records {
		m, err := parseRecord(i, rec)
		if err != nil {
			return nil, err
		}
		batch = append(batch, m)
	}
	return batch, nil
}

func parseRecord(i int, rec map[string]any) (metrics.Metric, error) {
	name, err := stringField(i, rec, FieldName)
	if err != nil {
		return metrics.Metric{}, err
	}
	if name == "" {
		return metrics.Metric{}, &ValidationError{Index: i, Field: FieldName, Reason: "must not be empty"}
	}

	description, err := stringField(i, rec, FieldDescription)
	if err != nil {
		return metrics.Metric{}, err
	}

	value, ok := rec[FieldValue]
	if !ok || value == nil {
		return metrics.Metric{}, &ValidationError{Index: i, Field: FieldValue, Reason: "is required"}
	}

	kindStr, err := stringField(i, rec, FieldKind)
	if err != nil {
		return metrics.Metric{}, err
	}
	kind, err := metrics.ParseKind(kindStr)
	if err != nil {
		return metrics.Metric{}, &ValidationError{
			Index:  i,
			Field:  FieldKind,
			Reason: fmt.Sprintf("has unknown value %q (must be one of %v)", kindStr, metrics.Kinds()),
		}
	}

	return metrics.Metric{
		Name:        name,
		Description: description,
		Value:       value,
		Kind:        kind,
	}, nil
}

func stringField(i int, rec map[string]any, field string) (string, error) {
	raw, ok := rec[field]
	if !ok || raw == nil {
		return "", &ValidationError{Index: i, Field: field, Reason: "is required"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Index: i, Field: field, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return s, nil
}
