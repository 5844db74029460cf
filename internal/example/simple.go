// Package example generates sample metric files.
package example

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/plexsphere/simplepipe/internal/fsutil"
	"github.com/plexsphere/simplepipe/internal/loader"
	"github.com/plexsphere/simplepipe/internal/metrics"
)

// SimpleFile is the file name written by Simple.
const SimpleFile = "metric.json"

// SimpleName is the name of the gauge written by Simple.
const SimpleName = "simple"

// RandomInt returns a random integer in [1, 100].
func RandomInt() int {
	return rand.Intn(100) + 1
}

// Simple writes a one-gauge metric file into dir, standing in for the
// amount of data processed by a job run. The gauge value is taken from
// rnd, or RandomInt when rnd is nil. It returns the path written.
func Simple(dir string, rnd func() int) (string, error) {
	if rnd == nil {
		rnd = RandomInt
	}

	records := []map[string]any{{
		loader.FieldName:        SimpleName,
		loader.FieldDescription: "generated random integer",
		loader.FieldValue:       rnd(),
		loader.FieldKind:        string(metrics.KindGauge),
	}}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("example: encode: %w", err)
	}

	path := filepath.Join(dir, SimpleFile)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("example: %w", err)
	}
	return path, nil
}
