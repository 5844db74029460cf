// Package collector loads metric definitions and pushes them to a gateway,
// one freshly built registry per push.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/plexsphere/simplepipe/internal/fsutil"
	"github.com/plexsphere/simplepipe/internal/loader"
	"github.com/plexsphere/simplepipe/internal/metrics"
)

// ErrEmptyJob is returned when a push is requested without a job name.
var ErrEmptyJob = errors.New("collector: job name is required")

// Pusher abstracts the gateway transmission.
type Pusher interface {
	Push(ctx context.Context, job string, g prometheus.Gatherer) error
}

// Collector orchestrates load, registry construction and push.
// Concurrent calls are safe; each builds its own registry.
type Collector struct {
	pusher Pusher
	logger *slog.Logger
	newID  func() string
}

// New creates a Collector that transmits through pusher.
func New(pusher Pusher, logger *slog.Logger) *Collector {
	return &Collector{
		pusher: pusher,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// LoadAndPush loads the metric file at path and pushes it under job.
func (c *Collector) LoadAndPush(ctx context.Context, path, job string) error {
	if job == "" {
		return ErrEmptyJob
	}

	c.logger.Info("loading metrics", "component", "collector", "path", path)
	batch, err := loader.LoadFile(path)
	if err != nil {
		c.logger.Error("loading metrics failed", "component", "collector", "path", path, "error", err)
		return fmt.Errorf("collector: load %s: %w", path, err)
	}
	c.logger.Info("loaded metrics", "component", "collector", "path", path, "count", len(batch))

	return c.PushToGateway(ctx, batch, job)
}

// ParseAndPush parses already decoded records and pushes them under job.
func (c *Collector) ParseAndPush(ctx context.Context, records []map[string]any, job string) error {
	if job == "" {
		return ErrEmptyJob
	}

	batch, err := loader.ParseRecords(records, fsutil.FormatJSON)
	if err != nil {
		c.logger.Error("parsing metrics failed", "component", "collector", "error", err)
		return fmt.Errorf("collector: parse: %w", err)
	}
	c.logger.Info("parsed metrics", "component", "collector", "count", len(batch))

	return c.PushToGateway(ctx, batch, job)
}

// PushToGateway registers every metric of batch, in order, in a new registry
// and transmits it under job in a single request. The first registration
// failure aborts the push and nothing is sent.
func (c *Collector) PushToGateway(ctx context.Context, batch metrics.Batch, job string) error {
	if job == "" {
		return ErrEmptyJob
	}

	logger := c.logger.With("component", "collector", "job", job, "push_id", c.newID())

	reg := metrics.NewRegistry()
	for i, m := range batch {
		if _, err := reg.Register(m); err != nil {
			logger.Error("adding metric to registry failed", "index", i, "metric", m.Name, "error", err)
			return fmt.Errorf("collector: metric %d (%s): %w", i, m.Name, err)
		}
		logger.Debug("added metric to registry", "metric", m.Name, "kind", m.Kind)
	}

	if reg.Len() == 0 {
		logger.Warn("pushing empty batch; the gateway will drop metrics stored for this job")
	}

	logger.Info("pushing metrics", "count", reg.Len())
	if err := c.pusher.Push(ctx, job, reg.Gatherer()); err != nil {
		logger.Error("push failed", "error", err)
		return fmt.Errorf("collector: %w", err)
	}
	logger.Info("push succeeded", "count", reg.Len())
	return nil
}
