package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// mockPushCall records a single Push invocation with the families gathered
// at push time.
type mockPushCall struct {
	Job      string
	Families []*dto.MetricFamily
}

// mockPusher records Push calls.
type mockPusher struct {
	mu    sync.Mutex
	calls []mockPushCall
	err   error
}

func (m *mockPusher) Push(_ context.Context, job string, g prometheus.Gatherer) error {
	families, gatherErr := g.Gather()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockPushCall{Job: job, Families: families})
	if gatherErr != nil {
		return gatherErr
	}
	return m.err
}

func (m *mockPusher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockPusher) lastCall() mockPushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}
