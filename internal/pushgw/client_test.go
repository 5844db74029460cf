package pushgw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/plexsphere/simplepipe/internal/pushgw/gatewaytest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

// newTestClient creates a Client pointed at the given fake gateway.
func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := NewClient(cfg, "1.2.3", discardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func gaugeRegistry(t *testing.T, name string, v float64) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: "help"})
	g.Set(v)
	reg.MustRegister(g)
	return reg
}

func TestClient_PushSendsJobAndMetrics(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()

	c := newTestClient(t, Config{URL: gw.URL})
	if err := c.Push(context.Background(), "weather", gaugeRegistry(t, "temp", 21.5)); err != nil {
		t.Fatalf("Push: %v", err)
	}

	pushes := gw.Pushes()
	if len(pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pushes))
	}
	p := pushes[0]
	if p.Job != "weather" {
		t.Errorf("job = %q, want %q", p.Job, "weather")
	}
	mf := p.Family("temp")
	if mf == nil {
		t.Fatal("family temp not pushed")
	}
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 21.5 {
		t.Errorf("temp = %v, want 21.5", got)
	}
	if ua := p.Header.Get("User-Agent"); ua != "simplepipe/1.2.3" {
		t.Errorf("User-Agent = %q, want %q", ua, "simplepipe/1.2.3")
	}
}

func TestClient_PushWithoutScheme(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()

	c := newTestClient(t, Config{URL: strings.TrimPrefix(gw.URL, "http://")})
	if err := c.Push(context.Background(), "job", gaugeRegistry(t, "m", 1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if n := len(gw.Pushes()); n != 1 {
		t.Errorf("pushes = %d, want 1", n)
	}
}

func TestClient_PushGroupingAndBasicAuth(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()

	c := newTestClient(t, Config{
		URL:      gw.URL,
		Grouping: map[string]string{"instance": "host-1", "env": "prod"},
		Username: "user",
		Password: "secret",
	})
	if err := c.Push(context.Background(), "build", gaugeRegistry(t, "m", 1)); err != nil {
		t.Fatalf("Push: %v", err)
	}

	p, ok := gw.Current("build", map[string]string{"instance": "host-1", "env": "prod"})
	if !ok {
		t.Fatal("no push stored under the grouping key")
	}
	user, pass, ok := (&http.Request{Header: p.Header}).BasicAuth()
	if !ok || user != "user" || pass != "secret" {
		t.Errorf("basic auth = %q/%q (ok=%v), want user/secret", user, pass, ok)
	}
}

func TestClient_PushReplacesPerJob(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()

	c := newTestClient(t, Config{URL: gw.URL})
	ctx := context.Background()
	if err := c.Push(ctx, "weather", gaugeRegistry(t, "temp", 1)); err != nil {
		t.Fatalf("first Push: %v", err)
	}
	if err := c.Push(ctx, "weather", gaugeRegistry(t, "humidity", 2)); err != nil {
		t.Fatalf("second Push: %v", err)
	}

	cur, ok := gw.Current("weather", nil)
	if !ok {
		t.Fatal("no current push for weather")
	}
	if cur.Family("temp") != nil {
		t.Error("temp still present after replacing push")
	}
	if cur.Family("humidity") == nil {
		t.Error("humidity missing after replacing push")
	}
}

func TestClient_PushRejectedCarriesStatusAndBody(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()
	gw.FailWith(http.StatusBadRequest, "inconsistent metrics")

	c := newTestClient(t, Config{URL: gw.URL})
	err := c.Push(context.Background(), "weather", gaugeRegistry(t, "temp", 1))
	if err == nil {
		t.Fatal("expected error")
	}

	var te *TransmissionError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransmissionError", err)
	}
	if te.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", te.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(te.Body, "inconsistent metrics") {
		t.Errorf("Body = %q, want it to contain %q", te.Body, "inconsistent metrics")
	}
	if te.Job != "weather" {
		t.Errorf("Job = %q, want %q", te.Job, "weather")
	}
	if !errors.Is(err, ErrTransmission) {
		t.Error("errors.Is(err, ErrTransmission) = false")
	}
}

func TestClient_PushUnreachable(t *testing.T) {
	gw := gatewaytest.New()
	url := gw.URL
	gw.Close()

	c := newTestClient(t, Config{URL: url})
	err := c.Push(context.Background(), "weather", gaugeRegistry(t, "temp", 1))

	var te *TransmissionError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransmissionError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a network failure", te.StatusCode)
	}
}

func TestClient_PushCancelledContext(t *testing.T) {
	gw := gatewaytest.New()
	defer gw.Close()

	c := newTestClient(t, Config{URL: gw.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Push(ctx, "weather", gaugeRegistry(t, "temp", 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if n := len(gw.Pushes()); n != 0 {
		t.Errorf("pushes = %d, want 0", n)
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{URL: "ftp://gateway:9091"}, "dev", discardLogger())
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
