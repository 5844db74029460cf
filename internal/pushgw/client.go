// Package pushgw transmits staged metrics to a Prometheus Pushgateway.
package pushgw

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// userAgentPrefix is the User-Agent header prefix.
const userAgentPrefix = "simplepipe/"

// Client pushes gathered metrics to a Pushgateway. A Client is safe for
// concurrent use; every Push is an independent request.
type Client struct {
	httpClient *http.Client
	cfg        Config
	version    string
	logger     *slog.Logger
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg Config, version string, logger *slog.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		},
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
	}

	if cfg.TLSInsecureSkipVerify {
		logger.Warn("TLS certificate verification disabled", "component", "pushgw")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		cfg:     cfg,
		version: version,
		logger:  logger,
	}, nil
}

// URL returns the configured gateway address.
func (c *Client) URL() string {
	return c.cfg.URL
}

// Push gathers g and sends it to the gateway under job with an HTTP PUT,
// replacing whatever was stored for the same job and grouping key.
// There are no retries; failures are returned as *TransmissionError.
func (c *Client) Push(ctx context.Context, job string, g prometheus.Gatherer) error {
	rec := &recordingDoer{
		client:    c.httpClient,
		userAgent: userAgentPrefix + c.version,
	}

	p := push.New(c.cfg.URL, job).Gatherer(g).Client(rec)
	for _, name := range sortedKeys(c.cfg.Grouping) {
		p = p.Grouping(name, c.cfg.Grouping[name])
	}
	if c.cfg.Username != "" {
		p = p.BasicAuth(c.cfg.Username, c.cfg.Password)
	}

	c.logger.Debug("sending push", "component", "pushgw", "url", c.cfg.URL, "job", job)
	if err := p.PushContext(ctx); err != nil {
		return &TransmissionError{
			Job:        job,
			StatusCode: rec.status,
			Body:       rec.body,
			Err:        err,
		}
	}
	return nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// recordingDoer implements push.HTTPDoer. It stamps the User-Agent and keeps
// the status and a bounded copy of the body of a rejected push. One
// recordingDoer serves exactly one push.
type recordingDoer struct {
	client    *http.Client
	userAgent string

	status int
	body   string
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	d.status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		d.body = string(body)
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
