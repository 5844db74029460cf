package pushgw

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is the Pushgateway address used when none is configured.
const DefaultURL = "http://localhost:9091"

// DefaultConnectTimeout is the default TCP connect timeout.
const DefaultConnectTimeout = 10 * time.Second

// DefaultRequestTimeout is the default timeout for one push request.
const DefaultRequestTimeout = 30 * time.Second

// Config holds the configuration for the Pushgateway client.
// Config is passed as a constructor argument; this package does no file I/O.
type Config struct {
	// URL is the Pushgateway address. A missing scheme defaults to http.
	// Example: "http://prom-pushgw-prometheus-pushgateway.default:9091"
	URL string `yaml:"url" validate:"required"`

	// Grouping holds extra grouping-key labels added after the job label.
	// A later push with the same job and grouping replaces the earlier one.
	Grouping map[string]string `yaml:"grouping"`

	// Username and Password enable HTTP basic auth when Username is set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TLSInsecureSkipVerify disables TLS certificate verification.
	// WARNING: Only use for development/testing.
	TLSInsecureSkipVerify bool `yaml:"tls_insecure_skip_verify"`

	// ConnectTimeout is the maximum time to wait for a TCP connection.
	// Default: 10s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequestTimeout is the maximum time for a complete push request.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("pushgw: config: URL is required")
	}
	raw := c.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("pushgw: config: invalid URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("pushgw: config: unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("pushgw: config: URL %q has no host", c.URL)
	}
	if _, ok := c.Grouping["job"]; ok {
		return errors.New("pushgw: config: grouping must not contain the job label")
	}
	for name, value := range c.Grouping {
		if name == "" || value == "" {
			return fmt.Errorf("pushgw: config: grouping label %q=%q must have a name and a value", name, value)
		}
	}
	if c.Password != "" && c.Username == "" {
		return errors.New("pushgw: config: Password requires Username")
	}
	if c.ConnectTimeout < 0 || c.RequestTimeout < 0 {
		return errors.New("pushgw: config: timeouts must not be negative")
	}
	return nil
}
