// Package config loads the simplepipe runtime configuration.
//
// Sources are layered, later ones overriding earlier ones: built-in
// defaults, an optional YAML file, an optional .env file and finally the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/plexsphere/simplepipe/internal/pushgw"
)

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultEnvFile is the .env file the CLI reads unless told otherwise.
const DefaultEnvFile = ".env"

// Environment variable names. The .env file uses the same names; keys are
// matched case-insensitively there.
const (
	EnvGatewayHostname = "PUSH_GATEWAY_HOSTNAME"
	EnvProdEnabled     = "PROD_ENABLED"
	EnvLogLevel        = "LOG_LEVEL"
	EnvGatewayUsername = "PUSH_GATEWAY_USERNAME"
	EnvGatewayPassword = "PUSH_GATEWAY_PASSWORD"
)

// Config is the top-level simplepipe configuration.
type Config struct {
	// LogLevel is the log level: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"required,oneof=debug info warn error"`

	// ProdEnabled marks a production deployment. Insecure TLS to the
	// gateway is refused when set.
	ProdEnabled bool `yaml:"prod_enabled"`

	Gateway pushgw.Config `yaml:"gateway"`
}

// LoadOptions selects the configuration sources for Load.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing file is an error.
	ConfigFile string

	// EnvFile is an optional .env file. A missing file is skipped.
	EnvFile string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// LogLevel and GatewayURL override every other source when non-empty.
	LogLevel   string
	GatewayURL string
}

var validate = validator.New()

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.Gateway.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Gateway.Validate(); err != nil {
		return err
	}
	if c.ProdEnabled && c.Gateway.TLSInsecureSkipVerify {
		return errors.New("config: gateway TLS verification cannot be disabled when prod_enabled is set")
	}
	return nil
}

// Load builds a Config from the sources in opts, applies the explicit
// overrides in opts, then applies defaults and validates the result once.
func Load(opts LoadOptions) (*Config, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := &Config{
		LogLevel: DefaultLogLevel,
		Gateway:  pushgw.Config{URL: pushgw.DefaultURL},
	}

	if opts.ConfigFile != "" {
		if err := loadYAML(opts.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}
	if opts.EnvFile != "" {
		if err := loadEnvFile(opts.EnvFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(lookup, cfg); err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.GatewayURL != "" {
		cfg.Gateway.URL = opts.GatewayURL
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func loadEnvFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: access %s: %w", path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	section := f.Section("")

	if key := strings.ToLower(EnvGatewayHostname); section.HasKey(key) {
		cfg.Gateway.URL = section.Key(key).String()
	}
	if key := strings.ToLower(EnvProdEnabled); section.HasKey(key) {
		v, err := section.Key(key).Bool()
		if err != nil {
			return fmt.Errorf("config: %s: invalid %s %q", path, key, section.Key(key).String())
		}
		cfg.ProdEnabled = v
	}
	if key := strings.ToLower(EnvLogLevel); section.HasKey(key) {
		cfg.LogLevel = section.Key(key).String()
	}
	if key := strings.ToLower(EnvGatewayUsername); section.HasKey(key) {
		cfg.Gateway.Username = section.Key(key).String()
	}
	if key := strings.ToLower(EnvGatewayPassword); section.HasKey(key) {
		cfg.Gateway.Password = section.Key(key).String()
	}
	return nil
}

func applyEnv(lookup func(string) (string, bool), cfg *Config) error {
	if v, ok := lookup(EnvGatewayHostname); ok && v != "" {
		cfg.Gateway.URL = v
	}
	if v, ok := lookup(EnvProdEnabled); ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s %q", EnvProdEnabled, v)
		}
		cfg.ProdEnabled = b
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvGatewayUsername); ok && v != "" {
		cfg.Gateway.Username = v
	}
	if v, ok := lookup(EnvGatewayPassword); ok && v != "" {
		cfg.Gateway.Password = v
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
