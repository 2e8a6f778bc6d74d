package activity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds process-wide defaults for constructing Collectors and
// Reactors: a deployment describes its defaults declaratively (via
// LoadConfig or a literal EngineConfig) instead of scattering functional
// option calls through main.
type EngineConfig struct {
	ReactorPoolSize  uint   `yaml:"reactorPoolSize"`
	DefaultRequired  bool   `yaml:"defaultRequired"`
	MetricsNamespace string `yaml:"metricsNamespace"`
	LogLevel         string `yaml:"logLevel"`
}

// Option mutates an EngineConfig under construction.
type Option func(*EngineConfig) error

// WithReactorPoolSize sets the fixed worker-pool size the engine's default
// Reactor uses. Zero (the default) selects a dynamically sized pool.
func WithReactorPoolSize(n uint) Option {
	return func(c *EngineConfig) error {
		c.ReactorPoolSize = n
		return nil
	}
}

// WithDefaultRequired sets whether newly attached activities default to
// required=true (the engine default) or required=false.
func WithDefaultRequired(v bool) Option {
	return func(c *EngineConfig) error {
		c.DefaultRequired = v
		return nil
	}
}

// WithMetricsNamespace sets EngineConfig.MetricsNamespace, which must not be
// empty. FromEngineConfig does not read this field; NewPrometheusProvider
// takes its namespace as an argument of its own.
func WithMetricsNamespace(ns string) Option {
	return func(c *EngineConfig) error {
		if ns == "" {
			return fmt.Errorf("%w: metrics namespace must not be empty", ErrInvalidConfig)
		}
		c.MetricsNamespace = ns
		return nil
	}
}

// WithLogLevel sets EngineConfig.LogLevel, which validation restricts to
// debug, info, warn or error. FromEngineConfig does not read this field, so
// it does not change what a Collector's Logger emits.
func WithLogLevel(level string) Option {
	return func(c *EngineConfig) error {
		c.LogLevel = level
		return nil
	}
}

func defaultConfig() EngineConfig {
	return EngineConfig{
		ReactorPoolSize:  0,
		DefaultRequired:  true,
		MetricsNamespace: "activity",
		LogLevel:         "info",
	}
}

func validateConfig(c EngineConfig) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logLevel %q must be one of debug, info, warn, error", ErrInvalidConfig, c.LogLevel)
	}
	if c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics namespace must not be empty", ErrInvalidConfig)
	}
	return nil
}

// NewEngineConfig builds an EngineConfig from defaults plus opts, rejecting
// an invalid result.
func NewEngineConfig(opts ...Option) (*EngineConfig, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads an EngineConfig from a YAML file at path, starting from
// defaultConfig and overlaying whatever fields the file sets.
func LoadConfig(path string) (*EngineConfig, error) {
	cfg := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: reading config %s: %w", Namespace, path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: parsing config %s: %w", Namespace, path, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Reactor builds the Reactor this config describes.
func (c EngineConfig) Reactor(opts ...ReactorOption) Reactor { return NewReactor(c.ReactorPoolSize, opts...) }
