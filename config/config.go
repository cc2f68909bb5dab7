package config

import (
	"fmt"
	"strings"

	"github.com/bbugyi200/bugyi/logger"
	"github.com/bbugyi200/bugyi/observability"
	"github.com/bbugyi200/bugyi/process"
	"github.com/bbugyi200/bugyi/provider"
)

// Config is the configuration of a program that runs commands.
type Config struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Debug   bool   `yaml:"debug" mapstructure:"debug"`
	Verbose int    `yaml:"verbose" mapstructure:"verbose"`

	Logging    logger.Config             `yaml:"logging" mapstructure:"logging"`
	Process    process.Defaults          `yaml:"process" mapstructure:"process"`
	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`

	// Tracing and Metrics are exported over OTLP only when set.
	Tracing *observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics *observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills empty fields. The log level follows Debug and Verbose
// when either is set.
func (c *Config) ApplyDefaults() {
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Logging.ApplyVerbosity(c.Debug, c.Verbose)
	c.Process.ApplyDefaults()
	c.Process.Env = upperKeys(c.Process.Env)

	if c.Tracing != nil && c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Metrics != nil && c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if c.Verbose < 0 {
		return fmt.Errorf("config.verbose must be at least 0 (got: %d)", c.Verbose)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Process.Validate(); err != nil {
		return fmt.Errorf("config.process: %w", err)
	}
	if cb := c.Resilience.CircuitBreaker; cb != nil && cb.MaxFailures < 0 {
		return fmt.Errorf("config.resilience.circuit_breaker.max_failures must be at least 0 (got: %d)", cb.MaxFailures)
	}
	if t := c.Tracing; t != nil && (t.SampleRate < 0 || t.SampleRate > 1) {
		return fmt.Errorf("config.tracing.sample_rate must be between 0 and 1 (got: %v)", t.SampleRate)
	}
	return nil
}

// upperKeys restores the conventional case of environment names, which
// viper lower-cases when it reads them as config keys.
func upperKeys(env map[string]string) map[string]string {
	if len(env) == 0 {
		return env
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[strings.ToUpper(k)] = v
	}
	return out
}
