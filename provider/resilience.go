package provider

import (
	"github.com/bbugyi200/bugyi/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped.
type ResilienceConfig struct {
	// CircuitBreaker stops calls after repeated failures.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	// Retry retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil
}

// ResilienceState holds initialized resilience primitives built from config.
type ResilienceState struct {
	cb       *resilience.CircuitBreaker
	retryCfg *resilience.RetryConfig
}

// BuildResilience creates initialized resilience primitives from config.
// It returns nil for an empty config.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{retryCfg: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return s
}

// CircuitState reports the breaker state, or StateClosed when no breaker is
// configured.
func (s *ResilienceState) CircuitState() resilience.State {
	if s == nil || s.cb == nil {
		return resilience.StateClosed
	}
	return s.cb.State()
}
