package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is json or console.
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stdout, stderr, or a file path opened for appending.
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// ApplyVerbosity derives the level from command-line style flags. Debug
// counts as one extra level of verbosity; one level selects debug and two or
// more select trace. With no verbosity the configured level is kept.
func (c *Config) ApplyVerbosity(debug bool, verbose int) {
	if debug {
		verbose++
	}
	switch {
	case verbose > 1:
		c.Level = "trace"
	case verbose > 0:
		c.Level = "debug"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console"}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	if c.Output == "" {
		return fmt.Errorf("logging.output is required")
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
