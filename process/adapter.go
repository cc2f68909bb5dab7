package process

import (
	"context"
	"time"

	"github.com/bbugyi200/bugyi/provider"
)

var _ provider.RequestResponse[Spec, *Completed] = (*Adapter)(nil)

// Config configures a process adapter.
type Config struct {
	// Name identifies this adapter instance.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// GracePeriod is applied to specs that have none.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each Execute call. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Adapter exposes command execution as a provider.RequestResponse.
type Adapter struct {
	config  Config
	spawner *Spawner
}

// NewAdapter creates an adapter that runs commands with spawner, or with the
// default Spawner when spawner is nil.
func NewAdapter(cfg Config, spawner *Spawner) *Adapter {
	if spawner == nil {
		spawner = defaultSpawner
	}
	return &Adapter{config: cfg, spawner: spawner}
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.config.Name }

// IsAvailable always returns true.
func (a *Adapter) IsAvailable(_ context.Context) bool { return true }

// Execute runs spec to completion with the adapter's defaults. A non-zero
// exit is returned as a COMMAND_FAILED error.
func (a *Adapter) Execute(ctx context.Context, spec Spec) (*Completed, error) {
	if spec.GracePeriod == 0 {
		spec.GracePeriod = a.config.GracePeriod
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	return a.spawner.Run(ctx, spec).Get()
}

// NewScriptProvider returns a provider that runs shell scripts built by
// defaults and yields their trimmed stdout.
func NewScriptProvider(name string, defaults Defaults, inner provider.RequestResponse[Spec, *Completed]) provider.RequestResponse[string, string] {
	return provider.Adapt(inner, name,
		func(_ context.Context, script string) (Spec, error) {
			return defaults.Script(script), nil
		},
		func(c *Completed) (string, error) {
			return c.Out(), nil
		},
	)
}
