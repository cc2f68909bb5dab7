package process

import (
	"maps"
	"time"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/validation"
)

// Defaults holds settings shared by the commands of one program. It is
// passed explicitly to the Spawner or used to build Specs, so there is no
// package-wide default environment or shell.
type Defaults struct {
	// Shell runs the scripts built by Script.
	Shell string `yaml:"shell" mapstructure:"shell" validate:"required"`
	// Env is applied under each Spec's own Env.
	Env map[string]string `yaml:"env" mapstructure:"env" validate:"dive,keys,envkey,endkeys"`
	// Dir is used when a Spec has no Dir.
	Dir string `yaml:"dir" mapstructure:"dir" validate:"omitempty,dir"`
	// GracePeriod is used when a Spec has no GracePeriod.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	// WaitDelay is used when a Spec has no WaitDelay.
	WaitDelay time.Duration `yaml:"wait_delay" mapstructure:"wait_delay" validate:"gte=0"`
	// MaxOutput is used when a Spec has no MaxOutput.
	MaxOutput int `yaml:"max_output" mapstructure:"max_output" validate:"gte=0"`
}

// ApplyDefaults sets sensible defaults for empty fields.
func (d *Defaults) ApplyDefaults() {
	if d.Shell == "" {
		d.Shell = "/bin/sh"
	}
	if d.GracePeriod == 0 {
		d.GracePeriod = DefaultGracePeriod
	}
	if d.WaitDelay == 0 {
		d.WaitDelay = DefaultWaitDelay
	}
}

// Validate checks the defaults.
func (d *Defaults) Validate() error {
	if err := validation.Validate(d); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return appErr.WithDetail("section", "process")
		}
		return err
	}
	return nil
}

// Apply returns a copy of spec with its unset fields taken from d. Entries
// in spec.Env win over entries in d.Env.
func (d Defaults) Apply(spec Spec) Spec {
	spec = spec.clone()
	if spec.Dir == "" {
		spec.Dir = d.Dir
	}
	if spec.GracePeriod == 0 {
		spec.GracePeriod = d.GracePeriod
	}
	if spec.WaitDelay == 0 {
		spec.WaitDelay = d.WaitDelay
	}
	if spec.MaxOutput == 0 {
		spec.MaxOutput = d.MaxOutput
	}
	if len(d.Env) > 0 {
		env := maps.Clone(d.Env)
		maps.Copy(env, spec.Env)
		spec.Env = env
	}
	return spec
}

// Command builds a Spec for binary with d applied.
func (d Defaults) Command(binary string, args ...string) Spec {
	return d.Apply(NewSpec(binary, args...))
}

// Script builds a Spec that runs script with d.Shell.
func (d Defaults) Script(script string) Spec {
	shell := d.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return d.Apply(NewSpec(shell, "-c", script))
}
