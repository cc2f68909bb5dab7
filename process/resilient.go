package process

import (
	"context"

	"github.com/bbugyi200/bugyi/provider"
	"github.com/bbugyi200/bugyi/result"
)

// Runner runs commands through a circuit breaker and retry policy whose
// state persists across calls, so a command that keeps crashing trips the
// breaker. Only retryable errors, such as SPAWN_FAILED, are retried by the
// default policy.
type Runner struct {
	spawner *Spawner
	state   *provider.ResilienceState
}

// NewRunner creates a Runner. A nil spawner uses the default Spawner, and an
// empty config runs commands directly.
func NewRunner(cfg provider.ResilienceConfig, spawner *Spawner) *Runner {
	if spawner == nil {
		spawner = defaultSpawner
	}
	return &Runner{spawner: spawner, state: provider.BuildResilience(cfg)}
}

// Run runs spec to completion through the resilience chain.
func (r *Runner) Run(ctx context.Context, spec Spec) result.Result[*Completed] {
	c, err := provider.ExecuteWithResilience(ctx, r.state, func() (*Completed, error) {
		return r.spawner.Run(ctx, spec).Get()
	})
	return result.From(c, err)
}

// SubprocessProvider is a provider.RequestResponse backed by a command. The
// build function turns an input into a Spec and parse turns the completed
// command into an output.
type SubprocessProvider[I, O any] struct {
	name      string
	runner    *Runner
	build     func(I) Spec
	parse     func(*Completed) (O, error)
	available func(context.Context) bool
}

// NewSubprocessProvider creates a provider that runs commands with runner.
// A nil runner runs them directly with the default Spawner.
func NewSubprocessProvider[I, O any](
	name string,
	runner *Runner,
	build func(I) Spec,
	parse func(*Completed) (O, error),
) *SubprocessProvider[I, O] {
	if runner == nil {
		runner = NewRunner(provider.ResilienceConfig{}, nil)
	}
	return &SubprocessProvider[I, O]{name: name, runner: runner, build: build, parse: parse}
}

// WithAvailabilityCheck sets a custom availability check.
func (p *SubprocessProvider[I, O]) WithAvailabilityCheck(fn func(context.Context) bool) *SubprocessProvider[I, O] {
	p.available = fn
	return p
}

// Name returns the provider name.
func (p *SubprocessProvider[I, O]) Name() string { return p.name }

// IsAvailable runs the availability check, or reports whether the binary of
// a zero-input Spec resolves when no check was set.
func (p *SubprocessProvider[I, O]) IsAvailable(ctx context.Context) bool {
	if p.available != nil {
		return p.available(ctx)
	}
	var zero I
	return CommandExists(p.build(zero).Binary)
}

// Execute builds a Spec from input, runs it and parses the result.
func (p *SubprocessProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	c, err := p.runner.Run(ctx, p.build(input)).Get()
	if err != nil {
		var zero O
		return zero, err
	}
	return p.parse(c)
}
