// Package provider defines generic interaction patterns for swappable
// backends and the middleware that wraps them.
//
//   - RequestResponse[I, O]: one input, one output (run a command to completion)
//   - Stream[I, O]: one input, many outputs (chunks from a running command)
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse provider. Use Chain to compose:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithTracing[In, Out]("my-service"),
//	)(rawProvider)
//
// # Resilience
//
// WithResilience and WithStreamResilience add a circuit breaker and retry:
//
//	p = provider.WithResilience(p, provider.ResilienceConfig{
//	    Retry: &retryCfg,
//	})
//
// Adapt converts a provider's input and output types.
package provider
