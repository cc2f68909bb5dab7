package provider

import (
	"context"
	"errors"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/resilience"
)

// WithResilience wraps a RequestResponse provider.
// Execution chain: CircuitBreaker → Retry → Execute.
// An empty config returns the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

// WithStreamResilience wraps the Execute call that opens a stream.
// Next calls on the returned Iterator are not retried.
func WithStreamResilience[I, O any](p Stream[I, O], cfg ResilienceConfig) Stream[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientStream[I, O]{inner: p, state: BuildResilience(cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

type resilientStream[I, O any] struct {
	inner Stream[I, O]
	state *ResilienceState
}

func (r *resilientStream[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientStream[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientStream[I, O]) Execute(ctx context.Context, input I) (Iterator[O], error) {
	return ExecuteWithResilience(ctx, r.state, func() (Iterator[O], error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through CircuitBreaker → Retry → fn.
// A nil state calls fn directly. An open circuit surfaces as a
// SERVICE_UNAVAILABLE AppError and context errors as TIMEOUT.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	if s.cb == nil {
		result, err := call()
		return result, wrapResilienceError(err)
	}

	var result T
	var resultErr error
	cbErr := s.cb.Execute(func() error {
		result, resultErr = call()
		return resultErr
	})
	if cbErr != nil && resultErr == nil {
		return result, wrapResilienceError(cbErr)
	}
	return result, wrapResilienceError(resultErr)
}

func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable("provider").WithCause(err)
	case errors.Is(err, context.Canceled):
		return apperrors.Timeout("request canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("deadline exceeded").WithCause(err)
	default:
		return err
	}
}
