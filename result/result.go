package result

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is carried by the zero Result, which was never built with Ok or Err.
	ErrEmpty = errors.New("result: empty result")
	// ErrNilError is carried by a failure that was constructed from a nil error.
	ErrNilError = errors.New("result: Err called with nil error")
)

// Result holds either a success value of type T or an error.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok wraps a success value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Err wraps a failure. A nil err still produces a failure, carrying ErrNilError.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilError
	}
	return Result[T]{err: err}
}

// From lifts a conventional (value, error) pair into a Result.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// IsOk reports whether r holds a success value.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr reports whether r holds a failure.
func (r Result[T]) IsErr() bool { return !r.ok }

// Err returns the failure, or nil for a success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return ErrEmpty
	}
	return r.err
}

// Value returns the success value and true, or the zero T and false.
func (r Result[T]) Value() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Get converts r back into a (value, error) pair.
func (r Result[T]) Get() (T, error) {
	v, _ := r.Value()
	return v, r.Err()
}

// Unwrap returns the success value. It panics with *UnwrapError when r is a
// failure.
func (r Result[T]) Unwrap() T {
	if !r.ok {
		panic(&UnwrapError{Err: r.Err()})
	}
	return r.value
}

// UnwrapOr returns the success value or def.
func (r Result[T]) UnwrapOr(def T) T {
	if !r.ok {
		return def
	}
	return r.value
}

// UnwrapOrElse returns the success value or the value computed from the failure.
func (r Result[T]) UnwrapOrElse(fn func(error) T) T {
	if !r.ok {
		return fn(r.Err())
	}
	return r.value
}

// String renders the variant, e.g. "Ok(42)" or "Err(boom)".
func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Ok(%v)", r.value)
	}
	return fmt.Sprintf("Err(%v)", r.Err())
}

// Map applies fn to the success value. Failures pass through untouched.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Err[U](r.Err())
	}
	return Ok(fn(r.value))
}

// AndThen chains a fallible step onto r, stopping at the first failure.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Err[U](r.Err())
	}
	return fn(r.value)
}

// UnwrapError is the panic value raised by Unwrap on a failure.
type UnwrapError struct {
	Err error
}

func (e *UnwrapError) Error() string {
	return fmt.Sprintf("result: Unwrap called on Err: %v", e.Err)
}

func (e *UnwrapError) Unwrap() error { return e.Err }
