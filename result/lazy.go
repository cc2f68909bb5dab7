package result

import "sync"

// Lazy defers a Result-producing function until the result is first needed,
// then memoizes it.
type Lazy[T any] struct {
	once sync.Once
	fn   func() Result[T]
	res  Result[T]
}

// NewLazy returns a Lazy that will call fn at most once.
func NewLazy[T any](fn func() Result[T]) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Result runs the deferred function on first use and returns its Result.
func (l *Lazy[T]) Result() Result[T] {
	l.once.Do(func() {
		l.res = l.fn()
		l.fn = nil
	})
	return l.res
}

// Err forces evaluation and returns the failure, if any.
func (l *Lazy[T]) Err() error { return l.Result().Err() }

// Unwrap forces evaluation and unwraps the Result.
func (l *Lazy[T]) Unwrap() T { return l.Result().Unwrap() }

// UnwrapOr forces evaluation and returns the value or def.
func (l *Lazy[T]) UnwrapOr(def T) T { return l.Result().UnwrapOr(def) }
