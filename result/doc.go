// Package result provides a generic success/failure container for fallible
// operations.
//
// A Result is either Ok(value) or Err(error). Callers check which variant they
// hold before reading the payload, or use one of the Unwrap helpers:
//
//	r := process.Spawn(ctx, spec)
//	if r.IsErr() {
//	    return r.Err()
//	}
//	proc := r.Unwrap()
//
// Unwrap on a failure panics. That is reserved for caller bugs; operational
// failures always travel as Err values.
package result
