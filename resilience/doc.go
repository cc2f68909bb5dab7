// Package resilience provides retry and circuit-breaking for operations that
// may fail transiently, such as starting a process while the system is short
// on resources.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("git"))
//	err := cb.Execute(func() error {
//	    _, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), run)
//	    return err
//	})
package resilience
