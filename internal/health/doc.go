// Package health provides the readiness probe behind /healthz.
//
// A Checker runs a set of dependency checks (HTTP, TCP, Redis or custom
// functions) concurrently under a timeout. Failures of critical checks
// make the service unready; failures of non-critical checks are only
// logged. Checks may be wrapped in a circuit breaker so that a dependency
// that keeps failing is not probed on every request.
//
// During shutdown the Checker is put into draining mode, which reports
// unready regardless of the checks.
//
//	checker := health.NewChecker(
//	    health.WithLogger(logger),
//	    health.WithTimeout(5*time.Second),
//	)
//	checker.AddCheck(health.TCPHealthCheck("db", "localhost:5432", time.Second))
//
//	if err := checker.Ready(ctx); err != nil {
//	    // errors.Is(err, health.ErrUnready)
//	}
package health
