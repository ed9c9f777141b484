// Package middleware provides the net/http middleware wrapped around the
// svcinfo router: request IDs, panic recovery, security headers, access
// logging and rate limiting.
//
// Every middleware has the signature func(http.Handler) http.Handler:
//
//	h := middleware.Logging(logger)(router)
//	h = middleware.RequestID()(h)
//	h = middleware.Recovery(logger)(h)
//
// Error responses written by this package are always JSON, whatever
// format the request negotiated.
package middleware
