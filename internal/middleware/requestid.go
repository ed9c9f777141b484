package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// MaxRequestIDLength bounds an accepted incoming X-Request-ID.
const MaxRequestIDLength = 128

// RequestID returns a middleware that adds a request ID to each request.
// A well-formed incoming X-Request-ID is kept; otherwise a UUID is
// generated. The ID is echoed in the response and stored in the context.
func RequestID() func(http.Handler) http.Handler {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if !validRequestID(requestID) {
				requestID = generator()
			}

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			w.Header().Set(HeaderXRequestID, requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// validRequestID accepts non-empty printable ASCII up to
// MaxRequestIDLength bytes, so client IDs cannot inject into logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
