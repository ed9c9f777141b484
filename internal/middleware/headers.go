package middleware

import "net/http"

// DefaultContentSecurityPolicy allows the inline stylesheet of the HTML
// pages and nothing else.
const DefaultContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'"

// SecurityHeaders returns a middleware that adds response hardening
// headers. Headers already set by the handler are kept.
func SecurityHeaders() func(http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
		"Content-Security-Policy": DefaultContentSecurityPolicy,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				if h.Get(name) == "" {
					h.Set(name, value)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
