package middleware

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MiddlewareMetrics holds Prometheus metrics for middleware operations.
// Rejected requests are counted by the service metrics through the
// rate limit hit callback.
type MiddlewareMetrics struct {
	rateLimitAllowed prometheus.Counter
	panicsRecovered  prometheus.Counter
}

var (
	middlewareMetrics     *MiddlewareMetrics
	middlewareMetricsOnce sync.Once
)

// GetMiddlewareMetrics returns the singleton middleware metrics instance.
func GetMiddlewareMetrics() *MiddlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetrics = &MiddlewareMetrics{
			rateLimitAllowed: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "svcinfo",
					Subsystem: "middleware",
					Name:      "rate_limit_allowed_total",
					Help:      "Total number of requests allowed by the rate limiter",
				},
			),
			panicsRecovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "svcinfo",
					Subsystem: "middleware",
					Name:      "panics_recovered_total",
					Help:      "Total number of panics recovered",
				},
			),
		}
	})
	return middlewareMetrics
}

// MustRegister registers the middleware collectors with the service
// registry.
func (m *MiddlewareMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.rateLimitAllowed,
		m.panicsRecovered,
	)
}
