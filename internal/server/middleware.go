package server

import (
	"net/http"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/middleware"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// buildMiddlewareChain wraps handler with the request middleware.
// The execution order (outermost executes first):
// Recovery -> RequestID -> SecurityHeaders -> Logging -> Tracing -> Metrics -> RateLimit -> [engine]
//
// The rate limiter is always created so a reload can enable it.
func buildMiddlewareChain(
	handler http.Handler,
	cfg *config.Config,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) (http.Handler, *middleware.RateLimiter) {
	rateLimitMiddleware, rateLimiter := middleware.RateLimitFromConfig(
		&cfg.Spec.RateLimit, logger,
		middleware.WithClientIPExtractor(middleware.NewClientIPExtractor(cfg.Spec.Server.TrustedProxies)),
		middleware.WithRateLimitHitCallback(func(string) {
			metrics.RecordRateLimitHit()
		}),
	)

	h := rateLimitMiddleware(handler)
	h = observability.MetricsMiddleware(metrics, knownRoutes(cfg)...)(h)
	h = observability.TracingMiddleware(tracer)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.SecurityHeaders()(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(logger)(h)

	return h, rateLimiter
}
