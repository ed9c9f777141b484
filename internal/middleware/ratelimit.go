package middleware

import (
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// Rate limiter default configuration constants.
const (
	// DefaultClientTTL is the default TTL for client rate limiter entries.
	DefaultClientTTL = 10 * time.Minute

	// MinCleanupInterval is the minimum interval for cleanup operations.
	MinCleanupInterval = 10 * time.Second

	// MaxCleanupInterval is the maximum interval for cleanup operations.
	MaxCleanupInterval = time.Minute
)

// clientEntry holds a rate limiter and its last access time for TTL-based cleanup.
type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a token bucket limiter, global or per client. Its
// settings can be changed while it serves traffic.
type RateLimiter struct {
	enabled   atomic.Bool
	mu        sync.RWMutex
	limiter   *rate.Limiter
	perClient bool
	clients   map[string]*clientEntry
	rps       int
	burst     int
	clientTTL time.Duration

	logger    observability.Logger
	extractor *ClientIPExtractor
	onHit     func(path string)
	now       func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// RateLimiterOption is a functional option for configuring the rate limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithClientIPExtractor sets how clients are identified for per-client
// limits.
func WithClientIPExtractor(e *ClientIPExtractor) RateLimiterOption {
	return func(rl *RateLimiter) {
		if e != nil {
			rl.extractor = e
		}
	}
}

// WithRateLimitHitCallback sets a callback invoked for every rejected
// request.
func WithRateLimitHitCallback(callback func(path string)) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.onHit = callback
	}
}

// WithClientTTL sets how long an idle client entry is kept.
func WithClientTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if ttl > 0 {
			rl.clientTTL = ttl
		}
	}
}

// NewRateLimiter creates a new, enabled rate limiter.
func NewRateLimiter(rps, burst int, perClient bool, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		perClient: perClient,
		clients:   make(map[string]*clientEntry),
		rps:       rps,
		burst:     burst,
		clientTTL: DefaultClientTTL,
		logger:    observability.NopLogger(),
		extractor: NewClientIPExtractor(nil),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	rl.enabled.Store(true)

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Enabled reports whether requests are being limited.
func (rl *RateLimiter) Enabled() bool {
	return rl.enabled.Load()
}

// Allow checks if a request from client is allowed.
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.Enabled() {
		return true
	}

	rl.mu.RLock()
	perClient, limiter := rl.perClient, rl.limiter
	rl.mu.RUnlock()

	if perClient {
		return rl.allowPerClient(client)
	}
	return limiter.Allow()
}

func (rl *RateLimiter) allowPerClient(client string) bool {
	now := rl.now()

	rl.mu.Lock()
	entry, exists := rl.clients[client]
	if !exists {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
		}
		rl.clients[client] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Update applies new settings. Per-client buckets are dropped when the
// rate or burst changes.
func (rl *RateLimiter) Update(cfg *config.RateLimitConfig) {
	if cfg == nil {
		return
	}

	rl.mu.Lock()
	changed := cfg.RequestsPerSecond != rl.rps || cfg.Burst != rl.burst
	rl.rps, rl.burst, rl.perClient = cfg.RequestsPerSecond, cfg.Burst, cfg.PerClient
	rl.limiter.SetLimit(rate.Limit(cfg.RequestsPerSecond))
	rl.limiter.SetBurst(cfg.Burst)
	if changed || !cfg.PerClient {
		rl.clients = make(map[string]*clientEntry)
	}
	rl.mu.Unlock()

	rl.enabled.Store(cfg.Enabled)

	rl.logger.Info("rate limiter updated",
		observability.Bool("enabled", cfg.Enabled),
		observability.Int("requests_per_second", cfg.RequestsPerSecond),
		observability.Int("burst", cfg.Burst),
		observability.Bool("per_client", cfg.PerClient),
	)
}

// ClientCount returns the number of tracked per-client buckets.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// RateLimit returns a middleware that answers 429 with a JSON body when
// the limiter rejects a request.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			client := rl.extractor.Extract(r)
			if !rl.Allow(client) {
				rl.logger.Warn("rate limit exceeded",
					observability.String("client_ip", client),
					observability.String("path", r.URL.Path),
				)
				if rl.onHit != nil {
					rl.onHit(r.URL.Path)
				}

				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.Header().Set(HeaderRetryAfter, "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, ErrRateLimitExceeded)
				return
			}

			GetMiddlewareMetrics().rateLimitAllowed.Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitFromConfig creates the rate limit middleware and its limiter.
// The limiter is created even when disabled so a reload can enable it.
// The caller should call Stop on the limiter during shutdown.
func RateLimitFromConfig(
	cfg *config.RateLimitConfig,
	logger observability.Logger,
	opts ...RateLimiterOption,
) (func(http.Handler) http.Handler, *RateLimiter) {
	if cfg == nil {
		cfg = &config.RateLimitConfig{
			RequestsPerSecond: config.DefaultRequestsPerSecond,
			Burst:             config.DefaultBurst,
		}
	}

	opts = append([]RateLimiterOption{WithRateLimiterLogger(logger)}, opts...)
	rl := NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.PerClient, opts...)
	rl.enabled.Store(cfg.Enabled)
	rl.StartAutoCleanup()

	return RateLimit(rl), rl
}

// CleanupOldClients removes client entries idle for longer than maxAge.
func (rl *RateLimiter) CleanupOldClients(maxAge time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for client, entry := range rl.clients {
		if now.Sub(entry.lastAccess) > maxAge {
			delete(rl.clients, client)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.Debug("cleaned up expired rate limiter entries",
			observability.Int("removed", removed),
			observability.Int("remaining", len(rl.clients)),
		)
	}
}

// StartAutoCleanup periodically drops idle client entries until Stop.
func (rl *RateLimiter) StartAutoCleanup() {
	interval := rl.clientTTL / 2
	if interval > MaxCleanupInterval {
		interval = MaxCleanupInterval
	}
	if interval < MinCleanupInterval {
		interval = MinCleanupInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.CleanupOldClients(rl.clientTTL)
			case <-rl.stopCh:
				return
			}
		}
	}()
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}
