package health

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// DefaultReadinessTimeout bounds a full readiness probe.
const DefaultReadinessTimeout = 5 * time.Second

// Status is the health status reported by /healthz.
type Status string

const (
	// StatusOK indicates the service is ready.
	StatusOK Status = "ok"
	// StatusDegraded indicates the readiness probe failed.
	StatusDegraded Status = "degraded"
)

// Checker is the readiness probe. It is safe for concurrent use.
type Checker struct {
	logger    observability.Logger
	mu        sync.RWMutex
	checks    []HealthCheck
	inflight  *sync.WaitGroup
	timeout   time.Duration
	startTime time.Time
	draining  atomic.Bool
	now       func() time.Time
}

// CheckerOption is a functional option for configuring the checker.
type CheckerOption func(*Checker)

// WithLogger sets the logger for the checker.
func WithLogger(logger observability.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithTimeout sets the timeout for a full readiness probe.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithStartTime sets the instant uptime is measured from.
func WithStartTime(t time.Time) CheckerOption {
	return func(c *Checker) {
		c.startTime = t
	}
}

// WithChecks registers the initial checks.
func WithChecks(checks ...HealthCheck) CheckerOption {
	return func(c *Checker) {
		c.checks = append(c.checks, checks...)
	}
}

// NewChecker creates a new readiness checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		logger:   observability.NopLogger(),
		inflight: &sync.WaitGroup{},
		timeout:  DefaultReadinessTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.startTime.IsZero() {
		c.startTime = c.now()
	}
	return c
}

// AddCheck adds a health check.
func (c *Checker) AddCheck(check HealthCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// RemoveCheck removes a health check by name.
func (c *Checker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, check := range c.checks {
		if check.Name() == name {
			c.checks = append(c.checks[:i], c.checks[i+1:]...)
			return
		}
	}
}

// ReplaceChecks swaps the whole check set, e.g. after a configuration
// reload, and closes the checks that were replaced once every probe
// started before the swap has returned.
func (c *Checker) ReplaceChecks(checks []HealthCheck, timeout time.Duration) {
	c.mu.Lock()
	old, inflight := c.checks, c.inflight
	c.checks = append([]HealthCheck(nil), checks...)
	c.inflight = &sync.WaitGroup{}
	if timeout > 0 {
		c.timeout = timeout
	}
	c.mu.Unlock()

	inflight.Wait()

	for _, check := range old {
		closeCheck(check, c.logger)
	}
}

// Close releases resources held by the registered checks.
func (c *Checker) Close() {
	c.ReplaceChecks(nil, 0)
}

func closeCheck(check HealthCheck, logger observability.Logger) {
	closer, ok := check.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close readiness check",
			observability.String("check", check.Name()),
			observability.Error(err),
		)
	}
}

// CheckNames returns the names of the registered checks.
func (c *Checker) CheckNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.checks))
	for i, check := range c.checks {
		names[i] = check.Name()
	}
	return names
}

// SetDraining marks the service as shutting down. A draining service is
// unready whatever its checks report.
func (c *Checker) SetDraining(draining bool) {
	c.draining.Store(draining)
	if draining {
		c.logger.Info("readiness set to draining")
	}
}

// IsDraining reports whether the service is shutting down.
func (c *Checker) IsDraining() bool {
	return c.draining.Load()
}

// Uptime returns the time elapsed since the checker started.
func (c *Checker) Uptime() time.Duration {
	return c.now().Sub(c.startTime)
}

// StartTime returns the instant uptime is measured from.
func (c *Checker) StartTime() time.Time {
	return c.startTime
}

// Ready runs every check concurrently and returns nil when the service
// can take traffic. It returns an *UnreadyError while draining or when a
// critical check fails.
func (c *Checker) Ready(ctx context.Context) error {
	m := GetHealthMetrics()

	if c.IsDraining() {
		m.RecordReadiness(false)
		return &UnreadyError{Draining: true}
	}

	c.mu.RLock()
	checks := make([]HealthCheck, len(c.checks))
	copy(checks, c.checks)
	timeout := c.timeout
	inflight := c.inflight
	inflight.Add(1)
	c.mu.RUnlock()
	defer inflight.Done()

	if len(checks) == 0 {
		m.RecordReadiness(true)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)

	for _, check := range checks {
		wg.Add(1)
		go func(hc HealthCheck) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)
			if err == nil {
				return
			}

			critical := isCritical(hc)
			c.logger.Warn("readiness check failed",
				observability.String("check", hc.Name()),
				observability.Bool("critical", critical),
				observability.Duration("duration", time.Since(start)),
				observability.Error(err),
			)

			if critical {
				mu.Lock()
				failed = append(failed, hc.Name())
				mu.Unlock()
			}
		}(check)
	}

	wg.Wait()

	if len(failed) > 0 {
		sort.Strings(failed)
		m.RecordReadiness(false)
		return &UnreadyError{Failed: failed}
	}

	m.RecordReadiness(true)
	return nil
}

// CheckReady reports readiness as a bool.
func (c *Checker) CheckReady(ctx context.Context) bool {
	return c.Ready(ctx) == nil
}

// Status runs the readiness probe and maps the outcome to a Status.
func (c *Checker) Status(ctx context.Context) Status {
	if c.CheckReady(ctx) {
		return StatusOK
	}
	return StatusDegraded
}
