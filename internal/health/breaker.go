package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// ErrCheckSkipped is returned while a check's circuit breaker is open.
var ErrCheckSkipped = errors.New("check skipped: circuit breaker open")

// Circuit breaker defaults for dependency checks.
const (
	DefaultBreakerMaxFailures = 3
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// BreakerHealthCheck wraps a check in a circuit breaker. After
// maxFailures consecutive failures the dependency is reported failed
// without being contacted until the open timeout elapses.
type BreakerHealthCheck struct {
	check  HealthCheck
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// BreakerOption is a functional option for configuring the breaker.
type BreakerOption func(*BreakerHealthCheck)

// WithBreakerLogger sets the logger for state transitions.
func WithBreakerLogger(logger observability.Logger) BreakerOption {
	return func(b *BreakerHealthCheck) {
		b.logger = logger
	}
}

// NewBreakerHealthCheck creates a circuit breaker around check.
func NewBreakerHealthCheck(
	check HealthCheck,
	maxFailures int,
	openTimeout time.Duration,
	opts ...BreakerOption,
) *BreakerHealthCheck {
	b := &BreakerHealthCheck{
		check:  check,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if maxFailures <= 0 {
		maxFailures = DefaultBreakerMaxFailures
	}
	if openTimeout <= 0 {
		openTimeout = DefaultBreakerOpenTimeout
	}
	threshold := safeIntToUint32(maxFailures)

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        check.Name(),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("readiness check circuit breaker state change",
				observability.String("check", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			GetHealthMetrics().SetBreakerState(name, int(to))
		},
	})

	return b
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// Name returns the wrapped check's name.
func (b *BreakerHealthCheck) Name() string {
	return b.check.Name()
}

// IsCritical returns the wrapped check's criticality.
func (b *BreakerHealthCheck) IsCritical() bool {
	return isCritical(b.check)
}

// State returns the breaker state.
func (b *BreakerHealthCheck) State() gobreaker.State {
	return b.cb.State()
}

// Check runs the wrapped check through the breaker.
func (b *BreakerHealthCheck) Check(ctx context.Context) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.check.Check(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCheckSkipped, b.check.Name())
	}
	return err
}

// Close closes the wrapped check when it owns resources.
func (b *BreakerHealthCheck) Close() error {
	if c, ok := b.check.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
