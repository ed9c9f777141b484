package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// DependencyType represents the type of dependency.
type DependencyType string

const (
	// DependencyTypeHTTP is an HTTP service dependency.
	DependencyTypeHTTP DependencyType = "http"
	// DependencyTypeTCP is a TCP service dependency.
	DependencyTypeTCP DependencyType = "tcp"
	// DependencyTypeRedis is a Redis dependency.
	DependencyTypeRedis DependencyType = "redis"
	// DependencyTypeCustom is a custom dependency.
	DependencyTypeCustom DependencyType = "custom"
)

// HealthCheck defines the interface for health checks.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// criticalCheck is implemented by checks that may be non-critical.
type criticalCheck interface {
	IsCritical() bool
}

// isCritical reports whether a failing check makes the service unready.
// Checks are critical unless they say otherwise.
func isCritical(check HealthCheck) bool {
	if c, ok := check.(criticalCheck); ok {
		return c.IsCritical()
	}
	return true
}

// DependencyCheck represents a dependency health check.
type DependencyCheck struct {
	name     string
	depType  DependencyType
	checkFn  func(ctx context.Context) error
	critical bool
	timeout  time.Duration
	closeFn  func() error
}

// Name returns the name of the dependency check.
func (d *DependencyCheck) Name() string {
	return d.name
}

// Type returns the dependency type.
func (d *DependencyCheck) Type() DependencyType {
	return d.depType
}

// Check performs the dependency health check and records its outcome.
func (d *DependencyCheck) Check(ctx context.Context) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.checkFn(ctx)
	GetHealthMetrics().RecordCheck(d.name, string(d.depType), err == nil, time.Since(start))

	return err
}

// IsCritical returns true if the dependency is critical.
func (d *DependencyCheck) IsCritical() bool {
	return d.critical
}

// Close releases resources owned by the check, such as a client
// connection pool.
func (d *DependencyCheck) Close() error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// DependencyCheckOption is a function that configures a DependencyCheck.
type DependencyCheckOption func(*DependencyCheck)

// WithCritical marks the dependency as critical.
func WithCritical(critical bool) DependencyCheckOption {
	return func(d *DependencyCheck) {
		d.critical = critical
	}
}

// WithCheckTimeout bounds a single run of the check.
func WithCheckTimeout(timeout time.Duration) DependencyCheckOption {
	return func(d *DependencyCheck) {
		d.timeout = timeout
	}
}

// NewDependencyCheck creates a new dependency check. Checks are critical
// by default.
func NewDependencyCheck(
	name string,
	depType DependencyType,
	checkFn func(ctx context.Context) error,
	opts ...DependencyCheckOption,
) *DependencyCheck {
	d := &DependencyCheck{
		name:     name,
		depType:  depType,
		checkFn:  checkFn,
		critical: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HTTPHealthCheck creates a check that expects a 2xx answer to a GET.
func HTTPHealthCheck(name, url string, timeout time.Duration, opts ...DependencyCheckOption) *DependencyCheck {
	client := &http.Client{Timeout: timeout}

	return NewDependencyCheck(name, DependencyTypeHTTP, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unhealthy status code: %d", resp.StatusCode)
		}

		return nil
	}, opts...)
}

// TCPHealthCheck creates a check that succeeds when address accepts a
// TCP connection.
func TCPHealthCheck(name, address string, timeout time.Duration, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, DependencyTypeTCP, func(ctx context.Context) error {
		dialer := &net.Dialer{Timeout: timeout}

		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer conn.Close()

		return nil
	}, opts...)
}

// RedisHealthCheck creates a check that pings a Redis server.
func RedisHealthCheck(name string, client redis.UniversalClient, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, DependencyTypeRedis, func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is nil")
		}

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		return nil
	}, opts...)
}

// CustomHealthCheck creates a check from a function.
func CustomHealthCheck(
	name string,
	checkFn func(ctx context.Context) error,
	opts ...DependencyCheckOption,
) *DependencyCheck {
	return NewDependencyCheck(name, DependencyTypeCustom, checkFn, opts...)
}

// RedisAddressHealthCheck creates a Redis check with its own client for
// addr. The client is released by Close.
func RedisAddressHealthCheck(name, addr string, timeout time.Duration, opts ...DependencyCheckOption) *DependencyCheck {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     2,
		MaxRetries:   -1,
	})

	check := RedisHealthCheck(name, client, opts...)
	check.closeFn = client.Close
	return check
}
