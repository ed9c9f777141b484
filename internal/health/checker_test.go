package health

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

func okCheck(name string) HealthCheck {
	return CustomHealthCheck(name, func(context.Context) error { return nil })
}

func failingCheck(name string, opts ...DependencyCheckOption) HealthCheck {
	return CustomHealthCheck(name, func(context.Context) error { return errStub }, opts...)
}

func TestNewChecker_Defaults(t *testing.T) {
	t.Parallel()

	c := NewChecker()

	assert.False(t, c.IsDraining())
	assert.Empty(t, c.CheckNames())
	assert.NoError(t, c.Ready(context.Background()))
	assert.Equal(t, StatusOK, c.Status(context.Background()))
	assert.GreaterOrEqual(t, c.Uptime(), time.Duration(0))
}

func TestChecker_Ready(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     []HealthCheck
		wantFailed []string
	}{
		{
			name:   "all pass",
			checks: []HealthCheck{okCheck("a"), okCheck("b")},
		},
		{
			name:       "critical failure",
			checks:     []HealthCheck{okCheck("a"), failingCheck("b")},
			wantFailed: []string{"b"},
		},
		{
			name:   "non-critical failure is ignored",
			checks: []HealthCheck{okCheck("a"), failingCheck("b", WithCritical(false))},
		},
		{
			name:       "failures are sorted",
			checks:     []HealthCheck{failingCheck("z"), failingCheck("m"), &stubCheck{name: "a", err: errStub}},
			wantFailed: []string{"a", "m", "z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewChecker(WithChecks(tt.checks...))
			err := c.Ready(context.Background())

			if tt.wantFailed == nil {
				assert.NoError(t, err)
				assert.True(t, c.CheckReady(context.Background()))
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnready)

			var ue *UnreadyError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.wantFailed, ue.Failed)
			assert.False(t, ue.Draining)
			assert.Equal(t, StatusDegraded, c.Status(context.Background()))
		})
	}
}

func TestChecker_ReadyTimeout(t *testing.T) {
	t.Parallel()

	hang := CustomHealthCheck("hang", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	c := NewChecker(WithTimeout(30*time.Millisecond), WithChecks(hang))

	start := time.Now()
	err := c.Ready(context.Background())
	assert.ErrorIs(t, err, ErrUnready)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChecker_LogsFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	logger, err := observability.NewLogger(observability.LogConfig{Level: "debug"},
		zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	require.NoError(t, err)
	c := NewChecker(
		WithLogger(logger),
		WithChecks(failingCheck("db", WithCritical(false))),
	)

	require.NoError(t, c.Ready(context.Background()))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "readiness check failed", entry.Message)
	assert.Equal(t, "db", entry.ContextMap()["check"])
	assert.Equal(t, false, entry.ContextMap()["critical"])
}

func TestChecker_Draining(t *testing.T) {
	t.Parallel()

	c := NewChecker(WithChecks(okCheck("a")))
	require.NoError(t, c.Ready(context.Background()))

	c.SetDraining(true)
	assert.True(t, c.IsDraining())

	err := c.Ready(context.Background())
	require.Error(t, err)
	var ue *UnreadyError
	require.True(t, errors.As(err, &ue))
	assert.True(t, ue.Draining)
	assert.Equal(t, "service unready: draining", ue.Error())

	c.SetDraining(false)
	assert.NoError(t, c.Ready(context.Background()))
}

func TestChecker_AddRemoveCheck(t *testing.T) {
	t.Parallel()

	c := NewChecker()
	c.AddCheck(okCheck("a"))
	c.AddCheck(failingCheck("b"))
	assert.Equal(t, []string{"a", "b"}, c.CheckNames())
	assert.Error(t, c.Ready(context.Background()))

	c.RemoveCheck("b")
	c.RemoveCheck("missing")
	assert.Equal(t, []string{"a"}, c.CheckNames())
	assert.NoError(t, c.Ready(context.Background()))
}

func TestChecker_ReplaceChecksClosesOld(t *testing.T) {
	t.Parallel()

	closed := false
	old := CustomHealthCheck("old", func(context.Context) error { return nil })
	old.closeFn = func() error {
		closed = true
		return errors.New("close failed")
	}

	c := NewChecker(WithChecks(old))
	c.ReplaceChecks([]HealthCheck{okCheck("new")}, time.Second)

	assert.True(t, closed)
	assert.Equal(t, []string{"new"}, c.CheckNames())

	c.Close()
	assert.Empty(t, c.CheckNames())
}

func TestChecker_ReplaceChecksWaitsForInflightProbe(t *testing.T) {
	t.Parallel()

	var closed atomic.Bool
	started := make(chan struct{})
	release := make(chan struct{})

	old := CustomHealthCheck("cache", func(context.Context) error {
		close(started)
		<-release
		if closed.Load() {
			return errors.New("client closed")
		}
		return nil
	})
	old.closeFn = func() error {
		closed.Store(true)
		return nil
	}

	c := NewChecker(WithChecks(old), WithTimeout(10*time.Second))

	readyErr := make(chan error, 1)
	go func() { readyErr <- c.Ready(context.Background()) }()
	<-started

	replaced := make(chan struct{})
	go func() {
		c.ReplaceChecks([]HealthCheck{okCheck("cache-v2")}, 0)
		close(replaced)
	}()

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"cache-v2"}, c.CheckNames())
	}, time.Second, 5*time.Millisecond)
	assert.True(t, c.CheckReady(context.Background()))

	select {
	case <-replaced:
		t.Fatal("replaced checks closed while a probe was still running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, closed.Load())

	close(release)
	require.NoError(t, <-readyErr)

	select {
	case <-replaced:
	case <-time.After(5 * time.Second):
		t.Fatal("ReplaceChecks did not return")
	}
	assert.True(t, closed.Load())
}

func TestChecker_Uptime(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewChecker(WithStartTime(start))
	c.now = func() time.Time { return start.Add(3*time.Hour + 12*time.Minute) }

	assert.Equal(t, start, c.StartTime())
	assert.Equal(t, 3*time.Hour+12*time.Minute, c.Uptime())
}

func TestChecker_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewChecker(WithChecks(okCheck("a")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = c.Ready(context.Background())
		}()
		go func() {
			defer wg.Done()
			c.ReplaceChecks([]HealthCheck{okCheck("a")}, 0)
		}()
		go func() {
			defer wg.Done()
			c.SetDraining(false)
		}()
	}
	wg.Wait()
}

func TestUnreadyError(t *testing.T) {
	t.Parallel()

	err := &UnreadyError{Failed: []string{"db", "cache"}}
	assert.Equal(t, "service unready: failed checks: db, cache", err.Error())
	assert.True(t, errors.Is(err, ErrUnready))
	assert.True(t, errors.Is(err, &UnreadyError{}))
	assert.False(t, errors.Is(err, errStub))
}
