package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

func TestBreakerHealthCheck_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := CustomHealthCheck("flaky", func(context.Context) error {
		calls.Add(1)
		return errStub
	})

	b := NewBreakerHealthCheck(inner, 2, time.Hour, WithBreakerLogger(observability.NopLogger()))
	assert.Equal(t, "flaky", b.Name())
	assert.True(t, b.IsCritical())

	ctx := context.Background()
	assert.ErrorIs(t, b.Check(ctx), errStub)
	assert.ErrorIs(t, b.Check(ctx), errStub)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Check(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCheckSkipped)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerHealthCheck_RecoversAfterTimeout(t *testing.T) {
	t.Parallel()

	var healthy atomic.Bool
	inner := CustomHealthCheck("recovering", func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errStub
	})

	b := NewBreakerHealthCheck(inner, 1, 50*time.Millisecond)

	ctx := context.Background()
	assert.Error(t, b.Check(ctx))
	assert.Equal(t, gobreaker.StateOpen, b.State())

	healthy.Store(true)
	assert.Eventually(t, func() bool {
		return b.Check(ctx) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerHealthCheck_Defaults(t *testing.T) {
	t.Parallel()

	inner := &stubCheck{name: "stub", err: errStub}
	b := NewBreakerHealthCheck(inner, 0, 0)

	for i := 0; i < DefaultBreakerMaxFailures; i++ {
		assert.ErrorIs(t, b.Check(context.Background()), errStub)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.NoError(t, b.Close())
}

func TestBreakerHealthCheck_ForwardsCriticalAndClose(t *testing.T) {
	t.Parallel()

	closed := false
	inner := CustomHealthCheck("x", func(context.Context) error { return nil }, WithCritical(false))
	inner.closeFn = func() error {
		closed = true
		return nil
	}

	b := NewBreakerHealthCheck(inner, 1, time.Second)
	assert.False(t, b.IsCritical())
	require.NoError(t, b.Close())
	assert.True(t, closed)
}

func TestSafeIntToUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), safeIntToUint32(-1))
	assert.Equal(t, uint32(7), safeIntToUint32(7))
}
