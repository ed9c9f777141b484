package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Spec.Server.Address = "127.0.0.1:0"
	cfg.Spec.Server.ShutdownTimeout = config.Duration(5 * time.Second)
	return cfg
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	app, err := newApplication(testConfig(), observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(app, nil) })

	assert.Equal(t, "svcinfo", app.info.ServiceName)
	assert.Equal(t, "dev", app.info.Version)
	assert.False(t, app.tracer.Enabled())

	rec := get(t, app.server.Handler(), "/version?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service_name":"svcinfo"`)

	rec = get(t, app.server.Handler(), "/metrics/prometheus")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "svcinfo_build_info")
	assert.Contains(t, body, "svcinfo_encoding_renders_total")
	assert.Contains(t, body, "svcinfo_health_ready")
}

func TestNewApplication_ReadinessFromConfig(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Spec.Readiness.Checks = []config.CheckConfig{
		{Name: "cache", Type: config.CheckTypeRedis, Target: mr.Addr(), Timeout: config.Duration(time.Second)},
	}

	app, err := newApplication(cfg, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(app, nil) })

	rec := get(t, app.server.Handler(), "/healthz?format=json")
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.Close()

	rec = get(t, app.server.Handler(), "/healthz?format=json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"status":"degraded","uptime":`))
}

func TestNewApplication_InvalidCheck(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Spec.Readiness.Checks = []config.CheckConfig{{Name: "x", Type: "grpc", Target: "db:1"}}

	_, err := newApplication(cfg, observability.NopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build readiness checks")
}

func TestApplication_Reload(t *testing.T) {
	t.Parallel()

	app, err := newApplication(testConfig(), observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(app, nil) })

	assert.Equal(t, "text/html; charset=utf-8", get(t, app.server.Handler(), "/version").Header().Get("Content-Type"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	newCfg := testConfig()
	newCfg.Spec.Negotiation.DefaultFormat = "json"
	newCfg.Spec.Readiness.Checks = []config.CheckConfig{
		{Name: "db", Type: config.CheckTypeTCP, Target: addr, Timeout: config.Duration(200 * time.Millisecond)},
	}
	app.reload(newCfg)

	assert.Equal(t, "application/json; charset=utf-8",
		get(t, app.server.Handler(), "/version").Header().Get("Content-Type"))
	assert.Equal(t, []string{"db"}, app.checker.CheckNames())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, app.server.Handler(), "/healthz").Code)
}

func TestApplication_ReloadKeepsChecksOnError(t *testing.T) {
	t.Parallel()

	app, err := newApplication(testConfig(), observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(app, nil) })

	bad := testConfig()
	bad.Spec.Readiness.Checks = []config.CheckConfig{{Name: "x", Type: "grpc", Target: "db:1"}}
	app.reload(bad)

	assert.Empty(t, app.checker.CheckNames())
	assert.Equal(t, http.StatusOK, get(t, app.server.Handler(), "/healthz").Code)
}

func TestApplication_ReloadLogLevel(t *testing.T) {
	t.Parallel()

	var logs *observer.ObservedLogs
	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Output: "stderr"},
		zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			var core zapcore.Core
			core, logs = observer.New(c)
			return core
		}))
	require.NoError(t, err)

	app, err := newApplication(testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(app, nil) })

	logger.Debug("before")

	cfg := testConfig()
	cfg.Spec.Observability.Logging.Level = "debug"
	app.reload(cfg)

	logger.Debug("after")

	assert.Empty(t, logs.FilterMessage("before").All())
	assert.Len(t, logs.FilterMessage("after").All(), 1)
	assert.Len(t, logs.FilterMessage("configuration reloaded").All(), 1)
}

func TestPrintBanner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printBanner(&buf, "127.0.0.1:3000"))

	want := "╭─────────┬───────────────────────╮\n" +
		"│ Status  │ Server Started        │\n" +
		"│ Address │ http://127.0.0.1:3000 │\n" +
		"╰─────────┴───────────────────────╯\n"
	assert.Equal(t, want, buf.String())
	assert.NotContains(t, buf.String(), "key")
}

// syncBuffer is a bytes.Buffer safe for a concurrent writer and reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "metadata:\n  name: svcinfo\nspec:\n  server:\n    address: \"127.0.0.1:0\"\n")
	cfg, err := loadConfig(cliFlags{configPath: path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	banner := &syncBuffer{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, cliFlags{configPath: path}, observability.NopLogger(), banner)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(banner.String(), "http://127.0.0.1:")
	}, 5*time.Second, 10*time.Millisecond)

	out := banner.String()
	start := strings.Index(out, "http://")
	end := strings.IndexAny(out[start:], " │")
	require.Positive(t, end)
	url := out[start:start+end] + "/healthz?format=json"

	resp, err := http.Get(url)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	cfg := testConfig()
	cfg.Spec.Server.Address = ln.Addr().String()

	err = run(context.Background(), cfg, cliFlags{}, observability.NopLogger(), os.Stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
