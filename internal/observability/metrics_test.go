package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		namespace     string
		wantNamespace string
	}{
		{name: "custom namespace", namespace: "custom", wantNamespace: "custom"},
		{name: "empty namespace uses default", namespace: "", wantNamespace: DefaultNamespace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMetrics(tt.namespace)

			require.NotNil(t, m)
			assert.Equal(t, tt.wantNamespace, m.Namespace())
			assert.NotNil(t, m.requestsTotal)
			assert.NotNil(t, m.requestErrors)
			assert.NotNil(t, m.requestDuration)
			assert.NotNil(t, m.responseSize)
			assert.NotNil(t, m.activeRequests)
			assert.NotNil(t, m.rateLimitHits)
			assert.NotNil(t, m.Registry())
		})
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.RecordRequest("GET", "/version", http.StatusOK, 5*time.Millisecond, 120)
	m.RecordRequest("GET", "/version", http.StatusBadRequest, time.Millisecond, 40)
	m.RecordRequest("GET", "/healthz", http.StatusServiceUnavailable, time.Millisecond, 40)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/version", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestErrors.WithLabelValues("GET", "/version", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestErrors.WithLabelValues("GET", "/healthz", "503")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestErrors))
}

func TestMetrics_ActiveRequests(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	m.DecrementActiveRequests()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRequests))
}

func TestMetrics_RateLimitAndBuildInfo(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.RecordRateLimitHit()
	m.SetBuildInfo("1.2.3", "abc", "go1.25")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildInfo.WithLabelValues("1.2.3", "abc", "go1.25")))
}

func TestMetrics_RegisterCollector(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})

	require.NoError(t, m.RegisterCollector(c))
	assert.Error(t, m.RegisterCollector(c))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordRequest("GET", "/metrics", http.StatusOK, time.Millisecond, 10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	handler := MetricsMiddleware(m, "/version")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/version", "/version", "/missing/1", "/missing/2"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/version", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", unmatchedRoute, "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestErrors.WithLabelValues("GET", unmatchedRoute, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests))
}

func TestMetricsResponseWriter_Flush(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &metricsResponseWriter{ResponseWriter: rec, status: http.StatusOK}

	rw.Flush()
	assert.True(t, rec.Flushed)

	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
