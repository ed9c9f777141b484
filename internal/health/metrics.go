package health

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics holds Prometheus metrics for readiness checks.
type HealthMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkStatus   *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
	breakerState  *prometheus.GaugeVec
	ready         prometheus.Gauge
}

var (
	healthMetricsInstance *HealthMetrics
	healthMetricsOnce     sync.Once
)

// GetHealthMetrics returns the singleton health metrics instance.
func GetHealthMetrics() *HealthMetrics {
	healthMetricsOnce.Do(func() {
		healthMetricsInstance = &HealthMetrics{
			checksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "svcinfo",
					Subsystem: "health",
					Name:      "checks_total",
					Help:      "Total number of readiness dependency checks performed",
				},
				[]string{"check", "type", "result"},
			),
			checkStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "svcinfo",
					Subsystem: "health",
					Name:      "check_status",
					Help:      "Last dependency check status (1=healthy, 0=unhealthy)",
				},
				[]string{"check", "type"},
			),
			checkDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "svcinfo",
					Subsystem: "health",
					Name:      "check_duration_seconds",
					Help:      "Dependency check duration in seconds",
					Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
				},
				[]string{"check"},
			),
			breakerState: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "svcinfo",
					Subsystem: "health",
					Name:      "circuit_breaker_state",
					Help:      "Dependency check circuit breaker state (0=closed, 1=half-open, 2=open)",
				},
				[]string{"check"},
			),
			ready: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "svcinfo",
					Subsystem: "health",
					Name:      "ready",
					Help:      "Outcome of the last readiness probe (1=ready, 0=unready)",
				},
			),
		}
	})
	return healthMetricsInstance
}

// MustRegister registers the health collectors with the service registry.
// promauto registers with the default registry; the service exposes its
// own registry, so the collectors are registered there too.
func (m *HealthMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.checksTotal,
		m.checkStatus,
		m.checkDuration,
		m.breakerState,
		m.ready,
	)
}

// RecordCheck records one dependency check outcome.
func (m *HealthMetrics) RecordCheck(check, depType string, healthy bool, duration time.Duration) {
	result, status := "failure", 0.0
	if healthy {
		result, status = "success", 1.0
	}
	m.checksTotal.WithLabelValues(check, depType, result).Inc()
	m.checkStatus.WithLabelValues(check, depType).Set(status)
	m.checkDuration.WithLabelValues(check).Observe(duration.Seconds())
}

// SetBreakerState records a circuit breaker state.
func (m *HealthMetrics) SetBreakerState(check string, state int) {
	m.breakerState.WithLabelValues(check).Set(float64(state))
}

// RecordReadiness records the outcome of a readiness probe.
func (m *HealthMetrics) RecordReadiness(ready bool) {
	if ready {
		m.ready.Set(1)
		return
	}
	m.ready.Set(0)
}
