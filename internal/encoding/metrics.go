package encoding

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EncodingMetrics contains Prometheus metrics for format selection and rendering.
type EncodingMetrics struct {
	negotiationsTotal *prometheus.CounterVec
	rendersTotal      *prometheus.CounterVec
}

var (
	encodingMetricsInstance *EncodingMetrics
	encodingMetricsOnce     sync.Once
)

// GetEncodingMetrics returns the singleton encoding metrics instance.
func GetEncodingMetrics() *EncodingMetrics {
	encodingMetricsOnce.Do(func() {
		encodingMetricsInstance = &EncodingMetrics{
			negotiationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "svcinfo",
					Subsystem: "encoding",
					Name:      "negotiations_total",
					Help:      "Total number of output format selections",
				},
				[]string{"format", "source"},
			),
			rendersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "svcinfo",
					Subsystem: "encoding",
					Name:      "renders_total",
					Help:      "Total number of rendered response bodies",
				},
				[]string{"format", "result"},
			),
		}
	})
	return encodingMetricsInstance
}

// MustRegister registers the encoding collectors with a custom registry
// so they appear next to the service metrics.
func (m *EncodingMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.negotiationsTotal,
		m.rendersTotal,
	)
}

// RecordNegotiation records a format selection.
func (m *EncodingMetrics) RecordNegotiation(format, source string) {
	m.negotiationsTotal.WithLabelValues(format, source).Inc()
}

// RecordRender records a render outcome.
func (m *EncodingMetrics) RecordRender(format, result string) {
	m.rendersTotal.WithLabelValues(format, result).Inc()
}
