package observability

import (
	"fmt"
	"math"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// Units reported alongside snapshot samples.
const (
	UnitRequests   = "requests"
	UnitDuration   = "duration"
	UnitBytes      = "bytes"
	UnitGoroutines = "goroutines"
)

// Sample is one row of a metrics snapshot.
type Sample struct {
	Name  string
	Value value.Value
	Unit  string
}

// sampleSource maps a registry family onto a snapshot row.
type sampleSource struct {
	name   string
	family string
	unit   string

	// own families are always reported, as zero before the first
	// observation; runtime families are skipped when absent.
	own bool

	// since reports the time elapsed since the gauge's unix-seconds value.
	since bool
}

func (m *Metrics) sampleSources() []sampleSource {
	ns := m.namespace + "_"
	return []sampleSource{
		{name: "requests_total", family: ns + "requests_total", unit: UnitRequests, own: true},
		{name: "requests_in_flight", family: ns + "active_requests", unit: UnitRequests, own: true},
		{name: "request_errors_total", family: ns + "request_errors_total", unit: UnitRequests, own: true},
		{name: "uptime", family: ns + "start_time_seconds", unit: UnitDuration, own: true, since: true},
		{name: "heap_alloc_bytes", family: "go_memstats_heap_alloc_bytes", unit: UnitBytes},
		{name: "sys_memory_bytes", family: "go_memstats_sys_bytes", unit: UnitBytes},
		{name: "goroutines", family: "go_goroutines", unit: UnitGoroutines},
	}
}

// Snapshot gathers the registry and returns the service's tracked
// counters and gauges in a fixed order. Labeled series are summed.
// Gathering errors are returned only when nothing could be gathered.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil && len(families) == 0 {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	sources := m.sampleSources()
	samples := make([]Sample, 0, len(sources))
	for _, src := range sources {
		mf, ok := byName[src.family]
		if !ok && !src.own {
			continue
		}

		total := familyTotal(mf)

		var v value.Value
		if src.since {
			v = value.Duration(m.since(total))
		} else {
			v = value.Int(int64(math.Round(total)))
		}

		samples = append(samples, Sample{Name: src.name, Value: v, Unit: src.unit})
	}

	return samples, nil
}

// since converts unix seconds into the elapsed time until now.
func (m *Metrics) since(unixSeconds float64) time.Duration {
	if unixSeconds <= 0 {
		return 0
	}
	sec, frac := math.Modf(unixSeconds)
	start := time.Unix(int64(sec), int64(frac*float64(time.Second)))
	if d := m.now().Sub(start); d > 0 {
		return d
	}
	return 0
}

// familyTotal sums the values of every series in a family.
func familyTotal(mf *dto.MetricFamily) float64 {
	var total float64
	for _, metric := range mf.GetMetric() {
		switch {
		case metric.GetCounter() != nil:
			total += metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			total += metric.GetGauge().GetValue()
		case metric.GetUntyped() != nil:
			total += metric.GetUntyped().GetValue()
		}
	}
	return total
}
