package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/svcinfo/internal/health"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// buildFunc produces the status code and body value of a response.
type buildFunc func(c *gin.Context) (int, value.Value, error)

// versionValue describes the running build.
func (s *Server) versionValue(*gin.Context) (int, value.Value, error) {
	commit := value.Null()
	if s.info.HasCommit() {
		commit = value.String(s.info.Commit)
	}

	builtAt := value.Null()
	if !s.info.BuiltAt.IsZero() {
		builtAt = value.String(s.info.BuiltAt.UTC().Format(time.RFC3339))
	}

	rec, err := value.NewRecord(
		value.F("service_name", value.String(s.info.ServiceName)),
		value.F("version", value.String(s.info.Version)),
		value.F("build_commit", commit),
		value.F("runtime_version", value.String(s.info.RuntimeVersion)),
		value.F("platform", value.String(s.info.Platform)),
		value.F("arch", value.String(s.info.Arch)),
		value.F("built_at", builtAt),
	)
	if err != nil {
		return 0, value.Value{}, err
	}
	return http.StatusOK, value.RecordOf(rec), nil
}

// healthValue reports readiness. An unready probe answers 503 with the
// degraded status; the failure detail is logged by the probe.
func (s *Server) healthValue(c *gin.Context) (int, value.Value, error) {
	code, status := http.StatusOK, health.StatusOK
	if err := s.probe.Ready(c.Request.Context()); err != nil {
		code, status = http.StatusServiceUnavailable, health.StatusDegraded
	}

	rec, err := value.NewRecord(
		value.F("status", value.String(string(status))),
		value.F("uptime", value.Duration(s.probe.Uptime())),
	)
	if err != nil {
		return 0, value.Value{}, err
	}
	return code, value.RecordOf(rec), nil
}

// metricsValue lists the tracked counters and gauges. An empty snapshot
// is a valid, header-only table.
func (s *Server) metricsValue(*gin.Context) (int, value.Value, error) {
	samples, err := s.source.Snapshot()
	if err != nil {
		return 0, value.Value{}, err
	}

	b := value.NewTableBuilder("metric_name", "value", "unit")
	for _, sample := range samples {
		err := b.AppendFields(
			value.F("metric_name", value.String(sample.Name)),
			value.F("value", sample.Value),
			value.F("unit", value.String(sample.Unit)),
		)
		if err != nil {
			return 0, value.Value{}, err
		}
	}

	table, err := b.Build()
	if err != nil {
		return 0, value.Value{}, err
	}
	return http.StatusOK, value.TableOf(table), nil
}

// notFoundValue answers unknown paths with the endpoints table.
func (s *Server) notFoundValue(*gin.Context) (int, value.Value, error) {
	table, err := s.endpointsTable()
	if err != nil {
		return 0, value.Value{}, err
	}
	return http.StatusNotFound, value.TableOf(table), nil
}

// methodNotAllowedValue answers a served path requested with another
// method.
func (s *Server) methodNotAllowedValue(c *gin.Context) (int, value.Value, error) {
	c.Header("Allow", http.MethodGet)

	rec, err := value.NewRecord(
		value.F("error", value.String("method not allowed")),
		value.F("method", value.String(c.Request.Method)),
		value.F("path", value.String(c.Request.URL.Path)),
	)
	if err != nil {
		return 0, value.Value{}, err
	}
	return http.StatusMethodNotAllowed, value.RecordOf(rec), nil
}
