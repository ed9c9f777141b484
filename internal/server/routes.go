package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/encoding"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// Served paths.
const (
	PathVersion = "/version"
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

// endpoint describes a served path for the endpoints table.
type endpoint struct {
	path        string
	description string
	negotiated  bool
}

func (s *Server) endpoints() []endpoint {
	return []endpoint{
		{path: PathVersion, description: "Service name, version and build metadata", negotiated: true},
		{path: PathHealth, description: "Readiness status and uptime", negotiated: true},
		{path: PathMetrics, description: "Request counters and runtime gauges", negotiated: true},
		{path: s.cfg.Spec.Observability.Metrics.PrometheusPath, description: "Prometheus exposition"},
	}
}

// knownRoutes returns the paths used as metric route labels.
func knownRoutes(cfg *config.Config) []string {
	return []string{PathVersion, PathHealth, PathMetrics, cfg.Spec.Observability.Metrics.PrometheusPath}
}

// newEngine creates the gin engine with every route registered.
func (s *Server) newEngine() *gin.Engine {
	// Set Gin mode based on environment (only once to avoid race conditions)
	ginModeOnce.Do(func() {
		if gin.Mode() == gin.DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}
	})

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	engine.GET(PathVersion, s.negotiated("version", s.versionValue))
	engine.GET(PathHealth, s.negotiated("health", s.healthValue))
	engine.GET(PathMetrics, s.negotiated("metrics", s.metricsValue))
	engine.GET(s.cfg.Spec.Observability.Metrics.PrometheusPath, gin.WrapH(s.metrics.Handler()))

	engine.NoRoute(s.negotiated("endpoints", s.notFoundValue))
	engine.NoMethod(s.negotiated("error", s.methodNotAllowedValue))

	return engine
}

// endpointsTable lists the served endpoints.
func (s *Server) endpointsTable() (value.Table, error) {
	negotiated := make([]string, 0, len(encoding.Formats()))
	for _, f := range encoding.Formats() {
		negotiated = append(negotiated, string(f))
	}
	formats := strings.Join(negotiated, ", ")

	b := value.NewTableBuilder("method", "path", "description", "formats")
	for _, ep := range s.endpoints() {
		f := formats
		if !ep.negotiated {
			f = "prometheus text"
		}
		err := b.AppendFields(
			value.F("method", value.String(http.MethodGet)),
			value.F("path", value.String(ep.path)),
			value.F("description", value.String(ep.description)),
			value.F("formats", value.String(f)),
		)
		if err != nil {
			return value.Table{}, err
		}
	}
	return b.Build()
}
