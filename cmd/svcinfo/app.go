package main

import (
	"fmt"

	"github.com/vyrodovalexey/svcinfo/internal/buildinfo"
	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/encoding"
	"github.com/vyrodovalexey/svcinfo/internal/health"
	"github.com/vyrodovalexey/svcinfo/internal/middleware"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
	"github.com/vyrodovalexey/svcinfo/internal/server"
)

// application holds all application components.
type application struct {
	config  *config.Config
	info    buildinfo.Info
	server  *server.Server
	checker *health.Checker
	metrics *observability.Metrics
	tracer  *observability.Tracer
	logger  observability.Logger
}

// newApplication initializes all application components.
func newApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	info := buildinfo.New(cfg.Metadata.Name, version, gitCommit, buildTime)

	tracer, err := initTracer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	metrics := observability.NewMetrics(cfg.Spec.Observability.Metrics.Namespace)
	metrics.SetBuildInfo(info.Version, info.Commit, info.RuntimeVersion)
	registerComponentMetrics(metrics)

	checks, err := health.ChecksFromConfig(&cfg.Spec.Readiness, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build readiness checks: %w", err)
	}
	checker := health.NewChecker(
		health.WithLogger(logger),
		health.WithTimeout(cfg.Spec.Readiness.Timeout.Duration()),
		health.WithChecks(checks...),
	)

	srv, err := server.NewServer(cfg,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithTracer(tracer),
		server.WithReadinessProbe(checker),
		server.WithBuildInfo(info),
	)
	if err != nil {
		checker.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("application initialized",
		observability.String("name", cfg.Metadata.Name),
		observability.String("version", info.Version),
		observability.String("commit", info.Commit),
		observability.String("address", cfg.Spec.Server.Address),
		observability.Int("readiness_checks", len(checks)),
		observability.Bool("tracing", tracer.Enabled()),
	)

	return &application{
		config:  cfg,
		info:    info,
		server:  srv,
		checker: checker,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config) (*observability.Tracer, error) {
	tracing := cfg.Spec.Observability.Tracing
	return observability.NewTracer(observability.TracerConfig{
		ServiceName:    tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   tracing.OTLPEndpoint,
		SamplingRate:   tracing.SamplingRate,
		Enabled:        tracing.Enabled,
	})
}

// registerComponentMetrics exposes the package-level collectors on the
// service registry next to the request metrics.
func registerComponentMetrics(metrics *observability.Metrics) {
	registry := metrics.Registry()
	encoding.GetEncodingMetrics().MustRegister(registry)
	health.GetHealthMetrics().MustRegister(registry)
	middleware.GetMiddlewareMetrics().MustRegister(registry)
}

// reload applies a changed configuration. The log level, the negotiation
// policy, the rate limit and the readiness checks are swapped in place.
func (app *application) reload(cfg *config.Config) {
	app.logger.Info("configuration changed, reloading")

	if err := app.logger.SetLevel(cfg.Spec.Observability.Logging.Level); err != nil {
		app.logger.Error("failed to apply log level", observability.Error(err))
		return
	}

	if err := app.server.ApplyConfig(cfg); err != nil {
		app.logger.Error("failed to apply server configuration", observability.Error(err))
		return
	}

	checks, err := health.ChecksFromConfig(&cfg.Spec.Readiness, app.logger)
	if err != nil {
		app.logger.Error("failed to rebuild readiness checks", observability.Error(err))
		return
	}
	app.checker.ReplaceChecks(checks, cfg.Spec.Readiness.Timeout.Duration())

	app.logger.Info("configuration reloaded",
		observability.Int("readiness_checks", len(checks)),
	)
}
