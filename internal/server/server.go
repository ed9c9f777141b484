package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/svcinfo/internal/buildinfo"
	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/encoding"
	"github.com/vyrodovalexey/svcinfo/internal/health"
	"github.com/vyrodovalexey/svcinfo/internal/middleware"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

// ReadinessProbe reports whether the service can take traffic.
type ReadinessProbe interface {
	Ready(ctx context.Context) error
	Uptime() time.Duration
}

// MetricsSource provides the rows of the /metrics endpoint.
type MetricsSource interface {
	Snapshot() ([]observability.Sample, error)
}

// negotiation is the format policy swapped as a unit on reload.
type negotiation struct {
	selector   *encoding.Selector
	queryParam string
}

// Server serves the svcinfo endpoints.
type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	handler     http.Handler
	httpServer  *http.Server
	listener    net.Listener
	rateLimiter *middleware.RateLimiter

	logger  observability.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
	probe   ReadinessProbe
	source  MetricsSource
	info    buildinfo.Info

	policy atomic.Pointer[negotiation]

	mu       sync.RWMutex
	running  bool
	shutdown bool
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance recording request metrics and
// backing the Prometheus exposition path.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer sets the tracer for request and render spans.
func WithTracer(tracer *observability.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithReadinessProbe sets the probe behind /healthz.
func WithReadinessProbe(probe ReadinessProbe) Option {
	return func(s *Server) {
		s.probe = probe
	}
}

// WithMetricsSource sets the source of /metrics rows. It defaults to the
// server's metrics instance.
func WithMetricsSource(source MetricsSource) Option {
	return func(s *Server) {
		s.source = source
	}
}

// WithBuildInfo sets the metadata behind /version.
func WithBuildInfo(info buildinfo.Info) Option {
	return func(s *Server) {
		s.info = info
	}
}

// NewServer creates a server for cfg. A nil cfg uses the defaults.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		cfg:    cfg,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = observability.NewMetrics(cfg.Spec.Observability.Metrics.Namespace)
	}
	if s.source == nil {
		s.source = s.metrics
	}
	if s.probe == nil {
		s.probe = health.NewChecker(health.WithLogger(s.logger))
	}
	if s.tracer == nil {
		tracer, err := observability.NewTracer(observability.TracerConfig{
			ServiceName: cfg.Metadata.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		s.tracer = tracer
	}
	if s.info.ServiceName == "" {
		s.info = buildinfo.New(cfg.Metadata.Name, "", "", "")
	}

	policy, err := newNegotiation(&cfg.Spec.Negotiation, s.logger)
	if err != nil {
		return nil, err
	}
	s.policy.Store(policy)

	s.engine = s.newEngine()
	s.handler, s.rateLimiter = buildMiddlewareChain(s.engine, cfg, s.logger, s.metrics, s.tracer)

	return s, nil
}

func newNegotiation(cfg *config.NegotiationConfig, logger observability.Logger) (*negotiation, error) {
	def, err := encoding.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid default format: %w", err)
	}

	return &negotiation{
		selector: encoding.NewSelector(
			encoding.WithDefaultFormat(def),
			encoding.WithQueryPrecedence(cfg.QueryWins()),
			encoding.WithSelectorLogger(logger),
		),
		queryParam: cfg.QueryParam,
	}, nil
}

// Handler returns the full handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Engine returns the underlying gin engine without middleware.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start listens on the configured address and serves until Shutdown. It
// returns once the listener is closed.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Spec.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Spec.Server.Address, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server already running")
	}

	srv := s.cfg.Spec.Server
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       srv.ReadTimeout.Duration(),
		ReadHeaderTimeout: srv.ReadHeaderTimeout.Duration(),
		WriteTimeout:      srv.WriteTimeout.Duration(),
		IdleTimeout:       srv.IdleTimeout.Duration(),
	}
	s.listener = ln
	s.running = true
	httpServer := s.httpServer
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", ln.Addr().String()),
		observability.Duration("read_timeout", srv.ReadTimeout.Duration()),
		observability.Duration("write_timeout", srv.WriteTimeout.Duration()),
	)

	err := httpServer.Serve(ln)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done. A later Serve returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	httpServer := s.httpServer
	s.mu.Unlock()

	s.rateLimiter.Stop()

	if httpServer == nil {
		return nil
	}

	s.logger.Info("stopping HTTP server")

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, or the configured one before
// Serve.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Spec.Server.Address
}

// ApplyConfig applies the reloadable parts of cfg: the negotiation policy
// and the rate limit. Listener settings need a restart.
func (s *Server) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	policy, err := newNegotiation(&cfg.Spec.Negotiation, s.logger)
	if err != nil {
		return err
	}
	s.policy.Store(policy)
	s.rateLimiter.Update(&cfg.Spec.RateLimit)

	if cfg.Spec.Server.Address != s.cfg.Spec.Server.Address {
		s.logger.Warn("server address change requires a restart",
			observability.String("current", s.cfg.Spec.Server.Address),
			observability.String("configured", cfg.Spec.Server.Address),
		)
	}

	s.logger.Info("negotiation policy updated",
		observability.String("default_format", string(policy.selector.DefaultFormat())),
		observability.String("query_param", policy.queryParam),
		observability.Bool("query_overrides_accept", policy.selector.QueryOverridesAccept()),
	)
	return nil
}
