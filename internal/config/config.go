package config

import "time"

// Default values.
const (
	DefaultServiceName       = "svcinfo"
	DefaultAddress           = "127.0.0.1:3000"
	DefaultReadTimeout       = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	DefaultFormat     = "html"
	DefaultQueryParam = "format"

	DefaultRequestsPerSecond = 100
	DefaultBurst             = 200

	DefaultReadinessTimeout = 5 * time.Second
	DefaultCheckTimeout     = time.Second
	DefaultMaxFailures      = 3
	DefaultOpenTimeout      = 30 * time.Second

	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultLogOutput      = "stdout"
	DefaultPrometheusPath = "/metrics/prometheus"
	DefaultSamplingRate   = 1.0
)

// Readiness check types.
const (
	CheckTypeHTTP  = "http"
	CheckTypeTCP   = "tcp"
	CheckTypeRedis = "redis"
)

// Config is the root configuration document.
type Config struct {
	Metadata Metadata `yaml:"metadata" json:"metadata"`
	Spec     Spec     `yaml:"spec" json:"spec"`
}

// Metadata identifies the service instance.
type Metadata struct {
	Name   string            `yaml:"name" json:"name"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Spec holds the service settings.
type Spec struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Negotiation   NegotiationConfig   `yaml:"negotiation" json:"negotiation"`
	RateLimit     RateLimitConfig     `yaml:"rateLimit" json:"rateLimit"`
	Readiness     ReadinessConfig     `yaml:"readiness" json:"readiness"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address           string   `yaml:"address" json:"address"`
	ReadTimeout       Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout,omitempty" json:"readHeaderTimeout,omitempty"`
	WriteTimeout      Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout       Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
	ShutdownTimeout   Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For
	// header is believed when identifying clients.
	TrustedProxies []string `yaml:"trustedProxies,omitempty" json:"trustedProxies,omitempty"`
}

// NegotiationConfig configures response format selection.
type NegotiationConfig struct {
	// DefaultFormat is used when neither the query parameter nor the
	// Accept header picks a format.
	DefaultFormat string `yaml:"defaultFormat" json:"defaultFormat"`

	// QueryParam names the explicit format query parameter.
	QueryParam string `yaml:"queryParam" json:"queryParam"`

	// QueryOverridesAccept makes the query parameter win over a matching
	// Accept header. Unset means true.
	QueryOverridesAccept *bool `yaml:"queryOverridesAccept,omitempty" json:"queryOverridesAccept,omitempty"`
}

// QueryWins reports whether the query parameter takes precedence.
func (n NegotiationConfig) QueryWins() bool {
	return n.QueryOverridesAccept == nil || *n.QueryOverridesAccept
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	Burst             int  `yaml:"burst" json:"burst"`
	PerClient         bool `yaml:"perClient,omitempty" json:"perClient,omitempty"`
}

// ReadinessConfig configures the readiness probe behind /healthz.
type ReadinessConfig struct {
	Timeout Duration      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Checks  []CheckConfig `yaml:"checks,omitempty" json:"checks,omitempty"`
}

// CheckConfig describes one dependency check.
type CheckConfig struct {
	Name string `yaml:"name" json:"name"`

	// Type is one of http, tcp or redis.
	Type string `yaml:"type" json:"type"`

	// Target is a URL for http checks and host:port otherwise.
	Target string `yaml:"target" json:"target"`

	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Critical checks make the service unready when they fail. Unset
	// means true.
	Critical *bool `yaml:"critical,omitempty" json:"critical,omitempty"`

	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// IsCritical reports whether a failure of the check makes the service
// unready.
func (c CheckConfig) IsCritical() bool {
	return c.Critical == nil || *c.Critical
}

// CircuitBreakerConfig configures a circuit breaker around a check.
type CircuitBreakerConfig struct {
	Enabled     bool     `yaml:"enabled" json:"enabled"`
	MaxFailures int      `yaml:"maxFailures,omitempty" json:"maxFailures,omitempty"`
	OpenTimeout Duration `yaml:"openTimeout,omitempty" json:"openTimeout,omitempty"`
}

// ObservabilityConfig configures logging, metrics and tracing.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	PrometheusPath string `yaml:"prometheusPath" json:"prometheusPath"`
	Namespace      string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Metadata.Name == "" {
		cfg.Metadata.Name = DefaultServiceName
	}

	applyServerDefaults(&cfg.Spec.Server)
	applyNegotiationDefaults(&cfg.Spec.Negotiation)
	applyRateLimitDefaults(&cfg.Spec.RateLimit)
	applyReadinessDefaults(&cfg.Spec.Readiness)
	applyObservabilityDefaults(&cfg.Spec.Observability, cfg.Metadata.Name)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Address == "" {
		s.Address = DefaultAddress
	}
	setDuration(&s.ReadTimeout, DefaultReadTimeout)
	setDuration(&s.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	setDuration(&s.WriteTimeout, DefaultWriteTimeout)
	setDuration(&s.IdleTimeout, DefaultIdleTimeout)
	setDuration(&s.ShutdownTimeout, DefaultShutdownTimeout)
}

func applyNegotiationDefaults(n *NegotiationConfig) {
	if n.DefaultFormat == "" {
		n.DefaultFormat = DefaultFormat
	}
	if n.QueryParam == "" {
		n.QueryParam = DefaultQueryParam
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.RequestsPerSecond == 0 {
		r.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if r.Burst == 0 {
		r.Burst = DefaultBurst
	}
}

func applyReadinessDefaults(r *ReadinessConfig) {
	setDuration(&r.Timeout, DefaultReadinessTimeout)

	for i := range r.Checks {
		check := &r.Checks[i]
		setDuration(&check.Timeout, DefaultCheckTimeout)

		if cb := check.CircuitBreaker; cb != nil {
			if cb.MaxFailures == 0 {
				cb.MaxFailures = DefaultMaxFailures
			}
			setDuration(&cb.OpenTimeout, DefaultOpenTimeout)
		}
	}
}

func applyObservabilityDefaults(o *ObservabilityConfig, serviceName string) {
	if o.Logging.Level == "" {
		o.Logging.Level = DefaultLogLevel
	}
	if o.Logging.Format == "" {
		o.Logging.Format = DefaultLogFormat
	}
	if o.Logging.Output == "" {
		o.Logging.Output = DefaultLogOutput
	}

	if o.Metrics.PrometheusPath == "" {
		o.Metrics.PrometheusPath = DefaultPrometheusPath
	}

	if o.Tracing.SamplingRate == 0 {
		o.Tracing.SamplingRate = DefaultSamplingRate
	}
	if o.Tracing.ServiceName == "" {
		o.Tracing.ServiceName = serviceName
	}
}

func setDuration(d *Duration, def time.Duration) {
	if *d == 0 {
		*d = Duration(def)
	}
}
