package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "spec.server.address: address is required",
		(&ValidationError{Path: "spec.server.address", Message: "address is required"}).Error())
	assert.Equal(t, "configuration is nil", (&ValidationError{Message: "configuration is nil"}).Error())
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
	assert.False(t, ValidationErrors{}.HasErrors())

	one := ValidationErrors{{Path: "a", Message: "bad"}}
	assert.Equal(t, "a: bad", one.Error())
	assert.True(t, one.HasErrors())

	two := ValidationErrors{{Path: "a", Message: "bad"}, {Path: "b", Message: "worse"}}
	assert.Equal(t, "2 validation errors:\n  1. a: bad\n  2. b: worse\n", two.Error())
}

func TestValidateConfig_Nil(t *testing.T) {
	t.Parallel()

	err := ValidateConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func validationPaths(t *testing.T, err error) []string {
	t.Helper()

	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)

	paths := make([]string, len(verrs))
	for i := range verrs {
		paths[i] = verrs[i].Path
	}
	return paths
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "missing name",
			mutate: func(c *Config) { c.Metadata.Name = "" },
			want:   []string{"metadata.name"},
		},
		{
			name:   "address without port",
			mutate: func(c *Config) { c.Spec.Server.Address = "localhost" },
			want:   []string{"spec.server.address"},
		},
		{
			name:   "port only address",
			mutate: func(c *Config) { c.Spec.Server.Address = ":8080" },
		},
		{
			name:   "trusted proxies",
			mutate: func(c *Config) { c.Spec.Server.TrustedProxies = []string{"10.0.0.0/8", "::1", "proxy.local"} },
			want:   []string{"spec.server.trustedProxies[2]"},
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Spec.Server.IdleTimeout = Duration(-time.Second) },
			want:   []string{"spec.server.idleTimeout"},
		},
		{
			name:   "unknown default format",
			mutate: func(c *Config) { c.Spec.Negotiation.DefaultFormat = "xml" },
			want:   []string{"spec.negotiation.defaultFormat"},
		},
		{
			name:   "default format is case-insensitive",
			mutate: func(c *Config) { c.Spec.Negotiation.DefaultFormat = "JSON" },
		},
		{
			name:   "query param needs escaping",
			mutate: func(c *Config) { c.Spec.Negotiation.QueryParam = "out put" },
			want:   []string{"spec.negotiation.queryParam"},
		},
		{
			name: "enabled rate limit without rate",
			mutate: func(c *Config) {
				c.Spec.RateLimit = RateLimitConfig{Enabled: true}
			},
			want: []string{"spec.rateLimit.requestsPerSecond", "spec.rateLimit.burst"},
		},
		{
			name: "disabled rate limit may be zero",
			mutate: func(c *Config) {
				c.Spec.RateLimit = RateLimitConfig{}
			},
		},
		{
			name: "unknown log settings",
			mutate: func(c *Config) {
				c.Spec.Observability.Logging = LoggingConfig{Level: "trace", Format: "xml", Output: "file"}
			},
			want: []string{
				"spec.observability.logging.level",
				"spec.observability.logging.format",
				"spec.observability.logging.output",
			},
		},
		{
			name:   "prometheus path without slash",
			mutate: func(c *Config) { c.Spec.Observability.Metrics.PrometheusPath = "prom" },
			want:   []string{"spec.observability.metrics.prometheusPath"},
		},
		{
			name:   "prometheus path shadows an endpoint",
			mutate: func(c *Config) { c.Spec.Observability.Metrics.PrometheusPath = "/metrics" },
			want:   []string{"spec.observability.metrics.prometheusPath"},
		},
		{
			name:   "sampling rate out of range",
			mutate: func(c *Config) { c.Spec.Observability.Tracing.SamplingRate = 1.5 },
			want:   []string{"spec.observability.tracing.samplingRate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			assert.Equal(t, tt.want, validationPaths(t, ValidateConfig(cfg)))
		})
	}
}

func TestValidator_Validate_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		check CheckConfig
		want  []string
	}{
		{
			name:  "valid redis",
			check: CheckConfig{Name: "cache", Type: CheckTypeRedis, Target: "localhost:6379"},
		},
		{
			name:  "valid http",
			check: CheckConfig{Name: "api", Type: CheckTypeHTTP, Target: "https://api.internal/healthz"},
		},
		{
			name:  "valid tcp",
			check: CheckConfig{Name: "db", Type: CheckTypeTCP, Target: "10.0.0.5:5432"},
		},
		{
			name:  "missing name",
			check: CheckConfig{Type: CheckTypeTCP, Target: "db:5432"},
			want:  []string{"spec.readiness.checks[0].name"},
		},
		{
			name:  "unknown type",
			check: CheckConfig{Name: "x", Type: "grpc", Target: "db:5432"},
			want:  []string{"spec.readiness.checks[0].type"},
		},
		{
			name:  "missing target",
			check: CheckConfig{Name: "x", Type: CheckTypeTCP},
			want:  []string{"spec.readiness.checks[0].target"},
		},
		{
			name:  "http target is not a url",
			check: CheckConfig{Name: "x", Type: CheckTypeHTTP, Target: "localhost:8080"},
			want:  []string{"spec.readiness.checks[0].target"},
		},
		{
			name:  "tcp target without port",
			check: CheckConfig{Name: "x", Type: CheckTypeTCP, Target: "db"},
			want:  []string{"spec.readiness.checks[0].target"},
		},
		{
			name: "breaker without failures",
			check: CheckConfig{Name: "x", Type: CheckTypeTCP, Target: "db:5432",
				CircuitBreaker: &CircuitBreakerConfig{Enabled: true}},
			want: []string{"spec.readiness.checks[0].circuitBreaker.maxFailures"},
		},
		{
			name: "disabled breaker is not checked",
			check: CheckConfig{Name: "x", Type: CheckTypeTCP, Target: "db:5432",
				CircuitBreaker: &CircuitBreakerConfig{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Spec.Readiness.Checks = []CheckConfig{tt.check}

			assert.Equal(t, tt.want, validationPaths(t, ValidateConfig(cfg)))
		})
	}
}

func TestValidator_Validate_DuplicateCheckNames(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Spec.Readiness.Checks = []CheckConfig{
		{Name: "db", Type: CheckTypeTCP, Target: "db:5432"},
		{Name: "db", Type: CheckTypeTCP, Target: "db:5433"},
	}

	assert.Equal(t, []string{"spec.readiness.checks[1].name"}, validationPaths(t, ValidateConfig(cfg)))
}
