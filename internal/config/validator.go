package config

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var (
	validFormats    = []string{"html", "json", "table", "csv"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr"}
	validCheckTypes = []string{CheckTypeHTTP, CheckTypeTCP, CheckTypeRedis}
	reservedPaths   = []string{"/", "/version", "/healthz", "/metrics"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates service configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a configuration.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration and returns a ValidationErrors
// holding every problem found.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	if cfg.Metadata.Name == "" {
		v.addError("metadata.name", "name is required")
	}

	v.validateServer(&cfg.Spec.Server)
	v.validateNegotiation(&cfg.Spec.Negotiation)
	v.validateRateLimit(&cfg.Spec.RateLimit)
	v.validateReadiness(&cfg.Spec.Readiness)
	v.validateObservability(&cfg.Spec.Observability)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateServer(s *ServerConfig) {
	const path = "spec.server"

	if s.Address == "" {
		v.addError(path+".address", "address is required")
	} else if _, _, err := net.SplitHostPort(s.Address); err != nil {
		v.addError(path+".address", fmt.Sprintf("address must be host:port: %v", err))
	}

	for i, proxy := range s.TrustedProxies {
		if !validProxy(proxy) {
			v.addError(fmt.Sprintf("%s.trustedProxies[%d]", path, i),
				fmt.Sprintf("%q is neither an IP address nor a CIDR", proxy))
		}
	}

	durations := []struct {
		name string
		d    Duration
	}{
		{"readTimeout", s.ReadTimeout},
		{"readHeaderTimeout", s.ReadHeaderTimeout},
		{"writeTimeout", s.WriteTimeout},
		{"idleTimeout", s.IdleTimeout},
		{"shutdownTimeout", s.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.d < 0 {
			v.addError(path+"."+d.name, "must not be negative")
		}
	}
}

func (v *Validator) validateNegotiation(n *NegotiationConfig) {
	const path = "spec.negotiation"

	if !oneOf(strings.ToLower(n.DefaultFormat), validFormats) {
		v.addError(path+".defaultFormat",
			fmt.Sprintf("unknown format %q, expected one of %s", n.DefaultFormat, strings.Join(validFormats, ", ")))
	}

	if n.QueryParam == "" {
		v.addError(path+".queryParam", "queryParam is required")
	} else if url.QueryEscape(n.QueryParam) != n.QueryParam {
		v.addError(path+".queryParam", "queryParam must not need escaping")
	}
}

func (v *Validator) validateRateLimit(r *RateLimitConfig) {
	const path = "spec.rateLimit"

	if r.RequestsPerSecond < 0 || (r.Enabled && r.RequestsPerSecond == 0) {
		v.addError(path+".requestsPerSecond", "requestsPerSecond must be positive")
	}
	if r.Burst < 0 || (r.Enabled && r.Burst == 0) {
		v.addError(path+".burst", "burst must be positive")
	}
}

func (v *Validator) validateReadiness(r *ReadinessConfig) {
	const path = "spec.readiness"

	if r.Timeout < 0 {
		v.addError(path+".timeout", "must not be negative")
	}

	names := make(map[string]bool, len(r.Checks))
	for i := range r.Checks {
		check := &r.Checks[i]
		checkPath := fmt.Sprintf("%s.checks[%d]", path, i)

		if check.Name == "" {
			v.addError(checkPath+".name", "name is required")
		} else if names[check.Name] {
			v.addError(checkPath+".name", fmt.Sprintf("duplicate check name %q", check.Name))
		}
		names[check.Name] = true

		v.validateCheck(check, checkPath)
	}
}

func (v *Validator) validateCheck(check *CheckConfig, path string) {
	if !oneOf(check.Type, validCheckTypes) {
		v.addError(path+".type",
			fmt.Sprintf("unknown check type %q, expected one of %s", check.Type, strings.Join(validCheckTypes, ", ")))
	}

	switch {
	case check.Target == "":
		v.addError(path+".target", "target is required")
	case check.Type == CheckTypeHTTP:
		u, err := url.Parse(check.Target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.addError(path+".target", "target must be an http or https URL")
		}
	case check.Type == CheckTypeTCP || check.Type == CheckTypeRedis:
		if _, _, err := net.SplitHostPort(check.Target); err != nil {
			v.addError(path+".target", "target must be host:port")
		}
	}

	if check.Timeout < 0 {
		v.addError(path+".timeout", "must not be negative")
	}

	if cb := check.CircuitBreaker; cb != nil && cb.Enabled {
		if cb.MaxFailures < 1 {
			v.addError(path+".circuitBreaker.maxFailures", "maxFailures must be at least 1")
		}
		if cb.OpenTimeout < 0 {
			v.addError(path+".circuitBreaker.openTimeout", "must not be negative")
		}
	}
}

func (v *Validator) validateObservability(o *ObservabilityConfig) {
	const path = "spec.observability"

	if !oneOf(strings.ToLower(o.Logging.Level), validLogLevels) {
		v.addError(path+".logging.level",
			fmt.Sprintf("unknown level %q, expected one of %s", o.Logging.Level, strings.Join(validLogLevels, ", ")))
	}
	if !oneOf(o.Logging.Format, validLogFormats) {
		v.addError(path+".logging.format",
			fmt.Sprintf("unknown format %q, expected one of %s", o.Logging.Format, strings.Join(validLogFormats, ", ")))
	}
	if !oneOf(o.Logging.Output, validLogOutputs) {
		v.addError(path+".logging.output",
			fmt.Sprintf("unknown output %q, expected one of %s", o.Logging.Output, strings.Join(validLogOutputs, ", ")))
	}

	if !strings.HasPrefix(o.Metrics.PrometheusPath, "/") {
		v.addError(path+".metrics.prometheusPath", "path must start with /")
	}
	if oneOf(o.Metrics.PrometheusPath, reservedPaths) {
		v.addError(path+".metrics.prometheusPath",
			fmt.Sprintf("path %s is reserved", o.Metrics.PrometheusPath))
	}

	if o.Tracing.SamplingRate < 0 || o.Tracing.SamplingRate > 1 {
		v.addError(path+".tracing.samplingRate", "samplingRate must be between 0 and 1")
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: message,
	})
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func validProxy(s string) bool {
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
