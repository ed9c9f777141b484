package health

import (
	"fmt"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// ChecksFromConfig builds the readiness checks described by cfg. Checks
// with an enabled circuit breaker are wrapped in a BreakerHealthCheck.
// On error, checks built so far are closed.
func ChecksFromConfig(cfg *config.ReadinessConfig, logger observability.Logger) ([]HealthCheck, error) {
	if cfg == nil {
		return nil, nil
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	checks := make([]HealthCheck, 0, len(cfg.Checks))
	for i := range cfg.Checks {
		check, err := checkFromConfig(&cfg.Checks[i], logger)
		if err != nil {
			for _, built := range checks {
				closeCheck(built, logger)
			}
			return nil, err
		}
		checks = append(checks, check)
	}

	return checks, nil
}

func checkFromConfig(cc *config.CheckConfig, logger observability.Logger) (HealthCheck, error) {
	timeout := cc.Timeout.Duration()
	opts := []DependencyCheckOption{
		WithCritical(cc.IsCritical()),
		WithCheckTimeout(timeout),
	}

	var check HealthCheck
	switch cc.Type {
	case config.CheckTypeHTTP:
		check = HTTPHealthCheck(cc.Name, cc.Target, timeout, opts...)
	case config.CheckTypeTCP:
		check = TCPHealthCheck(cc.Name, cc.Target, timeout, opts...)
	case config.CheckTypeRedis:
		check = RedisAddressHealthCheck(cc.Name, cc.Target, timeout, opts...)
	default:
		return nil, fmt.Errorf("readiness check %q: unsupported type %q", cc.Name, cc.Type)
	}

	if cb := cc.CircuitBreaker; cb != nil && cb.Enabled {
		check = NewBreakerHealthCheck(check, cb.MaxFailures, cb.OpenTimeout.Duration(),
			WithBreakerLogger(logger),
		)
	}

	logger.Debug("readiness check configured",
		observability.String("check", cc.Name),
		observability.String("type", cc.Type),
		observability.String("target", cc.Target),
		observability.Bool("critical", cc.IsCritical()),
	)

	return check, nil
}
