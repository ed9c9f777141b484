// Package observability provides logging, metrics, and tracing for svcinfo.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("request processed",
//	    observability.String("method", "GET"),
//	    observability.Int("status", 200),
//	)
//
// # Metrics
//
// Metrics owns a dedicated Prometheus registry. It backs both the
// Prometheus exposition endpoint and Snapshot, which turns the gathered
// families into the rows served at /metrics:
//
//	metrics := observability.NewMetrics("svcinfo")
//	samples, err := metrics.Snapshot()
//
// # Tracing
//
// OpenTelemetry tracing with optional OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName: "svcinfo",
//	    Enabled:     true,
//	})
//	defer tracer.Shutdown(ctx)
package observability
