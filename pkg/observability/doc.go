// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure for tclib: logrus
// loggers, loader and differ metrics, and the optional OTLP trace exporter.
//
// # Structured Logging
//
// Create logger:
//
//	log := observability.NewLogger(observability.InfoLevel, observability.TextFormat, os.Stderr)
//	log.WithField("category", "requirements").Info("Loaded documents")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordLoad("requirements", 42, 3)
//
// Metrics can be written for the node_exporter textfile collector:
//
//	err := metrics.WriteToTextfile("/var/lib/node_exporter/tclib.prom")
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "tclib",
//	}, log)
//	defer observability.ShutdownTracing(ctx, tp, log)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/library: Emits load metrics and spans
package observability
