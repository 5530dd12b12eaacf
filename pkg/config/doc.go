// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Command line flags override the loaded
// values.
//
// # Configuration Structure
//
// Library settings:
//
//	TCLIB_ROOTS="./requirements:./tests"   # os.PathListSeparator separated
//	TCLIB_REQUIREMENT_PATTERN="*.req.yaml"
//	TCLIB_TESTCASE_PATTERN="*.tc.yaml"
//	TCLIB_WORKERS="1"
//	TCLIB_STRICT="false"
//	TCLIB_CACHE_SIZE="1024"
//	TCLIB_CACHE_TTL="10m"
//
// Watch settings:
//
//	TCLIB_WATCH_DEBOUNCE="500ms"
//	TCLIB_WATCH_SCHEDULE="*/15 * * * *"
//
// Observability settings:
//
//	TCLIB_LOG_LEVEL="info"      # debug, info, warn, error
//	TCLIB_LOG_FORMAT="text"     # text, json
//	TCLIB_METRICS_FILE="/var/lib/node_exporter/tclib.prom"
//	TCLIB_OTEL_ENABLED="false"
//	TCLIB_OTEL_ENDPOINT="localhost:4317"
//	TCLIB_OTEL_SERVICE_NAME="tclib"
//	TCLIB_OTEL_INSECURE="true"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	lib, err := library.New(ctx, cfg.Library.Roots,
//		library.WithWorkers(cfg.Library.Workers),
//		library.WithStrictStabilization(cfg.Library.Strict),
//	)
package config
