package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// Config holds all application configuration
type Config struct {
	// Library loading configuration
	Library LibraryConfig

	// Watch mode configuration
	Watch WatchConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// LibraryConfig controls how snapshots are loaded
type LibraryConfig struct {
	Roots              []string
	RequirementPattern string
	TestCasePattern    string
	Workers            int
	Strict             bool

	// Decoded document cache
	CacheSize int
	CacheTTL  time.Duration
}

// WatchConfig controls the watch command
type WatchConfig struct {
	Debounce time.Duration
	// Schedule is an optional cron expression for periodic reloads
	Schedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  observability.LogLevel
	LogFormat observability.LogFormat

	// Metrics are written in the Prometheus text format when set
	MetricsFile string

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	obs, err := loadObservabilityConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Library:       loadLibraryConfig(),
		Watch:         loadWatchConfig(),
		Observability: obs,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadLibraryConfig loads library configuration from environment
func loadLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Roots:              getEnvList("TCLIB_ROOTS", []string{"."}),
		RequirementPattern: getEnv("TCLIB_REQUIREMENT_PATTERN", "*.req.yaml"),
		TestCasePattern:    getEnv("TCLIB_TESTCASE_PATTERN", "*.tc.yaml"),
		Workers:            getEnvInt("TCLIB_WORKERS", 1),
		Strict:             getEnvBool("TCLIB_STRICT", false),
		CacheSize:          getEnvInt("TCLIB_CACHE_SIZE", structures.DefaultCacheSize),
		CacheTTL:           getEnvDuration("TCLIB_CACHE_TTL", structures.DefaultCacheTTL),
	}
}

// loadWatchConfig loads watch configuration from environment
func loadWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce: getEnvDuration("TCLIB_WATCH_DEBOUNCE", 500*time.Millisecond),
		Schedule: getEnv("TCLIB_WATCH_SCHEDULE", ""),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() (ObservabilityConfig, error) {
	level, err := observability.ParseLogLevel(getEnv("TCLIB_LOG_LEVEL", "info"))
	if err != nil {
		return ObservabilityConfig{}, fmt.Errorf("invalid TCLIB_LOG_LEVEL: %w", err)
	}
	format, err := observability.ParseLogFormat(getEnv("TCLIB_LOG_FORMAT", "text"))
	if err != nil {
		return ObservabilityConfig{}, fmt.Errorf("invalid TCLIB_LOG_FORMAT: %w", err)
	}

	return ObservabilityConfig{
		LogLevel:           level,
		LogFormat:          format,
		MetricsFile:        getEnv("TCLIB_METRICS_FILE", ""),
		OTelEnabled:        getEnvBool("TCLIB_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("TCLIB_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("TCLIB_OTEL_SERVICE_NAME", "tclib"),
		OTelServiceVersion: getEnv("TCLIB_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("TCLIB_OTEL_INSECURE", true),
	}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate library config
	if len(c.Library.Roots) == 0 {
		return fmt.Errorf("at least one document root is required")
	}
	patterns := []struct{ name, pattern string }{
		{"requirement", c.Library.RequirementPattern},
		{"test case", c.Library.TestCasePattern},
	}
	for _, p := range patterns {
		name, pattern := p.name, p.pattern
		if pattern == "" {
			return fmt.Errorf("%s pattern is required", name)
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid %s pattern %q: %w", name, pattern, err)
		}
	}
	if c.Library.RequirementPattern == c.Library.TestCasePattern {
		return fmt.Errorf("requirement and test case patterns must be different")
	}
	if c.Library.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Library.Workers)
	}
	if c.Library.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.Library.CacheSize)
	}

	// Validate watch config
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid watch schedule %q: %w", c.Watch.Schedule, err)
		}
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// TracingConfig returns the tracing settings for observability.InitTracing
func (c *Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a path-list environment variable or returns a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range filepath.SplitList(value) {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
