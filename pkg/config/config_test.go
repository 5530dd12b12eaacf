package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/platinummonkey/tclib/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TCLIB_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TCLIB_TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true string", "true", false, true},
		{"TRUE uppercase", "TRUE", false, true},
		{"one", "1", false, true},
		{"false string", "false", true, false},
		{"anything else", "yes", true, false},
		{"unset uses default", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TCLIB_TEST_BOOL", tt.envValue)

			got := getEnvBool("TCLIB_TEST_BOOL", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvIntAndDuration tests numeric helpers fall back on bad input
func TestGetEnvIntAndDuration(t *testing.T) {
	t.Setenv("TCLIB_TEST_INT", "12")
	if got := getEnvInt("TCLIB_TEST_INT", 1); got != 12 {
		t.Errorf("getEnvInt() = %v, want 12", got)
	}
	t.Setenv("TCLIB_TEST_INT", "twelve")
	if got := getEnvInt("TCLIB_TEST_INT", 1); got != 1 {
		t.Errorf("getEnvInt() = %v, want 1", got)
	}

	t.Setenv("TCLIB_TEST_DURATION", "2s")
	if got := getEnvDuration("TCLIB_TEST_DURATION", time.Second); got != 2*time.Second {
		t.Errorf("getEnvDuration() = %v, want 2s", got)
	}
	t.Setenv("TCLIB_TEST_DURATION", "soon")
	if got := getEnvDuration("TCLIB_TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want 1s", got)
	}
}

// TestGetEnvList tests path-list splitting
func TestGetEnvList(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("TCLIB_TEST_LIST", "a"+sep+" b "+sep+sep+"c")

	got := getEnvList("TCLIB_TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("getEnvList() = %v, want %v", got, want)
	}

	if got := getEnvList("TCLIB_TEST_LIST_UNSET", []string{"."}); !reflect.DeepEqual(got, []string{"."}) {
		t.Errorf("getEnvList() default = %v", got)
	}
}

// TestLoadConfigDefaults tests the defaults without any TCLIB_ variables
func TestLoadConfigDefaults(t *testing.T) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "TCLIB_") {
			key := strings.SplitN(env, "=", 2)[0]
			t.Setenv(key, "")
		}
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Library.Roots, []string{"."}) {
		t.Errorf("Roots = %v, want [.]", cfg.Library.Roots)
	}
	if cfg.Library.RequirementPattern != "*.req.yaml" {
		t.Errorf("RequirementPattern = %v", cfg.Library.RequirementPattern)
	}
	if cfg.Library.TestCasePattern != "*.tc.yaml" {
		t.Errorf("TestCasePattern = %v", cfg.Library.TestCasePattern)
	}
	if cfg.Library.Workers != 1 {
		t.Errorf("Workers = %v, want 1", cfg.Library.Workers)
	}
	if cfg.Library.Strict {
		t.Error("Strict should default to false")
	}
	if cfg.Library.CacheSize != 1024 || cfg.Library.CacheTTL != 10*time.Minute {
		t.Errorf("cache = %d/%v, want 1024/10m", cfg.Library.CacheSize, cfg.Library.CacheTTL)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("LogLevel = %v, want info", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != observability.TextFormat {
		t.Errorf("LogFormat = %v, want text", cfg.Observability.LogFormat)
	}
	if cfg.Observability.OTelEnabled {
		t.Error("OTel should be disabled by default")
	}
}

// TestLoadConfigFromEnv tests overriding every section
func TestLoadConfigFromEnv(t *testing.T) {
	roots := []string{filepath.Join("a", "reqs"), filepath.Join("b", "tests")}
	t.Setenv("TCLIB_ROOTS", strings.Join(roots, string(os.PathListSeparator)))
	t.Setenv("TCLIB_WORKERS", "8")
	t.Setenv("TCLIB_STRICT", "true")
	t.Setenv("TCLIB_LOG_LEVEL", "debug")
	t.Setenv("TCLIB_LOG_FORMAT", "json")
	t.Setenv("TCLIB_WATCH_SCHEDULE", "*/5 * * * *")
	t.Setenv("TCLIB_OTEL_ENABLED", "1")
	t.Setenv("TCLIB_OTEL_ENDPOINT", "collector:4317")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Library.Roots, roots) {
		t.Errorf("Roots = %v, want %v", cfg.Library.Roots, roots)
	}
	if cfg.Library.Workers != 8 || !cfg.Library.Strict {
		t.Errorf("Workers/Strict = %d/%v", cfg.Library.Workers, cfg.Library.Strict)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel || cfg.Observability.LogFormat != observability.JSONFormat {
		t.Errorf("logging = %v/%v", cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	}
	if cfg.Watch.Schedule != "*/5 * * * *" {
		t.Errorf("Schedule = %v", cfg.Watch.Schedule)
	}

	tracing := cfg.TracingConfig()
	if !tracing.Enabled || tracing.Endpoint != "collector:4317" || tracing.ServiceName != "tclib" {
		t.Errorf("TracingConfig() = %+v", tracing)
	}
}

// TestLoadConfigInvalidLogLevel tests that a bad log level is rejected
func TestLoadConfigInvalidLogLevel(t *testing.T) {
	t.Setenv("TCLIB_LOG_LEVEL", "loud")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for invalid log level")
	}
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Library: LibraryConfig{
				Roots:              []string{"."},
				RequirementPattern: "*.req.yaml",
				TestCasePattern:    "*.tc.yaml",
				Workers:            1,
				CacheSize:          10,
			},
			Watch: WatchConfig{Debounce: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no roots", func(c *Config) { c.Library.Roots = nil }, "document root"},
		{"empty pattern", func(c *Config) { c.Library.TestCasePattern = "" }, "test case pattern is required"},
		{"bad pattern", func(c *Config) { c.Library.RequirementPattern = "[" }, "invalid requirement pattern"},
		{"same patterns", func(c *Config) { c.Library.TestCasePattern = "*.req.yaml" }, "must be different"},
		{"zero workers", func(c *Config) { c.Library.Workers = 0 }, "workers must be at least 1"},
		{"negative cache", func(c *Config) { c.Library.CacheSize = -1 }, "cache size"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "debounce"},
		{"bad schedule", func(c *Config) { c.Watch.Schedule = "every day" }, "invalid watch schedule"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "tclib"
		}, "endpoint is required"},
		{"otel without service", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = "localhost:4317"
		}, "service name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
