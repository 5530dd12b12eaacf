package linter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the linting configuration
type Config struct {
	Version  string                `yaml:"version"`
	Rules    map[string]RuleConfig `yaml:"rules"`
	Ignore   []string              `yaml:"ignore"` // document path globs, relative to their root
	Coverage CoverageConfig        `yaml:"coverage"`
}

// RuleConfig overrides a single rule
type RuleConfig struct {
	Enabled  *bool    `yaml:"enabled"`
	Severity Severity `yaml:"severity"`
}

// CoverageConfig configures coverage thresholds
type CoverageConfig struct {
	// MinRequirementCoverage is the percentage of requirements that must be
	// verified by at least one test case. Zero disables the check.
	MinRequirementCoverage float64 `yaml:"min_requirement_coverage"`
}

// DefaultConfig returns default linting configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "v1",
		Rules:   make(map[string]RuleConfig),
		Ignore:  []string{},
	}
}

// Validate checks severities and thresholds
func (c *Config) Validate() error {
	for name, rule := range c.Rules {
		switch rule.Severity {
		case "", SeverityError, SeverityWarning, SeverityInfo:
		default:
			return fmt.Errorf("rule %s: invalid severity %q (must be error, warning, or info)", name, rule.Severity)
		}
	}
	if c.Coverage.MinRequirementCoverage < 0 || c.Coverage.MinRequirementCoverage > 100 {
		return fmt.Errorf("min_requirement_coverage must be between 0 and 100, got %v", c.Coverage.MinRequirementCoverage)
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse lint config %s: %w", path, err)
	}
	if config.Rules == nil {
		config.Rules = make(map[string]RuleConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lint config %s: %w", path, err)
	}

	return config, nil
}

// LoadConfigFromDir searches for config file in directory
func LoadConfigFromDir(dir string) (*Config, error) {
	configNames := []string{"tclib-lint.yaml", "tclib-lint.yml", ".tclib-lint.yaml", ".tclib-lint.yml"}

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	// Return default if no config found
	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
