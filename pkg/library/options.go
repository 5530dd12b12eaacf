package library

import (
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

const (
	// DefaultRequirementPattern matches requirement documents
	DefaultRequirementPattern = "*.req.yaml"
	// DefaultTestCasePattern matches test case documents
	DefaultTestCasePattern = "*.tc.yaml"
)

type options struct {
	log                *logrus.Logger
	metrics            *observability.Metrics
	workers            int
	requirementPattern string
	testCasePattern    string
	cache              *structures.DocumentCache
	strict             bool
}

func defaultOptions() options {
	return options{
		log:                logrus.New(),
		workers:            1,
		requirementPattern: DefaultRequirementPattern,
		testCasePattern:    DefaultTestCasePattern,
	}
}

// Option configures how a Library is loaded
type Option func(*options)

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records load metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithWorkers parses documents of one pass concurrently
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPatterns overrides the document name patterns. Empty values keep the
// defaults.
func WithPatterns(requirement, testCase string) Option {
	return func(o *options) {
		if requirement != "" {
			o.requirementPattern = requirement
		}
		if testCase != "" {
			o.testCasePattern = testCase
		}
	}
}

// WithDocumentCache shares a decoded document cache between loads
func WithDocumentCache(c *structures.DocumentCache) Option {
	return func(o *options) { o.cache = c }
}

// WithStrictStabilization fails the load with *UnstableError when records do
// not stabilize
func WithStrictStabilization(strict bool) Option {
	return func(o *options) { o.strict = strict }
}
