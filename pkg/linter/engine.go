package linter

import (
	"fmt"
	"sort"

	"github.com/mattn/go-zglob"

	"github.com/platinummonkey/tclib/pkg/structures"
)

// Snapshot is the part of a loaded library the rules inspect
type Snapshot interface {
	Requirements() []*structures.Requirement
	TestCases() []*structures.TestCase
}

// CoverageRuleName names the violation raised for a coverage threshold
const CoverageRuleName = "requirement-coverage"

// LintEngine orchestrates the linting process
type LintEngine struct {
	config   *Config
	registry *RuleRegistry
}

// NewLintEngine creates a new lint engine
func NewLintEngine(config *Config) *LintEngine {
	if config == nil {
		config = DefaultConfig()
	}

	return &LintEngine{
		config:   config,
		registry: NewRuleRegistry(),
	}
}

// Registry returns the engine's rule registry
func (e *LintEngine) Registry() *RuleRegistry {
	return e.registry
}

// Lint runs all enabled rules against a snapshot
func (e *LintEngine) Lint(snapshot Snapshot) LintResult {
	ctx := newLintContext(e.config, snapshot)
	result := LintResult{
		Violations: make([]Violation, 0),
		Metrics:    ctx.metrics(snapshot),
	}

	for _, rule := range e.registry.GetEnabledRules(e.config) {
		for _, v := range rule.Check(snapshot, ctx) {
			if e.ignored(v.Document) {
				continue
			}
			if rc, ok := e.config.Rules[v.Rule]; ok && rc.Severity != "" {
				v.Severity = rc.Severity
			}
			result.Violations = append(result.Violations, v)
		}
	}

	if threshold := e.config.Coverage.MinRequirementCoverage; threshold > 0 && result.Metrics.RequirementCoverage < threshold {
		result.Violations = append(result.Violations, Violation{
			Rule:     CoverageRuleName,
			Severity: SeverityError,
			Category: CategoryCoverage,
			Message: fmt.Sprintf("Requirement coverage %.1f%% is below the minimum of %.1f%%",
				result.Metrics.RequirementCoverage, threshold),
		})
	}

	sort.SliceStable(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Document != b.Document {
			return a.Document < b.Document
		}
		if a.Record.Key() != b.Record.Key() {
			return a.Record.Key() < b.Record.Key()
		}
		return a.Rule < b.Rule
	})

	return result
}

func (e *LintEngine) ignored(document string) bool {
	if document == "" {
		return false
	}
	for _, pattern := range e.config.Ignore {
		if ok, err := zglob.Match(pattern, document); err == nil && ok {
			return true
		}
	}
	return false
}

// GenerateSummary creates a summary of a lint result
func (e *LintEngine) GenerateSummary(result LintResult) Summary {
	summary := Summary{
		TotalRecords:    result.Metrics.Requirements + result.Metrics.TestCases,
		TotalViolations: len(result.Violations),
	}

	for _, v := range result.Violations {
		switch v.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		case SeverityInfo:
			summary.Infos++
		}
	}

	return summary
}

// LintResult contains the result of linting a snapshot
type LintResult struct {
	Violations []Violation `json:"violations"`
	Metrics    Metrics     `json:"metrics"`
}

// HasSeverity reports whether any violation is at least as severe as floor
func (r LintResult) HasSeverity(floor Severity) bool {
	for _, v := range r.Violations {
		if v.Severity.rank() >= floor.rank() {
			return true
		}
	}
	return false
}

// Violation represents a linting violation
type Violation struct {
	Rule     string               `json:"rule"`
	Severity Severity             `json:"severity"`
	Category Category             `json:"category"`
	Message  string               `json:"message"`
	Record   structures.Reference `json:"record"`
	Document string               `json:"document,omitempty"`
}

// Severity indicates how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Category groups related rules
type Category string

const (
	CategoryDocumentation Category = "documentation"
	CategoryCoverage      Category = "coverage"
	CategoryStructure     Category = "structure"
)

// Metrics contains quality metrics for a snapshot
type Metrics struct {
	Requirements         int     `json:"requirements"`
	CoveredRequirements  int     `json:"covered_requirements"`
	RequirementCoverage  float64 `json:"requirement_coverage"`
	TestCases            int     `json:"testcases"`
	DocumentedTestCases  int     `json:"documented_testcases"`
	DocumentationPercent float64 `json:"documentation_percent"`
}

// Summary provides an overview of a lint result
type Summary struct {
	TotalRecords    int `json:"total_records"`
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
}

// LintContext provides context during rule checking
type LintContext struct {
	Config *Config

	verifiedBy map[string][]string
	children   map[string][]string
	covered    map[string]bool
}

func newLintContext(config *Config, snapshot Snapshot) *LintContext {
	ctx := &LintContext{
		Config:     config,
		verifiedBy: make(map[string][]string),
		children:   make(map[string][]string),
		covered:    make(map[string]bool),
	}
	for _, tc := range snapshot.TestCases() {
		for _, id := range tc.Verifies() {
			ctx.verifiedBy[id] = append(ctx.verifiedBy[id], tc.ID())
		}
	}
	for _, req := range snapshot.Requirements() {
		if parent := req.ParentID(); parent != "" {
			ctx.children[parent] = append(ctx.children[parent], req.ID())
		}
	}
	return ctx
}

// VerifiedBy returns the test cases that verify a requirement directly
func (c *LintContext) VerifiedBy(requirement string) []string {
	return c.verifiedBy[requirement]
}

// Covered reports whether a requirement or any requirement derived from it
// is verified by a test case
func (c *LintContext) Covered(requirement string) bool {
	if covered, ok := c.covered[requirement]; ok {
		return covered
	}
	c.covered[requirement] = false
	covered := len(c.verifiedBy[requirement]) > 0
	for _, child := range c.children[requirement] {
		if c.Covered(child) {
			covered = true
		}
	}
	c.covered[requirement] = covered
	return covered
}

func (c *LintContext) metrics(snapshot Snapshot) Metrics {
	m := Metrics{RequirementCoverage: 100, DocumentationPercent: 100}

	reqs := snapshot.Requirements()
	m.Requirements = len(reqs)
	for _, req := range reqs {
		if c.Covered(req.ID()) {
			m.CoveredRequirements++
		}
	}
	if m.Requirements > 0 {
		m.RequirementCoverage = 100 * float64(m.CoveredRequirements) / float64(m.Requirements)
	}

	tcs := snapshot.TestCases()
	m.TestCases = len(tcs)
	for _, tc := range tcs {
		if tc.Description() != "" {
			m.DocumentedTestCases++
		}
	}
	if m.TestCases > 0 {
		m.DocumentationPercent = 100 * float64(m.DocumentedTestCases) / float64(m.TestCases)
	}

	return m
}
