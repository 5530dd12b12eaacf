// Package linter checks a loaded snapshot for documentation and coverage
// problems.
//
// # Overview
//
// Rules inspect requirements and test cases after loading and stabilization,
// so inherited attributes are taken into account: a test case that inherits
// its steps from a parent test case is not reported for missing steps.
//
// # Rule Categories
//
// Documentation: descriptions and authorship
// Coverage: requirements no test case verifies, test cases verifying nothing
// Structure: test cases without steps
//
// # Configuration
//
// Rules can be disabled or re-graded in tclib-lint.yaml next to the
// documents:
//
//	version: v1
//	rules:
//	  testcase-author:
//	    enabled: false
//	  requirement-verified:
//	    severity: error
//	ignore:
//	  - drafts/**
//	coverage:
//	  min_requirement_coverage: 80
//
// # Usage Example
//
//	engine := linter.NewLintEngine(cfg)
//	rules.RegisterDefaultRules(engine.Registry())
//
//	result := engine.Lint(lib)
//	summary := engine.GenerateSummary(result)
//	fmt.Printf("Violations: %d errors, %d warnings\n", summary.Errors, summary.Warnings)
package linter
