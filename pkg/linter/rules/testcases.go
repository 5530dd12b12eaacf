package rules

import (
	"fmt"

	"github.com/platinummonkey/tclib/pkg/linter"
	"github.com/platinummonkey/tclib/pkg/structures"
)

func testCaseRef(t *structures.TestCase) structures.Reference {
	return structures.Reference{Category: structures.TestCases, ID: t.ID()}
}

// TestCaseStepsRule flags test cases that have no steps after inheritance
type TestCaseStepsRule struct {
	BaseRule
}

// NewTestCaseStepsRule creates a new test case steps rule
func NewTestCaseStepsRule() *TestCaseStepsRule {
	return &TestCaseStepsRule{
		BaseRule: BaseRule{
			RuleName:        "testcase-steps",
			RuleCategory:    linter.CategoryStructure,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Test cases must define or inherit at least one step",
		},
	}
}

func (r *TestCaseStepsRule) Check(snapshot linter.Snapshot, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation
	for _, tc := range snapshot.TestCases() {
		if len(tc.Instructions().Steps) == 0 {
			violations = append(violations, r.violation(testCaseRef(tc), tc.Path(),
				fmt.Sprintf("Test case '%s' has no steps", tc.ID())))
		}
	}
	return violations
}

// TestCaseVerifiesRule flags test cases that verify no requirement
type TestCaseVerifiesRule struct {
	BaseRule
}

// NewTestCaseVerifiesRule creates a new test case verifies rule
func NewTestCaseVerifiesRule() *TestCaseVerifiesRule {
	return &TestCaseVerifiesRule{
		BaseRule: BaseRule{
			RuleName:        "testcase-verifies",
			RuleCategory:    linter.CategoryCoverage,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Test cases should verify at least one requirement",
		},
	}
}

func (r *TestCaseVerifiesRule) Check(snapshot linter.Snapshot, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation
	for _, tc := range snapshot.TestCases() {
		if len(tc.Verifies()) == 0 {
			violations = append(violations, r.violation(testCaseRef(tc), tc.Path(),
				fmt.Sprintf("Test case '%s' does not verify any requirement", tc.ID())))
		}
	}
	return violations
}

// TestCaseAuthorRule notes test cases with no author, own or inherited
type TestCaseAuthorRule struct {
	BaseRule
}

// NewTestCaseAuthorRule creates a new test case author rule
func NewTestCaseAuthorRule() *TestCaseAuthorRule {
	return &TestCaseAuthorRule{
		BaseRule: BaseRule{
			RuleName:        "testcase-author",
			RuleCategory:    linter.CategoryDocumentation,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Test cases should name an author",
		},
	}
}

func (r *TestCaseAuthorRule) Check(snapshot linter.Snapshot, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation
	for _, tc := range snapshot.TestCases() {
		if tc.Author() == "" {
			violations = append(violations, r.violation(testCaseRef(tc), tc.Path(),
				fmt.Sprintf("Test case '%s' has no author", tc.ID())))
		}
	}
	return violations
}
