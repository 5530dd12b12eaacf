package rules

import (
	"fmt"

	"github.com/platinummonkey/tclib/pkg/linter"
	"github.com/platinummonkey/tclib/pkg/structures"
)

func requirementRef(r *structures.Requirement) structures.Reference {
	return structures.Reference{Category: structures.Requirements, ID: r.ID()}
}

// RequirementDescriptionRule flags requirements without a description
type RequirementDescriptionRule struct {
	BaseRule
}

// NewRequirementDescriptionRule creates a new requirement description rule
func NewRequirementDescriptionRule() *RequirementDescriptionRule {
	return &RequirementDescriptionRule{
		BaseRule: BaseRule{
			RuleName:        "requirement-description",
			RuleCategory:    linter.CategoryDocumentation,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Requirements should carry a description",
		},
	}
}

func (r *RequirementDescriptionRule) Check(snapshot linter.Snapshot, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation
	for _, req := range snapshot.Requirements() {
		if req.Description() == "" {
			violations = append(violations, r.violation(requirementRef(req), req.Path(),
				fmt.Sprintf("Requirement '%s' has no description", req.ID())))
		}
	}
	return violations
}

// RequirementVerifiedRule flags requirements that no test case covers,
// directly or through a derived requirement
type RequirementVerifiedRule struct {
	BaseRule
}

// NewRequirementVerifiedRule creates a new requirement coverage rule
func NewRequirementVerifiedRule() *RequirementVerifiedRule {
	return &RequirementVerifiedRule{
		BaseRule: BaseRule{
			RuleName:        "requirement-verified",
			RuleCategory:    linter.CategoryCoverage,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Every requirement should be verified by at least one test case",
		},
	}
}

func (r *RequirementVerifiedRule) Check(snapshot linter.Snapshot, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation
	for _, req := range snapshot.Requirements() {
		if !ctx.Covered(req.ID()) {
			violations = append(violations, r.violation(requirementRef(req), req.Path(),
				fmt.Sprintf("Requirement '%s' is not verified by any test case", req.ID())))
		}
	}
	return violations
}
