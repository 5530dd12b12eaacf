package rules

import "github.com/platinummonkey/tclib/pkg/linter"

// Registry interface for registering rules
type Registry interface {
	Register(rule linter.Rule)
}

// RegisterDefaultRules registers all built-in lint rules
func RegisterDefaultRules(registry Registry) {
	// Documentation rules
	registry.Register(NewRequirementDescriptionRule())
	registry.Register(NewTestCaseAuthorRule())

	// Coverage rules
	registry.Register(NewRequirementVerifiedRule())
	registry.Register(NewTestCaseVerifiesRule())

	// Structure rules
	registry.Register(NewTestCaseStepsRule())
}
