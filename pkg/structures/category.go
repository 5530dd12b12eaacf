package structures

// Category is a named partition of the record space.
type Category string

const (
	Requirements Category = "requirements"
	TestCases    Category = "testcases"
	// TestPlans is reserved and never has members.
	TestPlans Category = "testplans"
)

// Categories returns every category in reporting order.
func Categories() []Category {
	return []Category{Requirements, TestCases, TestPlans}
}

func (c Category) String() string {
	return string(c)
}

// singular is used in diagnostics ("requirement", "test case").
func (c Category) singular() string {
	switch c {
	case Requirements:
		return "requirement"
	case TestCases:
		return "test case"
	case TestPlans:
		return "test plan"
	default:
		return string(c)
	}
}
