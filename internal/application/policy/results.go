package policy

import (
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Result holds the policy aggregate produced by a command.
type Result struct {
	Policy *policy.Aggregate
}

// UsageResult holds the policy usage listing, ordered by name.
type UsageResult struct {
	Policies   []projection.PolicyUsageView
	TotalCount int
}
