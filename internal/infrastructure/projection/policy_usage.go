package projection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/policy"
)

// PolicyUsageView reports how many courses reference a refund policy.
type PolicyUsageView struct {
	PolicyID         string `json:"policy_id"`
	Name             string `json:"name"`
	PolicyType       string `json:"policy_type"`
	RefundPeriodDays int    `json:"refund_period_days"`
	Status           string `json:"status"`
	CourseCount      int    `json:"course_count"`
}

// PolicyUsageProjection tracks refund policies and the number of courses
// assigned to each. Course counts survive out-of-order arrival: a course
// event for a policy that has no row yet creates a counting stub that the
// PolicyCreated fold later fills in.
type PolicyUsageProjection struct {
	mu      sync.RWMutex
	rows    map[string]*PolicyUsageView
	applied appliedSet
}

var _ Projection = (*PolicyUsageProjection)(nil)

// NewPolicyUsageProjection creates an empty policy usage projection.
func NewPolicyUsageProjection() *PolicyUsageProjection {
	return &PolicyUsageProjection{
		rows:    make(map[string]*PolicyUsageView),
		applied: newAppliedSet(),
	}
}

// Name identifies the projection.
func (p *PolicyUsageProjection) Name() string { return "policy_usage" }

// EventTypes returns the event types this projection consumes.
func (p *PolicyUsageProjection) EventTypes() []string {
	return []string{
		policy.EventTypePolicyCreated,
		policy.EventTypePolicyUpdated,
		policy.EventTypePolicyDeprecated,
		policy.EventTypePolicyReactivated,
		course.EventTypeCourseCreated,
		course.EventTypeCoursePolicyChanged,
	}
}

// Apply folds a single event into the usage rows.
func (p *PolicyUsageProjection) Apply(_ context.Context, evt event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.applied.mark(evt) {
		return nil
	}

	switch e := evt.(type) {
	case *policy.Created:
		row := p.rowFor(e.AggregateID())
		row.Name = e.Name
		row.PolicyType = string(e.PolicyType)
		row.RefundPeriodDays = e.RefundPeriodDays
		row.Status = string(policy.StatusActive)
	case *policy.Updated:
		row := p.rowFor(e.AggregateID())
		row.Name = e.Name
		row.RefundPeriodDays = e.RefundPeriodDays
	case *policy.Deprecated:
		p.rowFor(e.AggregateID()).Status = string(policy.StatusDeprecated)
	case *policy.Reactivated:
		p.rowFor(e.AggregateID()).Status = string(policy.StatusActive)
	case *course.Created:
		p.rowFor(e.PolicyID.String()).CourseCount++
	case *course.PolicyChanged:
		old := p.rowFor(e.OldPolicyID.String())
		if old.CourseCount > 0 {
			old.CourseCount--
		}
		p.rowFor(e.NewPolicyID.String()).CourseCount++
	default:
		return fmt.Errorf("policy usage: unexpected event type %q", evt.EventType())
	}

	return nil
}

// rowFor returns the row for a policy, creating a stub when missing.
// Callers hold the lock.
func (p *PolicyUsageProjection) rowFor(policyID string) *PolicyUsageView {
	row, ok := p.rows[policyID]
	if !ok {
		row = &PolicyUsageView{PolicyID: policyID}
		p.rows[policyID] = row
	}
	return row
}

// Reset returns the projection to its empty state.
func (p *PolicyUsageProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows = make(map[string]*PolicyUsageView)
	p.applied.reset()
}

// Policy returns the usage row for a single policy.
func (p *PolicyUsageProjection) Policy(policyID string) (PolicyUsageView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	row, ok := p.rows[policyID]
	if !ok {
		return PolicyUsageView{}, false
	}

	return *row, true
}

// Usage returns all policy rows ordered by name.
func (p *PolicyUsageProjection) Usage() []PolicyUsageView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]PolicyUsageView, 0, len(p.rows))
	for _, row := range p.rows {
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PolicyID < out[j].PolicyID
	})

	return out
}
