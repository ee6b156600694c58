package projection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/policy"
)

// CourseView is a catalog row: course fields joined with the refund policy
// the course currently references.
type CourseView struct {
	CourseID         string      `json:"course_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Price            money.Money `json:"price"`
	AccessType       string      `json:"access_type"`
	Status           string      `json:"status"`
	PolicyID         string      `json:"policy_id"`
	PolicyName       string      `json:"policy_name"`
	RefundPeriodDays int         `json:"refund_period_days"`
}

// policyRow is the subset of policy state the catalog join needs.
type policyRow struct {
	name string
	days int
}

// CourseCatalogProjection maintains the public course catalog. Course and
// policy rows are stored separately and joined at query time, so the
// relative order of course and policy events does not matter.
type CourseCatalogProjection struct {
	mu       sync.RWMutex
	courses  map[string]*CourseView
	policies map[string]policyRow
	applied  appliedSet
}

var _ Projection = (*CourseCatalogProjection)(nil)

// NewCourseCatalogProjection creates an empty catalog projection.
func NewCourseCatalogProjection() *CourseCatalogProjection {
	return &CourseCatalogProjection{
		courses:  make(map[string]*CourseView),
		policies: make(map[string]policyRow),
		applied:  newAppliedSet(),
	}
}

// Name identifies the projection.
func (p *CourseCatalogProjection) Name() string { return "course_catalog" }

// EventTypes returns the event types this projection consumes.
func (p *CourseCatalogProjection) EventTypes() []string {
	return []string{
		course.EventTypeCourseCreated,
		course.EventTypeCourseUpdated,
		course.EventTypeCoursePolicyChanged,
		course.EventTypeCourseDeprecated,
		policy.EventTypePolicyCreated,
		policy.EventTypePolicyUpdated,
	}
}

// Apply folds a single event into the catalog.
func (p *CourseCatalogProjection) Apply(_ context.Context, evt event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.applied.mark(evt) {
		return nil
	}

	switch e := evt.(type) {
	case *course.Created:
		p.courses[e.AggregateID()] = &CourseView{
			CourseID:    e.AggregateID(),
			Title:       e.Title,
			Description: e.Description,
			Price:       e.Price,
			AccessType:  string(e.AccessType),
			Status:      string(course.StatusActive),
			PolicyID:    e.PolicyID.String(),
		}
	case *course.Updated:
		if view, ok := p.courses[e.AggregateID()]; ok {
			view.Title = e.Title
			view.Description = e.Description
		}
	case *course.PolicyChanged:
		if view, ok := p.courses[e.AggregateID()]; ok {
			view.PolicyID = e.NewPolicyID.String()
		}
	case *course.Deprecated:
		if view, ok := p.courses[e.AggregateID()]; ok {
			view.Status = string(course.StatusDeprecated)
		}
	case *policy.Created:
		p.policies[e.AggregateID()] = policyRow{name: e.Name, days: e.RefundPeriodDays}
	case *policy.Updated:
		p.policies[e.AggregateID()] = policyRow{name: e.Name, days: e.RefundPeriodDays}
	default:
		return fmt.Errorf("course catalog: unexpected event type %q", evt.EventType())
	}

	return nil
}

// Reset returns the projection to its empty state.
func (p *CourseCatalogProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.courses = make(map[string]*CourseView)
	p.policies = make(map[string]policyRow)
	p.applied.reset()
}

// Course returns the catalog row for a single course.
func (p *CourseCatalogProjection) Course(courseID string) (CourseView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	view, ok := p.courses[courseID]
	if !ok {
		return CourseView{}, false
	}

	return p.join(*view), true
}

// Catalog returns all courses ordered by title.
func (p *CourseCatalogProjection) Catalog() []CourseView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]CourseView, 0, len(p.courses))
	for _, view := range p.courses {
		out = append(out, p.join(*view))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].CourseID < out[j].CourseID
	})

	return out
}

// ActiveCourses returns the catalog restricted to purchasable courses.
func (p *CourseCatalogProjection) ActiveCourses() []CourseView {
	all := p.Catalog()

	out := make([]CourseView, 0, len(all))
	for _, view := range all {
		if view.Status == string(course.StatusActive) {
			out = append(out, view)
		}
	}

	return out
}

// join fills the policy columns of a copied view. Callers hold the lock.
func (p *CourseCatalogProjection) join(view CourseView) CourseView {
	if row, ok := p.policies[view.PolicyID]; ok {
		view.PolicyName = row.name
		view.RefundPeriodDays = row.days
	}
	return view
}
