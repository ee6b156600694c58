package projection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/event"
)

// AccessView is one user-course access row.
type AccessView struct {
	AccessID  string     `json:"access_id"`
	UserID    string     `json:"user_id"`
	CourseID  string     `json:"course_id"`
	Status    string     `json:"status"`
	Progress  int        `json:"progress"`
	Completed bool       `json:"completed"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UserAccessProjection maintains the user -> course -> access view index.
type UserAccessProjection struct {
	mu      sync.RWMutex
	byUser  map[string]map[string]*AccessView
	applied appliedSet
}

var _ Projection = (*UserAccessProjection)(nil)

// NewUserAccessProjection creates an empty user access projection.
func NewUserAccessProjection() *UserAccessProjection {
	return &UserAccessProjection{
		byUser:  make(map[string]map[string]*AccessView),
		applied: newAppliedSet(),
	}
}

// Name identifies the projection.
func (p *UserAccessProjection) Name() string { return "user_access" }

// EventTypes returns the event types this projection consumes.
func (p *UserAccessProjection) EventTypes() []string {
	return []string{
		access.EventTypeAccessGranted,
		access.EventTypeAccessRevoked,
		access.EventTypeAccessExpired,
		access.EventTypeAccessReactivated,
		access.EventTypeProgressUpdated,
		access.EventTypeCourseCompleted,
	}
}

// Apply folds a single access event into the index.
func (p *UserAccessProjection) Apply(_ context.Context, evt event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.applied.mark(evt) {
		return nil
	}

	switch e := evt.(type) {
	case *access.Granted:
		view := &AccessView{
			AccessID:  e.AggregateID(),
			UserID:    e.UserID.String(),
			CourseID:  e.CourseID.String(),
			Status:    string(access.StatusActive),
			ExpiresAt: copyTime(e.ExpiresAt),
		}
		p.put(view)
	case *access.Revoked:
		if view := p.row(e.UserID.String(), e.CourseID.String()); view != nil {
			view.Status = string(access.StatusRevoked)
		}
	case *access.Expired:
		if view := p.row(e.UserID.String(), e.CourseID.String()); view != nil {
			view.Status = string(access.StatusExpired)
		}
	case *access.Reactivated:
		if view := p.row(e.UserID.String(), e.CourseID.String()); view != nil {
			view.Status = string(access.StatusActive)
			view.ExpiresAt = copyTime(e.ExpiresAt)
		}
	case *access.ProgressUpdated:
		if view := p.row(e.UserID.String(), e.CourseID.String()); view != nil {
			view.Progress = e.Progress.Value()
		}
	case *access.CourseCompleted:
		if view := p.row(e.UserID.String(), e.CourseID.String()); view != nil {
			view.Completed = true
		}
	default:
		return fmt.Errorf("user access: unexpected event type %q", evt.EventType())
	}

	return nil
}

func (p *UserAccessProjection) put(view *AccessView) {
	courses, ok := p.byUser[view.UserID]
	if !ok {
		courses = make(map[string]*AccessView)
		p.byUser[view.UserID] = courses
	}
	courses[view.CourseID] = view
}

func (p *UserAccessProjection) row(userID, courseID string) *AccessView {
	if courses, ok := p.byUser[userID]; ok {
		return courses[courseID]
	}
	return nil
}

// Reset returns the projection to its empty state.
func (p *UserAccessProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byUser = make(map[string]map[string]*AccessView)
	p.applied.reset()
}

// Access returns the row for a user-course pair.
func (p *UserAccessProjection) Access(userID, courseID string) (AccessView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	view := p.row(userID, courseID)
	if view == nil {
		return AccessView{}, false
	}

	return copyAccessView(*view), true
}

// UserAccess returns all access rows for a user, ordered by course ID.
func (p *UserAccessProjection) UserAccess(userID string) []AccessView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	courses := p.byUser[userID]
	out := make([]AccessView, 0, len(courses))
	for _, view := range courses {
		out = append(out, copyAccessView(*view))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CourseID < out[j].CourseID
	})

	return out
}

// HasActiveAccess reports whether a user's access to a course is active
// at the given time. Expiry is evaluated against the stored expiry even
// if no AccessExpired event has been published yet.
func (p *UserAccessProjection) HasActiveAccess(userID, courseID string, now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	view := p.row(userID, courseID)
	if view == nil {
		return false
	}
	if view.Status != string(access.StatusActive) {
		return false
	}
	if view.ExpiresAt != nil && now.After(*view.ExpiresAt) {
		return false
	}

	return true
}

func copyAccessView(view AccessView) AccessView {
	view.ExpiresAt = copyTime(view.ExpiresAt)
	return view
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
