package projection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
)

// StatusChange is one entry in an order's status timeline.
type StatusChange struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// OrderView is the order-history row for a single order.
type OrderView struct {
	OrderID   string         `json:"order_id"`
	UserID    string         `json:"user_id"`
	CourseIDs []string       `json:"course_ids"`
	Total     money.Money    `json:"total"`
	Status    string         `json:"status"`
	PlacedAt  time.Time      `json:"placed_at"`
	Timeline  []StatusChange `json:"timeline"`
}

// OrderHistoryProjection maintains per-order rows with a full status
// timeline, plus a per-user index for listing a user's orders.
type OrderHistoryProjection struct {
	mu      sync.RWMutex
	orders  map[string]*OrderView
	byUser  map[string][]string
	applied appliedSet
}

var _ Projection = (*OrderHistoryProjection)(nil)

// NewOrderHistoryProjection creates an empty order history projection.
func NewOrderHistoryProjection() *OrderHistoryProjection {
	return &OrderHistoryProjection{
		orders:  make(map[string]*OrderView),
		byUser:  make(map[string][]string),
		applied: newAppliedSet(),
	}
}

// Name identifies the projection.
func (p *OrderHistoryProjection) Name() string { return "order_history" }

// EventTypes returns the event types this projection consumes.
func (p *OrderHistoryProjection) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeOrderRefundRequested,
		order.EventTypeOrderRefunded,
		order.EventTypeOrderCancelled,
		order.EventTypeOrderPaymentFailed,
	}
}

// Apply folds a single order event into the history.
func (p *OrderHistoryProjection) Apply(_ context.Context, evt event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.applied.mark(evt) {
		return nil
	}

	switch e := evt.(type) {
	case *order.Placed:
		view := &OrderView{
			OrderID:   e.AggregateID(),
			UserID:    e.UserID.String(),
			CourseIDs: uuidStrings(e.CourseIDs),
			Total:     e.TotalAmount,
			Status:    string(order.StatusPending),
			PlacedAt:  e.OccurredAt(),
			Timeline:  []StatusChange{{Status: string(order.StatusPending), At: e.OccurredAt()}},
		}
		p.orders[e.AggregateID()] = view
		p.byUser[view.UserID] = append(p.byUser[view.UserID], e.AggregateID())
	case *order.Paid:
		p.transition(e.AggregateID(), string(order.StatusPaid), e.OccurredAt())
	case *order.RefundRequested:
		p.transition(e.AggregateID(), string(order.StatusRefundRequested), e.OccurredAt())
	case *order.Refunded:
		p.transition(e.AggregateID(), string(order.StatusRefunded), e.OccurredAt())
	case *order.Cancelled:
		p.transition(e.AggregateID(), string(order.StatusCancelled), e.OccurredAt())
	case *order.PaymentFailed:
		p.transition(e.AggregateID(), string(order.StatusPaymentFailed), e.OccurredAt())
	default:
		return fmt.Errorf("order history: unexpected event type %q", evt.EventType())
	}

	return nil
}

// transition appends a timeline entry and updates the current status.
// Events for unknown orders are dropped; the row appears on OrderPlaced.
func (p *OrderHistoryProjection) transition(orderID, status string, at time.Time) {
	view, ok := p.orders[orderID]
	if !ok {
		return
	}

	view.Status = status
	view.Timeline = append(view.Timeline, StatusChange{Status: status, At: at})
}

// Reset returns the projection to its empty state.
func (p *OrderHistoryProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.orders = make(map[string]*OrderView)
	p.byUser = make(map[string][]string)
	p.applied.reset()
}

// Order returns the history row for a single order.
func (p *OrderHistoryProjection) Order(orderID string) (OrderView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	view, ok := p.orders[orderID]
	if !ok {
		return OrderView{}, false
	}

	return copyOrderView(*view), true
}

// UserOrders returns a user's orders, oldest first.
func (p *OrderHistoryProjection) UserOrders(userID string) []OrderView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := p.byUser[userID]
	out := make([]OrderView, 0, len(ids))
	for _, id := range ids {
		if view, ok := p.orders[id]; ok {
			out = append(out, copyOrderView(*view))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].OrderID < out[j].OrderID
	})

	return out
}

// Count returns the number of orders tracked.
func (p *OrderHistoryProjection) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.orders)
}

// copyOrderView deep-copies the slices so callers cannot mutate state.
func copyOrderView(view OrderView) OrderView {
	courseIDs := make([]string, len(view.CourseIDs))
	copy(courseIDs, view.CourseIDs)
	view.CourseIDs = courseIDs

	timeline := make([]StatusChange, len(view.Timeline))
	copy(timeline, view.Timeline)
	view.Timeline = timeline

	return view
}
