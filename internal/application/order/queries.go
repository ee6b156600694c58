package order

import (
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Query is the base interface for order queries.
type Query interface {
	QueryName() string
}

// GetOrderQuery fetches a single order read model by ID.
type GetOrderQuery struct {
	OrderID uuid.UUID
}

func (q GetOrderQuery) QueryName() string { return "GetOrder" }

// ListUserOrdersQuery fetches a page of a user's orders, newest first.
type ListUserOrdersQuery struct {
	UserID uuid.UUID
	Offset int
	Limit  int
}

func (q ListUserOrdersQuery) QueryName() string { return "ListUserOrders" }

// HistoryReader serves order read models built from the event stream.
// The interface is declared on the consumer side; the order history
// projection satisfies it.
type HistoryReader interface {
	Order(orderID string) (projection.OrderView, bool)
	UserOrders(userID string) []projection.OrderView
}
