package order

import (
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Result holds the order aggregate produced by a command.
type Result struct {
	Order *order.Aggregate
}

// ViewResult holds a single order read model.
type ViewResult struct {
	Order projection.OrderView
}

// ListResult holds a page of order read models, newest first.
type ListResult struct {
	Orders     []projection.OrderView
	TotalCount int
	Offset     int
	Limit      int
}
