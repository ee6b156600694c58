package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
)

// GetOrderUseCase serves a single order read model.
type GetOrderUseCase struct {
	history HistoryReader
}

// NewGetOrderUseCase creates a new GetOrderUseCase
func NewGetOrderUseCase(history HistoryReader) *GetOrderUseCase {
	return &GetOrderUseCase{history: history}
}

// Execute returns the order view for the given ID.
func (uc *GetOrderUseCase) Execute(_ context.Context, query GetOrderQuery) (ViewResult, error) {
	if err := appcore.ValidateUUID("orderID", query.OrderID); err != nil {
		return ViewResult{}, fmt.Errorf("validation failed: %w", err)
	}

	view, ok := uc.history.Order(query.OrderID.String())
	if !ok {
		return ViewResult{}, appcore.NewNotFoundError("order", query.OrderID.String())
	}

	return ViewResult{Order: view}, nil
}
