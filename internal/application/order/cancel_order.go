package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/order"
)

// CancelOrderUseCase handles cancelling an unpaid order.
type CancelOrderUseCase struct {
	orders order.Repository
}

// NewCancelOrderUseCase creates a new CancelOrderUseCase
func NewCancelOrderUseCase(orders order.Repository) *CancelOrderUseCase {
	return &CancelOrderUseCase{orders: orders}
}

// Execute cancels the order. Orders that were already paid, refunded or
// cancelled are rejected by the aggregate.
func (uc *CancelOrderUseCase) Execute(ctx context.Context, cmd CancelOrderCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	ord, err := uc.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load order: %w", err)
	}
	if err = ord.Cancel(cmd.Reason); err != nil {
		return Result{}, fmt.Errorf("failed to cancel order: %w", err)
	}
	if err = uc.orders.Save(ctx, ord); err != nil {
		return Result{}, fmt.Errorf("failed to save order: %w", err)
	}

	return Result{Order: ord}, nil
}

func (uc *CancelOrderUseCase) validate(cmd CancelOrderCommand) error {
	return appcore.ValidateUUID("orderID", cmd.OrderID)
}
