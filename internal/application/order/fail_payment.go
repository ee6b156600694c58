package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/order"
)

// FailPaymentUseCase records a failed payment attempt.
type FailPaymentUseCase struct {
	orders order.Repository
}

// NewFailPaymentUseCase creates a new FailPaymentUseCase
func NewFailPaymentUseCase(orders order.Repository) *FailPaymentUseCase {
	return &FailPaymentUseCase{orders: orders}
}

// Execute moves a pending order to the payment-failed state.
func (uc *FailPaymentUseCase) Execute(ctx context.Context, cmd FailPaymentCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	ord, err := uc.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load order: %w", err)
	}
	if err = ord.MarkPaymentFailed(cmd.Reason); err != nil {
		return Result{}, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if err = uc.orders.Save(ctx, ord); err != nil {
		return Result{}, fmt.Errorf("failed to save order: %w", err)
	}

	return Result{Order: ord}, nil
}

func (uc *FailPaymentUseCase) validate(cmd FailPaymentCommand) error {
	if err := appcore.ValidateUUID("orderID", cmd.OrderID); err != nil {
		return err
	}
	return appcore.ValidateRequired("reason", cmd.Reason)
}
