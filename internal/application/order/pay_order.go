package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/service"
)

// PayOrderUseCase handles a successful payment notification.
type PayOrderUseCase struct {
	processing *service.OrderProcessingService
}

// NewPayOrderUseCase creates a new PayOrderUseCase
func NewPayOrderUseCase(processing *service.OrderProcessingService) *PayOrderUseCase {
	return &PayOrderUseCase{processing: processing}
}

// Execute marks the order paid and grants access to its courses.
func (uc *PayOrderUseCase) Execute(ctx context.Context, cmd PayOrderCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	ord, err := uc.processing.ProcessPayment(ctx, cmd.OrderID, cmd.PaymentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to process payment: %w", err)
	}

	return Result{Order: ord}, nil
}

func (uc *PayOrderUseCase) validate(cmd PayOrderCommand) error {
	if err := appcore.ValidateUUID("orderID", cmd.OrderID); err != nil {
		return err
	}
	return appcore.ValidateRequired("paymentID", cmd.PaymentID)
}
