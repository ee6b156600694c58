package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/service"
)

// RequestRefundUseCase handles a refund request for a paid order.
type RequestRefundUseCase struct {
	processing *service.OrderProcessingService
}

// NewRequestRefundUseCase creates a new RequestRefundUseCase
func NewRequestRefundUseCase(processing *service.OrderProcessingService) *RequestRefundUseCase {
	return &RequestRefundUseCase{processing: processing}
}

// Execute refunds the order when its courses' refund policies allow it
// and revokes the granted course access.
func (uc *RequestRefundUseCase) Execute(ctx context.Context, cmd RequestRefundCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	ord, err := uc.processing.ProcessRefund(ctx, cmd.OrderID, cmd.Reason)
	if err != nil {
		return Result{}, fmt.Errorf("failed to process refund: %w", err)
	}

	return Result{Order: ord}, nil
}

func (uc *RequestRefundUseCase) validate(cmd RequestRefundCommand) error {
	if err := appcore.ValidateUUID("orderID", cmd.OrderID); err != nil {
		return err
	}
	return appcore.ValidateRequired("reason", cmd.Reason)
}
