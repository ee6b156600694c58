package access

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
)

// ReactivateAccessUseCase handles restoring expired access.
type ReactivateAccessUseCase struct {
	records access.Repository
}

// NewReactivateAccessUseCase creates a new ReactivateAccessUseCase
func NewReactivateAccessUseCase(records access.Repository) *ReactivateAccessUseCase {
	return &ReactivateAccessUseCase{records: records}
}

// Execute reactivates an expired access record with a new expiry. Revoked
// access is restored through repurchase, not through this operation.
func (uc *ReactivateAccessUseCase) Execute(ctx context.Context, cmd ReactivateAccessCommand) (Result, error) {
	if err := appcore.ValidateUUID("accessID", cmd.AccessID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.records.FindByID(ctx, cmd.AccessID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load access record: %w", err)
	}

	if agg.Status() != access.StatusExpired {
		return Result{}, fmt.Errorf("%w: access is %s", ErrNotExpired, agg.Status())
	}

	if err = agg.Reactivate(cmd.ExpiresAt); err != nil {
		return Result{}, fmt.Errorf("failed to reactivate access: %w", err)
	}
	if err = uc.records.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save access record: %w", err)
	}

	return Result{Record: agg}, nil
}
