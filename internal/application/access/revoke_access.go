package access

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
)

// RevokeAccessUseCase handles withdrawing access.
type RevokeAccessUseCase struct {
	records access.Repository
}

// NewRevokeAccessUseCase creates a new RevokeAccessUseCase
func NewRevokeAccessUseCase(records access.Repository) *RevokeAccessUseCase {
	return &RevokeAccessUseCase{records: records}
}

// Execute revokes the access record, recording the reason.
func (uc *RevokeAccessUseCase) Execute(ctx context.Context, cmd RevokeAccessCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.records.FindByID(ctx, cmd.AccessID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load access record: %w", err)
	}

	if err = agg.Revoke(cmd.Reason); err != nil {
		return Result{}, fmt.Errorf("failed to revoke access: %w", err)
	}
	if err = uc.records.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save access record: %w", err)
	}

	return Result{Record: agg}, nil
}

func (uc *RevokeAccessUseCase) validate(cmd RevokeAccessCommand) error {
	if err := appcore.ValidateUUID("accessID", cmd.AccessID); err != nil {
		return err
	}
	return appcore.ValidateRequired("reason", cmd.Reason)
}
