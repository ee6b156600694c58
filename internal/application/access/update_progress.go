package access

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
)

// UpdateProgressUseCase handles course progress updates.
type UpdateProgressUseCase struct {
	records access.Repository
}

// NewUpdateProgressUseCase creates a new UpdateProgressUseCase
func NewUpdateProgressUseCase(records access.Repository) *UpdateProgressUseCase {
	return &UpdateProgressUseCase{records: records}
}

// Execute advances the completion percentage. Reaching 100 marks the course
// completed.
func (uc *UpdateProgressUseCase) Execute(ctx context.Context, cmd UpdateProgressCommand) (Result, error) {
	if err := appcore.ValidateUUID("accessID", cmd.AccessID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	progress, err := access.NewProgress(cmd.Progress)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.records.FindByID(ctx, cmd.AccessID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load access record: %w", err)
	}

	if err = agg.UpdateProgress(progress); err != nil {
		return Result{}, fmt.Errorf("failed to update progress: %w", err)
	}
	if err = uc.records.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save access record: %w", err)
	}

	return Result{Record: agg}, nil
}
