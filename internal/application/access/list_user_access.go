package access

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
)

// ListUserAccessUseCase serves a user's access rows.
type ListUserAccessUseCase struct {
	reader AccessReader
}

// NewListUserAccessUseCase creates a new ListUserAccessUseCase
func NewListUserAccessUseCase(reader AccessReader) *ListUserAccessUseCase {
	return &ListUserAccessUseCase{reader: reader}
}

// Execute returns all access rows of the user, ordered by course ID.
func (uc *ListUserAccessUseCase) Execute(_ context.Context, query ListUserAccessQuery) (ListResult, error) {
	if err := appcore.ValidateUUID("userID", query.UserID); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	views := uc.reader.UserAccess(query.UserID.String())

	return ListResult{
		Records:    views,
		TotalCount: len(views),
	}, nil
}
