package order

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
)

const (
	// MaxListLimit is the maximum page size for order listings.
	MaxListLimit = 100
)

// ListUserOrdersUseCase serves a user's order history, newest first.
type ListUserOrdersUseCase struct {
	history HistoryReader
}

// NewListUserOrdersUseCase creates a new ListUserOrdersUseCase
func NewListUserOrdersUseCase(history HistoryReader) *ListUserOrdersUseCase {
	return &ListUserOrdersUseCase{history: history}
}

// Execute returns a page of the user's orders.
func (uc *ListUserOrdersUseCase) Execute(_ context.Context, query ListUserOrdersQuery) (ListResult, error) {
	if err := uc.validate(query); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	views := uc.history.UserOrders(query.UserID.String())
	total := len(views)

	start := query.Offset
	if start > total {
		start = total
	}
	end := min(start+query.Limit, total)

	return ListResult{
		Orders:     views[start:end],
		TotalCount: total,
		Offset:     query.Offset,
		Limit:      query.Limit,
	}, nil
}

func (uc *ListUserOrdersUseCase) validate(query ListUserOrdersQuery) error {
	if err := appcore.ValidateUUID("userID", query.UserID); err != nil {
		return err
	}
	if err := appcore.ValidateNonNegative("offset", query.Offset); err != nil {
		return err
	}
	return appcore.ValidateRange("limit", query.Limit, 1, MaxListLimit)
}
