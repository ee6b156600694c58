package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// PlaceOrderUseCase handles placing a new order.
type PlaceOrderUseCase struct {
	orders  order.Repository
	users   user.Repository
	courses course.Repository
}

// NewPlaceOrderUseCase creates a new PlaceOrderUseCase
func NewPlaceOrderUseCase(
	orders order.Repository,
	users user.Repository,
	courses course.Repository,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		orders:  orders,
		users:   users,
		courses: courses,
	}
}

// Execute places the order after checking the user, the courses and the
// duplicate pending-order rule.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	total, err := money.NewFromString(cmd.Amount, cmd.Currency)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	if _, err = uc.users.FindByID(ctx, cmd.UserID); err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}
	if err = uc.checkCourses(ctx, cmd); err != nil {
		return Result{}, err
	}

	agg := order.NewAggregate(uuid.NewUUID())
	if err = agg.Place(cmd.UserID, cmd.CourseIDs, total); err != nil {
		return Result{}, fmt.Errorf("failed to place order: %w", err)
	}
	if err = uc.orders.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save order: %w", err)
	}

	return Result{Order: agg}, nil
}

// checkCourses verifies every course exists, is purchasable and is not
// already part of another pending order of the same user.
func (uc *PlaceOrderUseCase) checkCourses(ctx context.Context, cmd PlaceOrderCommand) error {
	for _, courseID := range cmd.CourseIDs {
		crs, err := uc.courses.FindByID(ctx, courseID)
		if err != nil {
			return fmt.Errorf("failed to load course %s: %w", courseID, err)
		}
		if !crs.IsAvailableForPurchase() {
			return fmt.Errorf("%w: %s", ErrCourseNotAvailable, crs.Title())
		}

		_, err = uc.orders.FindPendingByUserCourse(ctx, cmd.UserID, courseID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrDuplicatePendingOrder, crs.Title())
		case !errors.Is(err, appcore.ErrNotFound):
			return fmt.Errorf("failed to check pending orders: %w", err)
		}
	}
	return nil
}

func (uc *PlaceOrderUseCase) validate(cmd PlaceOrderCommand) error {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return err
	}
	if len(cmd.CourseIDs) == 0 {
		return ErrNoCourses
	}
	for _, courseID := range cmd.CourseIDs {
		if err := appcore.ValidateUUID("courseID", courseID); err != nil {
			return err
		}
	}
	if err := appcore.ValidateRequired("amount", cmd.Amount); err != nil {
		return err
	}
	return appcore.ValidateRequired("currency", cmd.Currency)
}
