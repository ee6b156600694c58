package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// DefaultAccessTerm is how long access to a time-limited course lasts after
// payment when no term is configured.
const DefaultAccessTerm = 365 * 24 * time.Hour

// OrderRepository loads and saves orders. The interface is declared on the
// consumer side.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Aggregate, error)
	Save(ctx context.Context, agg *order.Aggregate) error
}

// AccessRepository loads and saves access records. The interface is declared
// on the consumer side.
type AccessRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*access.Aggregate, error)
	Save(ctx context.Context, agg *access.Aggregate) error
}

// OrderProcessingService carries an order through payment and refund,
// keeping the course access records of the buyer in step with the order.
type OrderProcessingService struct {
	orders      OrderRepository
	courses     CourseFinder
	records     AccessRepository
	eligibility *RefundEligibilityService
	accessTerm  time.Duration
	logger      *slog.Logger
}

// OrderProcessingOption configures OrderProcessingService.
type OrderProcessingOption func(*OrderProcessingService)

// WithOrderProcessingLogger sets the logger.
func WithOrderProcessingLogger(logger *slog.Logger) OrderProcessingOption {
	return func(s *OrderProcessingService) {
		s.logger = logger
	}
}

// WithAccessTerm sets how long access to time-limited courses lasts.
func WithAccessTerm(term time.Duration) OrderProcessingOption {
	return func(s *OrderProcessingService) {
		if term > 0 {
			s.accessTerm = term
		}
	}
}

// NewOrderProcessingService creates an OrderProcessingService.
func NewOrderProcessingService(
	orders OrderRepository,
	courses CourseFinder,
	records AccessRepository,
	eligibility *RefundEligibilityService,
	opts ...OrderProcessingOption,
) *OrderProcessingService {
	s := &OrderProcessingService{
		orders:      orders,
		courses:     courses,
		records:     records,
		eligibility: eligibility,
		accessTerm:  DefaultAccessTerm,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ProcessPayment marks the order paid and grants the buyer access to every
// course in it. Existing active access is left alone; expired or revoked
// access is reactivated. A failed grant does not undo the payment; failures
// are reported joined after all courses were attempted.
func (s *OrderProcessingService) ProcessPayment(
	ctx context.Context,
	orderID uuid.UUID,
	paymentID string,
) (*order.Aggregate, error) {
	ord, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err = ord.MarkPaid(paymentID); err != nil {
		return nil, appcore.NewDomainError("order payment", err)
	}
	if err = s.orders.Save(ctx, ord); err != nil {
		return nil, err
	}

	paidAt := ord.PlacedAt()
	if ord.PaidAt() != nil {
		paidAt = *ord.PaidAt()
	}

	var grantErrs []error
	for _, courseID := range ord.CourseIDs() {
		if grantErr := s.grantCourseAccess(ctx, ord.UserID(), courseID, paidAt); grantErr != nil {
			s.logger.ErrorContext(ctx, "failed to grant course access after payment",
				slog.String("order_id", orderID.String()),
				slog.String("course_id", courseID.String()),
				slog.String("error", grantErr.Error()),
			)
			grantErrs = append(grantErrs, fmt.Errorf("grant access to course %s: %w", courseID, grantErr))
		}
	}

	s.logger.InfoContext(ctx, "order payment processed",
		slog.String("order_id", orderID.String()),
		slog.String("payment_id", paymentID),
		slog.Int("courses", len(ord.CourseIDs())),
	)

	return ord, errors.Join(grantErrs...)
}

// ProcessRefund refunds a paid order after checking eligibility and revokes
// the buyer's access to the order's courses.
func (s *OrderProcessingService) ProcessRefund(
	ctx context.Context,
	orderID uuid.UUID,
	reason string,
) (*order.Aggregate, error) {
	ord, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.eligibility.CheckEligibility(ctx, ord, time.Now())
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, appcore.NewDomainError("refund eligibility",
			fmt.Errorf("%w: %s", errs.ErrInvalidState, eligibility.Reason))
	}

	if err = ord.RequestRefund(reason); err != nil {
		return nil, appcore.NewDomainError("refund request", err)
	}
	if err = ord.MarkRefunded(); err != nil {
		return nil, appcore.NewDomainError("refund", err)
	}
	if err = s.orders.Save(ctx, ord); err != nil {
		return nil, err
	}

	var revokeErrs []error
	for _, courseID := range ord.CourseIDs() {
		if revokeErr := s.revokeCourseAccess(ctx, ord.UserID(), courseID); revokeErr != nil {
			s.logger.ErrorContext(ctx, "failed to revoke course access after refund",
				slog.String("order_id", orderID.String()),
				slog.String("course_id", courseID.String()),
				slog.String("error", revokeErr.Error()),
			)
			revokeErrs = append(revokeErrs, fmt.Errorf("revoke access to course %s: %w", courseID, revokeErr))
		}
	}

	s.logger.InfoContext(ctx, "order refunded",
		slog.String("order_id", orderID.String()),
		slog.String("reason", reason),
	)

	return ord, errors.Join(revokeErrs...)
}

// grantCourseAccess creates or reactivates the buyer's access record for a
// course. Time-limited courses expire accessTerm after payment.
func (s *OrderProcessingService) grantCourseAccess(
	ctx context.Context,
	userID, courseID uuid.UUID,
	paidAt time.Time,
) error {
	crs, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return err
	}

	var expiresAt *time.Time
	if crs.AccessType() == course.AccessLimited {
		expiry := paidAt.Add(s.accessTerm)
		expiresAt = &expiry
	}

	record, err := s.records.FindByUserAndCourse(ctx, userID, courseID)
	switch {
	case errors.Is(err, appcore.ErrNotFound):
		record = access.NewAggregate(uuid.NewUUID())
		if grantErr := record.Grant(userID, courseID, paidAt, expiresAt); grantErr != nil {
			return grantErr
		}
	case err != nil:
		return err
	case record.Status() == access.StatusActive:
		// Repurchase while access still holds: nothing to change
		return nil
	default:
		if reactivateErr := record.Reactivate(expiresAt); reactivateErr != nil {
			return reactivateErr
		}
	}

	return s.records.Save(ctx, record)
}

// revokeCourseAccess withdraws the buyer's access record for a course.
// Missing or already revoked records are left alone.
func (s *OrderProcessingService) revokeCourseAccess(ctx context.Context, userID, courseID uuid.UUID) error {
	record, err := s.records.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, appcore.ErrNotFound) {
			return nil
		}
		return err
	}

	if err = record.Revoke("order refunded"); err != nil {
		if errors.Is(err, errs.ErrInvalidState) {
			return nil
		}
		return err
	}

	return s.records.Save(ctx, record)
}
