package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// CourseFinder loads courses. The interface is declared on the consumer side.
type CourseFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*course.Aggregate, error)
}

// PolicyFinder loads refund policies. The interface is declared on the
// consumer side.
type PolicyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*policy.Aggregate, error)
}

// AccessFinder looks up the access record a user holds for a course. The
// interface is declared on the consumer side.
type AccessFinder interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*access.Aggregate, error)
}

// Eligibility is the outcome of a refund check. Reason is set when the
// refund is refused.
type Eligibility struct {
	Eligible bool
	Reason   string
}

// RefundEligibilityService decides whether a paid order can be refunded. An
// order is refundable only if every course in it allows the refund; the
// strictest policy wins.
type RefundEligibilityService struct {
	courses  CourseFinder
	policies PolicyFinder
	records  AccessFinder
}

// NewRefundEligibilityService creates a RefundEligibilityService.
func NewRefundEligibilityService(
	courses CourseFinder,
	policies PolicyFinder,
	records AccessFinder,
) *RefundEligibilityService {
	return &RefundEligibilityService{
		courses:  courses,
		policies: policies,
		records:  records,
	}
}

// CheckEligibility applies every course's refund policy to the order as of
// now. It refuses orders that are not paid, courses under no_refund or
// inactive policies, purchases outside the refund window, and completed
// courses.
func (s *RefundEligibilityService) CheckEligibility(
	ctx context.Context,
	ord *order.Aggregate,
	now time.Time,
) (Eligibility, error) {
	if ord == nil {
		return Eligibility{}, appcore.ErrInvalidID
	}
	if ord.Status() != order.StatusPaid {
		return refused(fmt.Sprintf("order is not paid (status %s)", ord.Status())), nil
	}
	paidAt := ord.PaidAt()
	if paidAt == nil {
		return refused("order has no payment date"), nil
	}

	for _, courseID := range ord.CourseIDs() {
		crs, err := s.courses.FindByID(ctx, courseID)
		if err != nil {
			return Eligibility{}, fmt.Errorf("load course %s: %w", courseID, err)
		}

		pol, err := s.policies.FindByID(ctx, crs.PolicyID())
		if err != nil {
			return Eligibility{}, fmt.Errorf("load refund policy for course %s: %w", courseID, err)
		}

		progress, err := s.courseProgress(ctx, ord.UserID(), courseID)
		if err != nil {
			return Eligibility{}, err
		}

		if !pol.IsRefundAllowed(*paidAt, now, progress) {
			return refused(refusalReason(crs, pol, *paidAt, now, progress)), nil
		}
	}

	return Eligibility{Eligible: true}, nil
}

// courseProgress returns the user's progress in the course, or zero when no
// access record exists yet.
func (s *RefundEligibilityService) courseProgress(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	record, err := s.records.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, appcore.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load access record for course %s: %w", courseID, err)
	}

	return record.Progress().Value(), nil
}

// refusalReason names the rule that blocked the refund. The checks mirror
// policy.IsRefundAllowed in order.
func refusalReason(crs *course.Aggregate, pol *policy.Aggregate, paidAt, now time.Time, progress int) string {
	switch {
	case pol.Status() != policy.StatusActive:
		return fmt.Sprintf("refund policy %s of course %s is not active", pol.Name(), crs.Title())
	case pol.PolicyType() == policy.TypeNoRefund:
		return fmt.Sprintf("course %s does not allow refunds", crs.Title())
	case !pol.Period().Contains(paidAt, now):
		return fmt.Sprintf("refund window of %s has closed for course %s", pol.Period(), crs.Title())
	case progress >= policy.MaxRefundableProgress:
		return fmt.Sprintf("course %s is already completed", crs.Title())
	default:
		return fmt.Sprintf("refund refused by policy %s", pol.Name())
	}
}

func refused(reason string) Eligibility {
	return Eligibility{Eligible: false, Reason: reason}
}
