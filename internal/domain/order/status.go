package order

import (
	"fmt"

	"github.com/coursery/coursery/internal/domain/errs"
)

// Status represents the order lifecycle state.
type Status string

const (
	// StatusPending - order placed, awaiting payment
	StatusPending Status = "PENDING"
	// StatusPaid - payment confirmed
	StatusPaid Status = "PAID"
	// StatusRefundRequested - refund requested, awaiting processing
	StatusRefundRequested Status = "REFUND_REQUESTED"
	// StatusRefunded - refund completed
	StatusRefunded Status = "REFUNDED"
	// StatusCancelled - order cancelled before payment
	StatusCancelled Status = "CANCELLED"
	// StatusPaymentFailed - payment attempt failed
	StatusPaymentFailed Status = "PAYMENT_FAILED"
)

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown order status %q", errs.ErrInvalidInput, s)
	}
	return status, nil
}

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusRefundRequested, StatusRefunded, StatusCancelled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRefunded, StatusCancelled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}
