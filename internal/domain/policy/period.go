package policy

import (
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
)

const hoursPerDay = 24

// RefundPeriod is a refund window measured in whole days from purchase.
type RefundPeriod struct {
	days int
}

// NewRefundPeriod validates a refund window length.
func NewRefundPeriod(days int) (RefundPeriod, error) {
	if days < 0 {
		return RefundPeriod{}, fmt.Errorf("%w: refund period cannot be negative, got %d days", errs.ErrInvalidInput, days)
	}
	return RefundPeriod{days: days}, nil
}

// Days returns the window length in days.
func (r RefundPeriod) Days() int {
	return r.days
}

// Contains reports whether now still falls inside the window that opened
// at purchasedAt. Day N itself is still inside an N-day window.
func (r RefundPeriod) Contains(purchasedAt, now time.Time) bool {
	if now.Before(purchasedAt) {
		return true
	}
	elapsedDays := int(now.Sub(purchasedAt).Hours() / hoursPerDay)
	return elapsedDays <= r.days
}

// String returns the window as "N days".
func (r RefundPeriod) String() string {
	return fmt.Sprintf("%d days", r.days)
}
