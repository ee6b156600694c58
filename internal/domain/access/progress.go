package access

import (
	"fmt"

	"github.com/coursery/coursery/internal/domain/errs"
)

// MaxProgress is the completion percentage.
const MaxProgress = 100

// Progress is a course completion percentage from 0 to 100.
type Progress int

// NewProgress validates a raw percentage.
func NewProgress(value int) (Progress, error) {
	if value < 0 || value > MaxProgress {
		return 0, fmt.Errorf("%w: progress must be between 0 and %d, got %d", errs.ErrInvalidInput, MaxProgress, value)
	}
	return Progress(value), nil
}

// Value returns the percentage as an int.
func (p Progress) Value() int { return int(p) }

// IsComplete reports whether the course is fully completed.
func (p Progress) IsComplete() bool { return p >= MaxProgress }

// String returns the percentage as "NN%".
func (p Progress) String() string { return fmt.Sprintf("%d%%", int(p)) }
