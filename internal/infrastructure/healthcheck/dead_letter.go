package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
)

// DeadLetterSource exposes the failed-event queue of the event bus.
type DeadLetterSource interface {
	DeadLetters() []eventbus.DeadLetter
}

// DeadLetterChecker checks the dead letter queue status. An event parked
// there means a subscriber kept failing after retries, so read models may
// be missing updates until the queue is drained.
type DeadLetterChecker struct {
	source DeadLetterSource
}

// NewDeadLetterChecker creates a new dead letter queue health checker.
func NewDeadLetterChecker(source DeadLetterSource) *DeadLetterChecker {
	return &DeadLetterChecker{
		source: source,
	}
}

// Name returns the name of this health checker.
func (c *DeadLetterChecker) Name() string {
	return "dead_letter_queue"
}

// Check performs the health check.
func (c *DeadLetterChecker) Check(_ context.Context) appcore.HealthStatus {
	count := len(c.source.DeadLetters())

	healthy := count == 0

	details := map[string]any{
		"dead_letters": count,
	}

	message := fmt.Sprintf("dead letter queue: %d events", count)

	return appcore.HealthStatus{
		Healthy:   healthy,
		Message:   message,
		Details:   details,
		CheckedAt: time.Now(),
	}
}
