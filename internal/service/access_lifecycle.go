package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/coursery/coursery/internal/domain/access"
)

// AccessScanner finds and saves access records due for expiry. The interface
// is declared on the consumer side.
type AccessScanner interface {
	FindDueForExpiry(ctx context.Context, now time.Time) ([]*access.Aggregate, error)
	Save(ctx context.Context, agg *access.Aggregate) error
}

// AccessLifecycleService expires time-limited access records whose expiry
// has passed. The sweep worker drives it on an interval.
type AccessLifecycleService struct {
	records AccessScanner
	logger  *slog.Logger
}

// AccessLifecycleOption configures AccessLifecycleService.
type AccessLifecycleOption func(*AccessLifecycleService)

// WithAccessLifecycleLogger sets the logger.
func WithAccessLifecycleLogger(logger *slog.Logger) AccessLifecycleOption {
	return func(s *AccessLifecycleService) {
		s.logger = logger
	}
}

// NewAccessLifecycleService creates an AccessLifecycleService.
func NewAccessLifecycleService(records AccessScanner, opts ...AccessLifecycleOption) *AccessLifecycleService {
	s := &AccessLifecycleService{
		records: records,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ExpireDue expires every active, time-limited record whose expiry has been
// reached as of now and returns how many were expired. A record that fails
// to expire is logged and skipped; the sweep continues.
func (s *AccessLifecycleService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.records.FindDueForExpiry(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, record := range due {
		if expireErr := record.Expire(now); expireErr != nil {
			s.logger.ErrorContext(ctx, "failed to expire access record",
				slog.String("access_id", record.ID().String()),
				slog.String("error", expireErr.Error()),
			)
			continue
		}
		if len(record.UncommittedEvents()) == 0 {
			continue
		}
		if saveErr := s.records.Save(ctx, record); saveErr != nil {
			s.logger.ErrorContext(ctx, "failed to save expired access record",
				slog.String("access_id", record.ID().String()),
				slog.String("error", saveErr.Error()),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.InfoContext(ctx, "access records expired",
			slog.Int("count", expired),
			slog.Time("as_of", now),
		)
	}

	return expired, nil
}
