package service

import (
	"context"
	"elsofra/internal/clock"
	"elsofra/internal/db"
	"elsofra/internal/logging"
	"elsofra/internal/metrics"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type JobRepository interface {
	GetStalePendingBookingIDs(ctx context.Context, before time.Time) ([]int64, error)
	UpdateBookingStatuses(ctx context.Context, ids []int64, newStatus string) (int64, error)
}

type JobService struct {
	repo    JobRepository
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewJobService(repo JobRepository, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics) *JobService {
	return &JobService{repo: repo, clock: clk, logger: logging.OrNop(logger), metrics: m}
}

// CancelStalePendingBookings cancels pending bookings whose date has passed
// without staff confirming them.
func (s *JobService) CancelStalePendingBookings(ctx context.Context) (int64, error) {
	today := clock.Today(s.clock)
	ids, err := s.repo.GetStalePendingBookingIDs(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Debug("cron job: no stale pending bookings")
		return 0, nil
	}

	n, err := s.repo.UpdateBookingStatuses(ctx, ids, string(db.StatusCancelled))
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to cancel stale bookings: %w", err)
	}
	s.metrics.StatusChanged(string(db.StatusCancelled), int(n))
	s.logger.Info("cron job: cancelled stale pending bookings", zap.Int64("count", n), zap.Int64s("ids", ids))
	return n, nil
}

// Start schedules the sweeper on spec and returns the running scheduler.
// Stop it with Stop() on shutdown.
func (s *JobService) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.CancelStalePendingBookings(ctx); err != nil {
			s.logger.Error("cron job failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
