package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leadflow/leadflow/pkg/observability"
)

// Sweeper periodically flags leads that have gone quiet. It runs inside the
// lead service process on a cron schedule.
type Sweeper struct {
	cron          *cron.Cron
	notifications *NotificationStore
	staleAfter    time.Duration
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// NewSweeper creates a stale-lead sweeper.
func NewSweeper(notifications *NotificationStore, staleAfter time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Sweeper {
	return &Sweeper{
		cron:          cron.New(),
		notifications: notifications,
		staleAfter:    staleAfter,
		logger:        logger,
		metrics:       metrics,
	}
}

// Start schedules the sweep at the given interval and runs one sweep
// immediately so a restart never delays overdue notifications.
func (s *Sweeper) Start(interval time.Duration) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.sweep)
	if err != nil {
		return fmt.Errorf("schedule stale-lead sweep: %w", err)
	}
	s.cron.Start()

	go s.sweep()
	return nil
}

// Stop halts the schedule. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Error("stale-lead sweep failed")
		return
	}
	if created > 0 {
		s.logger.WithField("notifications", created).Info("stale-lead sweep created notifications")
	}
}

// RunOnce performs a single sweep and reports how many notifications it
// created.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	created, err := s.notifications.SweepStale(ctx, s.staleAfter)
	if created > 0 {
		s.metrics.NotificationsSweptTotal.Add(float64(created))
	}
	return created, err
}
