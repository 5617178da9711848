package feed

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Syncer is the part of FeedService the scheduler drives.
type Syncer interface {
	Sync(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error)
}

// Scheduler runs a full feed sync on a cron schedule.
type Scheduler struct {
	Cron    *cron.Cron
	Syncer  Syncer
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewScheduler registers the sync job. spec is a standard five-field cron
// expression such as "*/30 * * * *".
func NewScheduler(spec string, syncer Syncer, logger *zap.Logger, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{Cron: cron.New(), Syncer: syncer, Logger: logger, Timeout: timeout}
	if _, err := s.Cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("feed: invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.Cron.Start()
	s.Logger.Info("feed sync schedule started")
	<-ctx.Done()
	stopped := s.Cron.Stop()
	<-stopped.Done()
	s.Logger.Info("feed sync schedule stopped")
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	results, err := s.Syncer.Sync(ctx, "", "")
	if err != nil {
		s.Logger.Error("scheduled feed sync failed", zap.Error(err))
		return
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.Logger.Info("scheduled feed sync finished", zap.Int("feeds", len(results)), zap.Int("failed", failed))
}
