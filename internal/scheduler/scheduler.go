package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes entries whose amount fell within tolerance of zero.
type Pruner interface {
	PruneEmpty(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic sweep over stock and shopping lists.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	pruners  map[string]Pruner
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that sweeps every named pruner on schedule.
func NewScheduler(schedule string, pruners map[string]Pruner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		pruners:  pruners,
		logger:   logger,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Sweep runs every pruner once.
func (s *Scheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for name, p := range s.pruners {
		removed, err := p.PruneEmpty(ctx)
		if err != nil {
			s.logger.Error("sweep failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		if removed > 0 {
			s.logger.Info("swept empty entries", zap.String("collection", name), zap.Int64("removed", removed))
		}
	}
}
