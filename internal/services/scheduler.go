package services

import (
	"context"
	"time"

	"cogscreen/internal/repository"

	"go.uber.org/zap"
)

// Sweeper is the part of the subject store the scheduler needs.
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// Scheduler periodically evicts subjects that went idle, stopping their
// running games.
type Scheduler struct {
	log      *zap.Logger
	store    Sweeper
	interval time.Duration
	idle     func() time.Duration
}

// NewScheduler sweeps store every interval. idle is read on each run so a
// reloaded configuration applies without a restart.
func NewScheduler(log *zap.Logger, store Sweeper, interval time.Duration, idle func() time.Duration) *Scheduler {
	return &Scheduler{
		log:      log,
		store:    store,
		interval: interval,
		idle:     idle,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Starting idle subject sweeper...", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Idle subject sweeper stopped")
			return nil
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Scheduler) runSweep() int {
	idle := s.idle()
	evicted := s.store.Sweep(idle)
	if evicted > 0 {
		s.log.Info("Evicted idle subjects",
			zap.Int("evicted", evicted),
			zap.Int("remaining", s.store.Len()),
			zap.Duration("idle", idle),
		)
	} else {
		s.log.Debug("Running idle subject check", zap.Int("subjects", s.store.Len()))
	}
	return evicted
}

var _ Sweeper = (*repository.Store)(nil)
