// Package worker runs background maintenance jobs for the user center.
package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweepable drops expired entries and reports how many were removed.
type Sweepable interface {
	Sweep() int
}

// SweepObserver records sweep results.
type SweepObserver interface {
	ObserveSweep(n int)
}

// Sweeper periodically purges expired entries from the in-process
// ephemeral store. Reads already ignore expired entries; sweeping only
// bounds memory.
type Sweeper struct {
	cron     *cron.Cron
	target   Sweepable
	observer SweepObserver
	logger   *zap.Logger
}

// NewSweeper schedules target.Sweep on the cron expression (e.g. "@every 1m").
// observer may be nil.
func NewSweeper(schedule string, target Sweepable, observer SweepObserver, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		cron:     cron.New(),
		target:   target,
		observer: observer,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce() }); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce sweeps immediately and returns the number of removed entries.
func (s *Sweeper) RunOnce() int {
	n := s.target.Sweep()
	if s.observer != nil {
		s.observer.ObserveSweep(n)
	}
	if n > 0 {
		s.logger.Debug("ephemeral entries swept", zap.Int("removed", n))
	}
	return n
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running sweep to finish.
func (s *Sweeper) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("ephemeral sweeper started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("ephemeral sweeper stopping")
}
