// Package scheduler runs the periodic snapshot retention sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/snapshot"
)

// Scheduler manages the engine's cron jobs
type Scheduler struct {
	cron            *cron.Cron
	snapshots       *snapshot.Store
	cfg             config.SnapshotConfig
	log             *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler over the snapshot store
func NewScheduler(snapshots *snapshot.Store, cfg config.SnapshotConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		snapshots:       snapshots,
		cfg:             cfg,
		log:             logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRetentionSweep schedules the snapshot retention sweep on the
// configured cron expression.
func (s *Scheduler) ScheduleRetentionSweep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		deleted, err := s.snapshots.Sweep(ctx, s.cfg.RetentionDays)
		if err != nil {
			s.log.WithError(err).Error("Retention sweep failed")
			return
		}
		metrics.RecordSweep(float64(deleted))
		s.log.WithFields(logrus.Fields{
			"deleted":        deleted,
			"retention_days": s.cfg.RetentionDays,
		}).Info("Retention sweep completed")
	}

	entryID, err := s.cron.AddFunc(s.cfg.SweepSchedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add retention sweep job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("schedule", s.cfg.SweepSchedule).Info("Scheduled snapshot retention sweep")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs up to the graceful
// timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.log.Info("Scheduler stopped")
	case <-time.After(s.gracefulTimeout):
		s.log.Warn("Scheduler stop timed out with jobs still running")
	}
	s.isRunning = false
	return nil
}

// IsRunning reports whether the scheduler is active
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
