package scheduler

import (
	"github.com/robfig/cron/v3"

	"weighbridge-server/internal/jobs"
	"weighbridge-server/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Day boundaries follow the configured timezone, with seconds precision
	c := cron.New(
		cron.WithLocation(jobRunner.Config().Location()),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler. Empty schedules are skipped.
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	s.register("DayRollover", cfg.DayRollover, s.jobs.DayRollover)
	s.register("ResetSerials", cfg.ResetSerials, s.jobs.ResetSerials)

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

func (s *Scheduler) register(name, schedule string, job func()) {
	if schedule == "" {
		logger.Info("Cron job disabled", "job", name)
		return
	}
	if _, err := s.cron.AddFunc(schedule, job); err != nil {
		logger.Error("Failed to register job", "job", name, "schedule", schedule, "error", err)
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if any job is scheduled
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
