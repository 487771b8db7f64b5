package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"weighbridge-server/internal/config"
	"weighbridge-server/internal/jobs"
)

func newTestScheduler(sc config.SchedulerConfig) *Scheduler {
	cfg := &config.Config{
		Server:    config.ServerConfig{Timezone: "Asia/Kolkata"},
		Scheduler: sc,
	}
	return NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
}

func TestNewScheduler(t *testing.T) {
	t.Run("RegistersConfiguredJobs", func(t *testing.T) {
		s := newTestScheduler(config.SchedulerConfig{
			DayRollover:  "5 0 0 * * *",
			ResetSerials: "0 0 0 * * *",
		})
		assert.Len(t, s.cron.Entries(), 2)
		assert.True(t, s.IsRunning())
		assert.Equal(t, "Asia/Kolkata", s.cron.Location().String())
	})

	t.Run("SkipsEmptySchedule", func(t *testing.T) {
		s := newTestScheduler(config.SchedulerConfig{DayRollover: "5 0 0 * * *"})
		assert.Len(t, s.cron.Entries(), 1)
	})

	t.Run("SkipsInvalidSchedule", func(t *testing.T) {
		s := newTestScheduler(config.SchedulerConfig{DayRollover: "not a schedule"})
		assert.Empty(t, s.cron.Entries())
		assert.False(t, s.IsRunning())
	})
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(config.SchedulerConfig{DayRollover: "5 0 0 * * *"})
	s.Start()
	s.Stop()
	assert.True(t, s.IsRunning())
}
