package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/jobs"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers both jobs", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			CleanupExpiredDocuments:   "0 */15 * * * *",
			ReportOverdueReservations: "0 0 * * * *",
		}}
		s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, nil, cfg))
		assert.Len(t, s.cron.Entries(), 2)
		assert.True(t, s.IsRunning())
	})

	t.Run("Invalid schedule is skipped", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			CleanupExpiredDocuments:   "every now and then",
			ReportOverdueReservations: "0 0 * * * *",
		}}
		s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, nil, cfg))
		assert.Len(t, s.cron.Entries(), 1)
	})

	t.Run("Start and stop", func(t *testing.T) {
		s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, nil, &config.Config{}))
		assert.False(t, s.IsRunning())
		s.Start()
		s.Stop()
	})
}
