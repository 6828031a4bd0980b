package jobs

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

// jobTimeout bounds a single job run so a stuck store cannot pile up runs.
const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services  *Services
	publisher events.Publisher
	config    *config.Config
	now       func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reservations service.ReservationService
	Documents    service.DocumentService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, publisher events.Publisher, cfg *config.Config) *JobRunner {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &JobRunner{
		services:  services,
		publisher: publisher,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(started).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CleanupExpiredDocuments()
	jr.ReportOverdueReservations()
}
