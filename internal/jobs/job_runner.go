package jobs

import (
	"sendbox-backend/internal/config"
	"sendbox-backend/internal/logger"
	"sendbox-backend/internal/repository"
	"sendbox-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	noteRepo    repository.NotificationRepository
	email       service.EmailService
	config      *config.Config
}

func NewJobRunner(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	noteRepo repository.NotificationRepository,
	email service.EmailService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		noteRepo:    noteRepo,
		email:       email,
		config:      cfg,
	}
}

// Config exposes the configuration for schedule registration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ExpireStalePendingBookings()
	jr.CompleteFinishedListings()
	jr.SendDepartureReminders()
}
