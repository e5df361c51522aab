package jobs

import (
	"cabinfolio-backend/internal/config"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/repository"
	"cabinfolio-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	allowances  repository.AllowanceRepository
	credentials repository.CredentialRepository
	recon       repository.ReconciliationRepository
	credSvc     service.CredentialService
	email       service.EmailService
	config      *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	allowances repository.AllowanceRepository,
	credentials repository.CredentialRepository,
	recon repository.ReconciliationRepository,
	credSvc service.CredentialService,
	email service.EmailService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		allowances:  allowances,
		credentials: credentials,
		recon:       recon,
		credSvc:     credSvc,
		email:       email,
		config:      cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
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

// RunAllJobs runs every job once, for the cronjob binary's one-shot mode
func (jr *JobRunner) RunAllJobs() {
	jr.FlagAllowanceCloseouts()
	jr.SweepReconciliation()
	jr.RefreshExpiringCredentials()
}
