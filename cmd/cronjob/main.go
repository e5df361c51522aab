package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"cabinfolio-backend/internal/accounting"
	"cabinfolio-backend/internal/config"
	"cabinfolio-backend/internal/jobs"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/repository/postgres"
	"cabinfolio-backend/internal/scheduler"
	"cabinfolio-backend/internal/service"
	"cabinfolio-backend/internal/vault"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'flag-allowance-closeouts', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Cabinfolio Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	cipher, err := vault.NewCipher(cfg.Vault.Passphrase, cfg.Vault.Salt)
	if err != nil {
		log.Fatalf("Failed to initialize vault cipher: %v", err)
	}
	credentialVault := vault.New(cipher, store.CredentialRepository)

	authClient := accounting.NewAuthClient(
		cfg.Accounting.TokenURL,
		cfg.Accounting.ClientID,
		cfg.Accounting.ClientSecret,
		time.Duration(cfg.Accounting.TimeoutSeconds)*time.Second,
	)
	credentialService := service.NewCredentialService(credentialVault, store.CredentialRepository, authClient)

	emailService := service.NewEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(
		store.AllowanceRepository,
		store.CredentialRepository,
		store.ReconciliationRepository,
		credentialService,
		emailService,
		cfg,
	)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "flag-allowance-closeouts":
		jobRunner.FlagAllowanceCloseouts()
	case "sweep-reconciliation":
		jobRunner.SweepReconciliation()
	case "refresh-credentials":
		jobRunner.RefreshExpiringCredentials()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - flag-allowance-closeouts\n")
		fmt.Printf("  - sweep-reconciliation\n")
		fmt.Printf("  - refresh-credentials\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
