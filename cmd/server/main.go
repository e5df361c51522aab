package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"cabinfolio-backend/internal/accounting"
	api "cabinfolio-backend/internal/api/http"
	"cabinfolio-backend/internal/config"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/repository/postgres"
	"cabinfolio-backend/internal/reservations"
	"cabinfolio-backend/internal/security"
	"cabinfolio-backend/internal/service"
	"cabinfolio-backend/internal/vault"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Cabinfolio Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Vault
	cipher, err := vault.NewCipher(cfg.Vault.Passphrase, cfg.Vault.Salt)
	if err != nil {
		log.Fatalf("Failed to initialize vault cipher: %v", err)
	}
	credentialVault := vault.New(cipher, store.CredentialRepository)

	// Initialize External Clients
	reservationClient := reservations.NewClient(
		cfg.Reservations.BaseURL,
		cfg.Reservations.APIKey,
		time.Duration(cfg.Reservations.TimeoutSeconds)*time.Second,
	)
	authClient := accounting.NewAuthClient(
		cfg.Accounting.TokenURL,
		cfg.Accounting.ClientID,
		cfg.Accounting.ClientSecret,
		time.Duration(cfg.Accounting.TimeoutSeconds)*time.Second,
	)

	// Initialize Services
	rules := cfg.Policy.Rules()
	emailService := service.NewEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	allowanceService := service.NewAllowanceService(store.AllowanceRepository, rules)
	bookingService := service.NewBookingService(
		reservationClient,
		allowanceService,
		store.ReconciliationRepository,
		emailService,
		rules,
		cfg.Accounting.AdminEmail,
	)
	credentialService := service.NewCredentialService(credentialVault, store.CredentialRepository, authClient)

	// Initialize API
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	bookingHandler := api.NewBookingHandler(bookingService, reservationClient)
	accountingHandler := api.NewAccountingHandler(credentialService, cfg.Accounting.AdminOwnerRef)
	router := api.NewRouter(bookingHandler, accountingHandler, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
