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

	httpapi "sendbox-backend/internal/api/http"
	"sendbox-backend/internal/config"
	"sendbox-backend/internal/logger"
	"sendbox-backend/internal/repository/postgres"
	"sendbox-backend/internal/security"
	"sendbox-backend/internal/service"
	"sendbox-backend/internal/storage"
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
	logger.Info("Starting Sendbox Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Payments configuration", "mode", cfg.Payments.Mode, "currency", cfg.Payments.Currency)

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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Storage
	fileStore, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Document Service
	docSvc := service.NewDocumentService(
		store.BookingRepository,
		store.ListingRepository,
		store.ProfileRepository,
		fileStore,
	)

	// Initialize Payment Provider (stripe mode only)
	var provider service.PaymentProvider
	if cfg.Payments.Mode == service.PaymentModeStripe {
		provider = service.NewStripeProvider(cfg.Payments.SecretKey)
	}

	// Initialize Services
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.ListingRepository,
		store.ProfileRepository,
		store.TransactionRepository,
		store.NotificationRepository,
		emailSvc,
		docSvc,
		fileStore,
		cfg.Features,
		cfg.Payments.Currency,
	)
	paymentSvc := service.NewPaymentService(
		store.BookingRepository,
		store.TransactionRepository,
		store.ProfileRepository,
		store.NotificationRepository,
		emailSvc,
		docSvc,
		provider,
		cfg.Payments.Mode,
		cfg.Payments.Currency,
		cfg.Features.KycRequired,
	)
	listingSvc := service.NewListingService(
		store.ListingRepository,
		store.BookingRepository,
		store.ProfileRepository,
		cfg.Features.KycRequired,
	)
	profileSvc := service.NewProfileService(store.ProfileRepository)
	notificationSvc := service.NewNotificationService(store.NotificationRepository)

	// Set up HTTP server
	server := httpapi.NewServer(
		bookingSvc,
		paymentSvc,
		listingSvc,
		profileSvc,
		notificationSvc,
		fileStore,
		tokenManager,
		cfg.Payments.WebhookSecret,
	)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
