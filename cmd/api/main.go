package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nusa-erp/erp-api/docs"
	"github.com/nusa-erp/erp-api/internal/auth"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/http/handler"
	"github.com/nusa-erp/erp-api/internal/http/middleware"
	"github.com/nusa-erp/erp-api/internal/http/router"
	"github.com/nusa-erp/erp-api/internal/jobs"
	"github.com/nusa-erp/erp-api/internal/logger"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/service"
	"github.com/nusa-erp/erp-api/internal/storage"
	"go.uber.org/zap"
)

// @title Nusa ERP API
// @version 1.0
// @description Quotations, purchase orders, invoices, bills, returns and work orders with approval workflow and PPN-aware totals
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@nusa-erp.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated from models")
	}

	exportStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	documentRepo := repository.NewDocumentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	// Services
	location := cfg.Documents.Location()
	clock := service.SystemClock{}
	numberService := service.NewNumberSequenceService(sequenceRepo, log)
	documentService := service.NewDocumentService(
		database.NewTxManager(db),
		documentRepo,
		contactRepo,
		activityRepo,
		numberService,
		clock,
		location,
		service.DefaultsFromConfig(&cfg.Documents),
		log,
	)
	contactService := service.NewContactService(contactRepo, documentRepo, log)
	exportService := service.NewExportService(documentRepo, exportStorage, clock, cfg.Documents.ExportMaxRows, log)

	// HTTP
	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		handler.NewContactHandler(contactService, log),
		handler.NewDocumentHandler(documentService, exportService, log),
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Documents.ExpiryEnabled {
		scheduler = jobs.NewScheduler(location, log)
		if err := jobs.RegisterExpiryJob(
			scheduler,
			documentService,
			cfg.Documents.ExpiryCron,
			cfg.Documents.ExpiryTimeoutDuration(),
			log,
		); err != nil {
			return fmt.Errorf("failed to register expiry job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started with document expiry job",
			zap.String("cron_expr", cfg.Documents.ExpiryCron),
			zap.String("timezone", location.String()),
		)
	} else {
		log.Info("Document expiry job disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if scheduler != nil {
			select {
			case <-scheduler.Stop().Done():
				log.Info("Scheduler stopped")
			case <-ctx.Done():
				log.Warn("Scheduler did not stop before the shutdown deadline")
			}
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
