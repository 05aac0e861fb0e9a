package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/propdesk-cashbook/internal/api_gateway"
	"github.com/propdesk-cashbook/internal/api_gateway/handler"
	"github.com/propdesk-cashbook/internal/config"
	"github.com/propdesk-cashbook/internal/data/postgres"
	"github.com/propdesk-cashbook/internal/logger"
	"github.com/propdesk-cashbook/internal/platform/persistence"
	"github.com/propdesk-cashbook/internal/reconciler/components"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("cashbook_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Cash Book API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"timezone", cfg.Cashbook.Timezone,
	)

	// Initialize database with app context; applies pending migrations first
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	balanceRepo := postgres.NewDailyBalanceRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize the reconciliation engine
	reconciliationService, err := components.CreateReconciliationService(
		postgresDB,
		transactionRepo,
		balanceRepo,
		outboxRepo,
		log,
		cfg,
	)
	if err != nil {
		log.Error("Failed to initialize reconciliation service", "error", err)
		postgresDB.Close()
		os.Exit(1)
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, reconciliationService, map[string]handler.HealthChecker{
		"postgres": postgresDB,
	})
	log.Info("REST server initialized", "auth_enabled", cfg.Auth.Enabled())

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the pool goes away
	if err = server.Stop(context.Background()); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
