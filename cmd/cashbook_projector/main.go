package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/propdesk-cashbook/internal/config"
	"github.com/propdesk-cashbook/internal/data/mongo"
	"github.com/propdesk-cashbook/internal/data/postgres"
	"github.com/propdesk-cashbook/internal/logger"
	"github.com/propdesk-cashbook/internal/platform/messaging/consumers"
	"github.com/propdesk-cashbook/internal/platform/messaging/producers"
	"github.com/propdesk-cashbook/internal/platform/persistence"
	"github.com/propdesk-cashbook/internal/projector/consumer"
	"github.com/propdesk-cashbook/internal/projector/exporter"
	"github.com/propdesk-cashbook/internal/projector/outbox_poller"
	"github.com/propdesk-cashbook/internal/projector/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("cashbook_projector")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Cash Book Projector",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	loc, err := cfg.Cashbook.Location()
	if err != nil {
		log.Error("Failed to resolve business time zone", "error", err)
		os.Exit(1)
	}

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	readModel := mongo.NewReportRepository(log, mongoDB.Database())
	if err := readModel.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create read model indexes", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producers and consumer
	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize event Kafka producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize projection pipeline
	projectionService := service.CreateProjectionService(readModel, log, cfg)

	eventHandler := consumer.NewCashbookEventHandler(log, projectionService, dlqProducer)

	// Initialize outbox poller
	eventPublisher := outbox_poller.NewEventPublisher(outboxRepo, eventProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	// Initialize scheduled jobs
	dailyExporter := exporter.NewDailyExporter(readModel, cfg.Report.ExportDir, loc, log)
	scheduler := exporter.NewScheduler(loc, log)
	if err := scheduler.Add("daily_export", cfg.Report.DailyExportSchedule, dailyExporter.ExportPreviousDay); err != nil {
		log.Error("Failed to schedule daily export", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Add("outbox_cleanup", cfg.Outbox.CleanupSchedule, poller.PurgeProcessed); err != nil {
		log.Error("Failed to schedule outbox cleanup", "error", err)
		os.Exit(1)
	}

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.EventTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Start scheduler in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it's a WorkerPoolProjectionService
	if wpService, ok := projectionService.(*service.WorkerPoolProjectionService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing event Kafka producer", "error", err)
	}

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Cash Book Projector shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Cash Book Projector shutdown completed with errors")
	} else {
		log.Info("Cash Book Projector shutdown completed successfully")
	}
}
