package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/interbank-transfer-saga/internal/data/mongo"
	"github.com/interbank-transfer-saga/internal/data/postgres"
	"github.com/interbank-transfer-saga/internal/logger"
	"github.com/interbank-transfer-saga/internal/platform/bankclient"
	"github.com/interbank-transfer-saga/internal/platform/messaging/consumers"
	"github.com/interbank-transfer-saga/internal/platform/messaging/producers"
	"github.com/interbank-transfer-saga/internal/platform/persistence"
	"github.com/interbank-transfer-saga/internal/saga_processor/components"
	"github.com/interbank-transfer-saga/internal/saga_processor/consumer"
	"github.com/interbank-transfer-saga/internal/saga_processor/monitor"
	"github.com/interbank-transfer-saga/internal/saga_processor/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("saga_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Saga Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	accountDirectory := postgres.NewAccountDirectory(log, postgresDB)
	flowRecorder := mongo.NewFlowRecorder(log, mongoDB.Database())

	// Initialize the bank gateway client
	bankGateway := bankclient.NewClient(log, &cfg.Banks)

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka producer for follow-up saga notifications
	sagaProducer, err := producers.NewSagaNotificationProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize saga Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil when DLQTopic is not configured. Only a non-nil
	// producer goes into the interface so the handler's nil check holds.
	var deadLetterPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetterPublisher = dlqProducer
	}

	// Initialize the saga service
	sagaService := components.CreateSagaService(
		transactionRepo,
		accountDirectory,
		bankGateway,
		sagaProducer,
		flowRecorder,
		log,
		cfg,
	)

	// Initialize notification handler
	notificationHandler := consumer.NewSagaNotificationHandler(
		log,
		sagaService,
		deadLetterPublisher,
	)

	// Initialize stuck-transfer monitor
	stuckMonitor := monitor.NewMonitor(&cfg.Monitor, transactionRepo, log)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.SagaTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.SagaTopic, cfg.Kafka.ConsumerGroup, notificationHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start stuck-transfer monitor in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		stuckMonitor.Start(appCtx)
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

	// Shutdown the worker pool if it's a WorkerPoolSagaService
	if wpService, ok := sagaService.(*service.WorkerPoolSagaService); ok {
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

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close the saga notification producer
	if err = sagaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Close Kafka consumer
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
		log.Error("Saga Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Saga Processor shutdown completed with errors")
	} else {
		log.Info("Saga Processor shutdown completed successfully")
	}
}
