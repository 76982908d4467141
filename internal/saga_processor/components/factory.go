package components

import (
	"log/slog"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/bank"
	"github.com/interbank-transfer-saga/internal/domain/flow"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
	"github.com/interbank-transfer-saga/internal/saga_processor/service"
)

// CreateSagaService creates a SagaService with all its dependencies.
func CreateSagaService(
	repo transaction.Repository,
	directory account.Directory,
	gateway bank.Gateway,
	publisher service.NotificationPublisher,
	recorder flow.Recorder,
	logger *slog.Logger,
	cfg *config.Config,
) service.SagaService {
	baseService := service.NewOrchestrator(
		logger,
		repo,
		directory,
		gateway,
		publisher,
		recorder,
	)

	workerPoolService, err := service.NewWorkerPoolSagaService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool saga service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
