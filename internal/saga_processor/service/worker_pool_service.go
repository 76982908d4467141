package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/interbank-transfer-saga/internal/domain/saga"
)

// WorkerPoolSagaService runs notification handling on a bounded worker pool
// while serializing work per transaction. Kafka's keyed partitioning already
// orders notifications for one transfer across consumers; the per-transaction
// lock extends that guarantee inside the pool, where tasks for different
// offsets could otherwise interleave.
type WorkerPoolSagaService struct {
	baseService SagaService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects the locks map; the per-transaction locks are refcounted so
	// entries disappear once no worker holds or waits on them.
	mu    sync.Mutex
	locks map[string]*transferLock
}

type transferLock struct {
	mu   sync.Mutex
	refs int
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSagaService(
	baseService SagaService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSagaService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSagaService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		locks:       make(map[string]*transferLock),
	}, nil
}

// Apply submits the notification to the worker pool and waits for the result.
func (s *WorkerPoolSagaService) Apply(ctx context.Context, notification *saga.Notification) error {
	logger := s.logger
	if notification.CorrelationID != "" {
		logger = s.logger.With("correlation_id", notification.CorrelationID)
	}

	logger.Info("Submitting notification to worker pool",
		"transaction_id", notification.TransactionID.String(),
		"kind", notification.Kind,
	)

	resultChan := make(chan error, 1)

	// Copy to avoid data races with the caller
	notificationCopy := *notification
	transactionID := notification.TransactionID.String()

	err := s.pool.Submit(func() {
		lock := s.acquire(transactionID)
		defer s.release(transactionID, lock)

		resultChan <- s.baseService.Apply(ctx, &notificationCopy)
	})
	if err != nil {
		logger.Error("Failed to submit notification to worker pool",
			"transaction_id", transactionID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// acquire takes the per-transaction lock, creating it on first use.
func (s *WorkerPoolSagaService) acquire(transactionID string) *transferLock {
	s.mu.Lock()
	lock, ok := s.locks[transactionID]
	if !ok {
		lock = &transferLock{}
		s.locks[transactionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

// release drops the per-transaction lock and removes it when unused.
func (s *WorkerPoolSagaService) release(transactionID string, lock *transferLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, transactionID)
	}
	s.mu.Unlock()
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolSagaService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSagaService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSagaService) Capacity() int {
	return s.pool.Cap()
}
