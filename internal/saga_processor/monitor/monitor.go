// Package monitor watches for transfers that stopped making progress. A
// rollback that fails against a bank system leaves its transfer pending
// forever; the monitor cannot repair those, but it keeps them visible so an
// operator can reconcile with the bank out of band.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

// Monitor periodically reports transfers stuck in the pending status
type Monitor struct {
	repo           transaction.Repository
	logger         *slog.Logger
	pollInterval   time.Duration
	stuckThreshold time.Duration
	batchSize      int
}

func NewMonitor(
	cfg *config.MonitorConfig,
	repo transaction.Repository,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		repo:           repo,
		logger:         logger,
		pollInterval:   cfg.PollingInterval,
		stuckThreshold: cfg.StuckThreshold,
		batchSize:      cfg.BatchSize,
	}
}

// Start begins polling until context is canceled
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Starting stuck-transfer monitor",
		"poll_interval", m.pollInterval.String(),
		"stuck_threshold", m.stuckThreshold.String(),
		"batch_size", m.batchSize,
	)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Stuck-transfer monitor stopping due to context cancellation.")
			return
		case <-ticker.C:
			m.logger.Debug("Monitor tick: scanning for stuck transfers")
			if err := m.reportStuckTransfers(ctx); err != nil {
				m.logger.Error("Error during stuck-transfer scan", "error", err)
			}
		}
	}
}

func (m *Monitor) reportStuckTransfers(ctx context.Context) error {
	cutoff := time.Now().Add(-m.stuckThreshold)

	stuck, err := m.repo.ListStuckPending(ctx, cutoff, m.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list stuck pending transfers: %w", err)
	}

	if len(stuck) == 0 {
		m.logger.Debug("No stuck transfers found.")
		return nil
	}

	for _, txn := range stuck {
		m.logger.Warn("Transfer stuck in pending",
			"transaction_id", txn.ID,
			"phase", string(txn.Phase()),
			"source_id", txn.SourceID,
			"destination_id", txn.DestinationID,
			"amount", txn.Amount.String(),
			"age", time.Since(txn.UpdatedAt).String(),
		)
	}

	m.logger.Info("Stuck-transfer scan complete", "count", len(stuck))
	return nil
}
