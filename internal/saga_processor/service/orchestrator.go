package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/bank"
	"github.com/interbank-transfer-saga/internal/domain/flow"
	"github.com/interbank-transfer-saga/internal/domain/saga"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

// Orchestrator advances transfers through the saga. Each notification triggers
// exactly one phase: debit the source bank, credit the destination bank, commit
// both legs, or roll back whatever was opened. The notification itself carries
// no state; every handler re-reads the transfer record and decides from its
// derived phase, which makes redelivered and reordered notifications safe.
type Orchestrator struct {
	logger    *slog.Logger
	repo      transaction.Repository
	directory account.Directory
	gateway   bank.Gateway
	publisher NotificationPublisher
	recorder  flow.Recorder
}

// NewOrchestrator creates a new saga orchestrator
func NewOrchestrator(
	logger *slog.Logger,
	repo transaction.Repository,
	directory account.Directory,
	gateway bank.Gateway,
	publisher NotificationPublisher,
	recorder flow.Recorder,
) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		repo:      repo,
		directory: directory,
		gateway:   gateway,
		publisher: publisher,
		recorder:  recorder,
	}
}

// Apply handles one saga notification. Returning an error makes the consumer
// leave the offset uncommitted so the broker redelivers the notification.
func (o *Orchestrator) Apply(ctx context.Context, notification *saga.Notification) error {
	logger := o.logger
	if notification.CorrelationID != "" {
		logger = o.logger.With("correlation_id", notification.CorrelationID)
	}

	txn, err := o.repo.GetByID(ctx, notification.TransactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			// The record is persisted before the notification is emitted,
			// so this should not happen. Retry rather than drop.
			logger.Error("Notification references unknown transfer",
				"transaction_id", notification.TransactionID,
				"kind", notification.Kind,
			)
		}
		return fmt.Errorf("failed to load transfer %s: %w", notification.TransactionID, err)
	}

	// A finalized transfer ignores every further notification.
	if txn.Finalized() {
		logger.Info("Ignoring notification for finalized transfer",
			"transaction_id", txn.ID,
			"status", txn.Status,
			"kind", notification.Kind,
		)
		return nil
	}

	logger = logger.With("transaction_id", txn.ID.String(), "phase", string(txn.Phase()))

	switch notification.Kind {
	case saga.KindInit:
		return o.handleDebit(ctx, logger, txn, notification)
	case saga.KindDebitCompleted:
		return o.handleCredit(ctx, logger, txn, notification)
	case saga.KindCreditCompleted:
		return o.handleCommit(ctx, logger, txn, notification)
	case saga.KindPanic:
		return o.handleRollback(ctx, logger, txn)
	default:
		return fmt.Errorf("%w: %q", saga.ErrUnknownKind, notification.Kind)
	}
}

// handleDebit opens the debit leg at the source bank. Any failure here panics
// the saga; nothing has been recorded yet so compensation has nothing to undo.
func (o *Orchestrator) handleDebit(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction, n *saga.Notification) error {
	if txn.DebitLegID != nil {
		// Redelivery after the leg was recorded: skip the bank call and
		// re-emit the next notification in case the first emit was lost.
		logger.Info("Debit leg already recorded, re-emitting completion")
		return o.publish(ctx, logger, saga.KindDebitCompleted, txn, n.CorrelationID)
	}

	source, err := o.directory.Resolve(ctx, txn.SourceID)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, fmt.Errorf("failed to resolve source account: %w", err))
	}

	legID, err := o.gateway.Debit(ctx, source, "transfer to "+txn.Description, txn.Amount)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, err)
	}

	if _, err := o.repo.UpdateDebitLeg(ctx, txn.ID, legID); err != nil {
		if errors.Is(err, transaction.ErrTransactionFinalized{}) {
			logger.Warn("Transfer finalized while debit was in flight", "debit_leg_id", legID)
			return nil
		}
		return fmt.Errorf("failed to record debit leg for %s: %w", txn.ID, err)
	}

	logger.Info("Debit leg opened", "debit_leg_id", legID, "bank", source.Bank)
	return o.publish(ctx, logger, saga.KindDebitCompleted, txn, n.CorrelationID)
}

// handleCredit opens the credit leg at the destination bank. On failure the
// saga panics and the rollback handler reverses the already opened debit leg.
func (o *Orchestrator) handleCredit(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction, n *saga.Notification) error {
	if txn.CreditLegID != nil {
		logger.Info("Credit leg already recorded, re-emitting completion")
		return o.publish(ctx, logger, saga.KindCreditCompleted, txn, n.CorrelationID)
	}

	destination, err := o.directory.Resolve(ctx, txn.DestinationID)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, fmt.Errorf("failed to resolve destination account: %w", err))
	}

	legID, err := o.gateway.Credit(ctx, destination, "transfer from "+txn.Description, txn.Amount)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, err)
	}

	if _, err := o.repo.UpdateCreditLeg(ctx, txn.ID, legID); err != nil {
		if errors.Is(err, transaction.ErrTransactionFinalized{}) {
			logger.Warn("Transfer finalized while credit was in flight", "credit_leg_id", legID)
			return nil
		}
		return fmt.Errorf("failed to record credit leg for %s: %w", txn.ID, err)
	}

	logger.Info("Credit leg opened", "credit_leg_id", legID, "bank", destination.Bank)
	return o.publish(ctx, logger, saga.KindCreditCompleted, txn, n.CorrelationID)
}

// handleCommit finalizes both legs, debit first, then marks the transfer
// approved. The commit attempt lands in the flow graph whether it approved
// or panicked.
func (o *Orchestrator) handleCommit(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction, n *saga.Notification) error {
	if txn.DebitLegID == nil || txn.CreditLegID == nil {
		// Commit arrived ahead of the leg updates becoming visible. Retry.
		return fmt.Errorf("transfer %s is not ready to commit in phase %s", txn.ID, txn.Phase())
	}

	source, err := o.directory.Resolve(ctx, txn.SourceID)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, fmt.Errorf("failed to resolve source account: %w", err))
	}
	destination, err := o.directory.Resolve(ctx, txn.DestinationID)
	if err != nil {
		return o.panicSaga(ctx, logger, txn, n, fmt.Errorf("failed to resolve destination account: %w", err))
	}

	// The flow graph records every commit attempt, approved or panicked.
	// Recording is best effort; the transfer outcome never depends on the
	// reporting store.
	record := txn
	defer func() {
		if err := o.recorder.Record(ctx, flow.FromTransaction(record)); err != nil {
			logger.Error("Failed to record money flow", "error", err)
		}
	}()

	if err := o.gateway.Commit(ctx, source.Bank, *txn.DebitLegID); err != nil {
		return o.panicSaga(ctx, logger, txn, n, err)
	}
	if err := o.gateway.Commit(ctx, destination.Bank, *txn.CreditLegID); err != nil {
		return o.panicSaga(ctx, logger, txn, n, err)
	}

	approved, err := o.repo.UpdateStatus(ctx, txn.ID, transaction.StatusApproved)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionFinalized{}) {
			logger.Info("Transfer already finalized during commit")
			return nil
		}
		return fmt.Errorf("failed to approve transfer %s: %w", txn.ID, err)
	}
	record = approved

	logger.Info("Transfer approved",
		"debit_leg_id", *txn.DebitLegID,
		"credit_leg_id", *txn.CreditLegID,
	)

	return nil
}

// handleRollback reverses the opened legs in inverse order, credit before
// debit, then marks the transfer rejected. A failed rollback call is logged
// and the transfer is left pending; the stuck-transfer monitor reports it.
func (o *Orchestrator) handleRollback(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction) error {
	if txn.CreditLegID != nil {
		destination, err := o.directory.Resolve(ctx, txn.DestinationID)
		if err != nil {
			logger.Error("Rollback could not resolve destination account", "error", err)
			return nil
		}
		if err := o.gateway.Rollback(ctx, destination.Bank, *txn.CreditLegID); err != nil {
			logger.Error("Failed to roll back credit leg",
				"credit_leg_id", *txn.CreditLegID,
				"bank", destination.Bank,
				"error", err,
			)
			return nil
		}
		logger.Info("Credit leg rolled back", "credit_leg_id", *txn.CreditLegID)
	}

	if txn.DebitLegID != nil {
		source, err := o.directory.Resolve(ctx, txn.SourceID)
		if err != nil {
			logger.Error("Rollback could not resolve source account", "error", err)
			return nil
		}
		if err := o.gateway.Rollback(ctx, source.Bank, *txn.DebitLegID); err != nil {
			logger.Error("Failed to roll back debit leg",
				"debit_leg_id", *txn.DebitLegID,
				"bank", source.Bank,
				"error", err,
			)
			return nil
		}
		logger.Info("Debit leg rolled back", "debit_leg_id", *txn.DebitLegID)
	}

	if _, err := o.repo.UpdateStatus(ctx, txn.ID, transaction.StatusRejected); err != nil {
		if errors.Is(err, transaction.ErrTransactionFinalized{}) {
			logger.Info("Transfer already finalized during rollback")
			return nil
		}
		return fmt.Errorf("failed to reject transfer %s: %w", txn.ID, err)
	}

	logger.Info("Transfer rejected")
	return nil
}

// panicSaga converts a phase failure into a panic notification. This is the
// single place where forward progress turns into compensation.
func (o *Orchestrator) panicSaga(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction, n *saga.Notification, cause error) error {
	logger.Error("Saga phase failed, requesting rollback",
		"kind", n.Kind,
		"error", cause,
	)
	return o.publish(ctx, logger, saga.KindPanic, txn, n.CorrelationID)
}

func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, kind saga.Kind, txn *transaction.Transaction, correlationID string) error {
	notification := saga.NewNotification(kind, txn.ID, correlationID)
	if err := o.publisher.Publish(ctx, txn.ID.String(), notification); err != nil {
		logger.Error("Failed to publish saga notification", "kind", kind, "error", err)
		return fmt.Errorf("failed to publish %s notification for %s: %w", kind, txn.ID, err)
	}
	return nil
}
