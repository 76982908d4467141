package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/saga"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

type transferService struct {
	logger    *slog.Logger
	repo      transaction.Repository
	directory account.Directory
	publisher NotificationPublisher
}

// NewTransferService creates a new transfer service
func NewTransferService(
	logger *slog.Logger,
	repo transaction.Repository,
	directory account.Directory,
	publisher NotificationPublisher,
) TransferService {
	return &transferService{
		logger:    logger,
		repo:      repo,
		directory: directory,
		publisher: publisher,
	}
}

// StartTransfer validates the request, persists a pending transfer record and
// emits the initial saga notification. The record is persisted before the
// notification so a delivered notification always finds its transfer.
func (s *transferService) StartTransfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal, description, correlationID string) (*transaction.Transaction, error) {
	source, err := s.directory.ResolveWithBalance(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if _, err := s.directory.Resolve(ctx, destinationID); err != nil {
		return nil, err
	}

	if !source.CanCover(amount) {
		return nil, account.ErrInsufficientFunds
	}

	txn, err := transaction.NewTransaction(sourceID, destinationID, amount, description)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to persist transfer: %w", err)
	}

	notification := saga.NewNotification(saga.KindInit, txn.ID, correlationID)
	if err := s.publisher.Publish(ctx, txn.ID.String(), notification); err != nil {
		// The pending record stays behind; the stuck-transfer monitor
		// reports records that never progressed.
		s.logger.Error("Failed to publish init notification",
			"transaction_id", txn.ID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to publish init notification: %w", err)
	}

	s.logger.Info("Transfer accepted",
		"transaction_id", txn.ID,
		"source_id", sourceID,
		"destination_id", destinationID,
		"amount", amount.String(),
		"correlation_id", correlationID,
	)

	return txn, nil
}

func (s *transferService) GetTransfer(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *transferService) ListTransfers(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error) {
	if _, err := s.directory.Resolve(ctx, accountID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	txns, err := s.repo.ListForAccount(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}

	total, err := s.repo.CountForAccount(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	return txns, total, nil
}
