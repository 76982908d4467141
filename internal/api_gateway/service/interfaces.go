package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/flow"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

// AccountService defines the interface for account registration and lookup
type AccountService interface {
	CreateAccount(ctx context.Context, ownerName string, initialBalance decimal.Decimal, bankName string) (*account.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error)
	ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error)
}

// TransferService defines the interface for starting and inspecting transfers.
// StartTransfer persists a pending record and hands it to the saga; the
// returned transfer reflects the state at acceptance time, not the outcome.
type TransferService interface {
	StartTransfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal, description, correlationID string) (*transaction.Transaction, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	ListTransfers(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error)
}

// FlowService defines the interface for the completed-transfer reporting views
type FlowService interface {
	ListFlows(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*flow.Flow, error)
	CounterpartyTotals(ctx context.Context, accountID uuid.UUID) ([]*flow.CounterpartyTotal, error)
}

// NotificationPublisher publishes saga notifications keyed by transaction ID
type NotificationPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
