package flow

import (
	"time"

	"github.com/google/uuid"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Flow is a transfer as recorded for analytics once its commit was attempted,
// whether it was approved or sent to rollback. Recording is best-effort: a
// failure to record never affects the saga outcome.
type Flow struct {
	TransactionID uuid.UUID       `json:"transaction_id" bson:"transaction_id"`
	SourceID      uuid.UUID       `json:"source_id" bson:"source_id"`
	DestinationID uuid.UUID       `json:"destination_id" bson:"destination_id"`
	Amount        decimal.Decimal `json:"amount" bson:"amount"`
	Description   string          `json:"description" bson:"description"`
	CompletedAt   time.Time       `json:"completed_at" bson:"completed_at"`
}

// FromTransaction builds the flow record for a committed transfer.
func FromTransaction(txn *transaction.Transaction) *Flow {
	return &Flow{
		TransactionID: txn.ID,
		SourceID:      txn.SourceID,
		DestinationID: txn.DestinationID,
		Amount:        txn.Amount,
		Description:   txn.Description,
		CompletedAt:   time.Now(),
	}
}

// CounterpartyTotal aggregates the volume moved between an account and one
// counterparty, in both directions.
type CounterpartyTotal struct {
	CounterpartyID uuid.UUID       `json:"counterparty_id" bson:"_id"`
	Sent           decimal.Decimal `json:"sent" bson:"sent"`
	Received       decimal.Decimal `json:"received" bson:"received"`
	Transfers      int64           `json:"transfers" bson:"transfers"`
}
