package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates a zero or negative transfer amount
var ErrInvalidAmount = errors.New("transfer amount must be positive")

// Status defines the lifecycle states of a transfer. Pending transfers are
// still moving through the saga; Approved and Rejected are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Phase is the saga phase of a transfer. It is never persisted; it is derived
// from the status and the presence of the bank leg identifiers, so a handler
// resuming work after a redelivered notification sees exactly what has already
// happened regardless of which handler ran last.
type Phase string

const (
	PhaseInit     Phase = "INIT"
	PhaseDebited  Phase = "DEBITED"
	PhaseCredited Phase = "CREDITED"
	PhaseApproved Phase = "APPROVED"
	PhaseRejected Phase = "REJECTED"
)

// Transaction represents a single money transfer between two accounts.
// The debit and credit leg IDs reference the in-flight operations at the
// external bank systems and are nil until the corresponding phase succeeds.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	SourceID      uuid.UUID       `json:"source_id"`
	DestinationID uuid.UUID       `json:"destination_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	DebitLegID    *string         `json:"debit_leg_id,omitempty"`
	CreditLegID   *string         `json:"credit_leg_id,omitempty"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTransaction creates a pending transfer with no bank legs recorded yet.
func NewTransaction(sourceID, destinationID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Transaction{
		ID:            uuid.New(),
		SourceID:      sourceID,
		DestinationID: destinationID,
		Amount:        amount,
		Description:   description,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Phase reconstructs the saga phase from the observable fields.
func (t *Transaction) Phase() Phase {
	switch t.Status {
	case StatusApproved:
		return PhaseApproved
	case StatusRejected:
		return PhaseRejected
	}

	switch {
	case t.CreditLegID != nil:
		return PhaseCredited
	case t.DebitLegID != nil:
		return PhaseDebited
	default:
		return PhaseInit
	}
}

// Finalized reports whether the transfer has reached a terminal status.
func (t *Transaction) Finalized() bool {
	return t.Status == StatusApproved || t.Status == StatusRejected
}
