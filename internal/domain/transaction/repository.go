package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines transfer persistence operations. Records are append-only:
// the update methods mutate single fields of pending transfers and must refuse
// to touch a finalized record.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// UpdateDebitLeg and UpdateCreditLeg record the external bank leg ID for
	// the corresponding phase and return the updated record.
	UpdateDebitLeg(ctx context.Context, id uuid.UUID, legID string) (*Transaction, error)
	UpdateCreditLeg(ctx context.Context, id uuid.UUID, legID string) (*Transaction, error)

	// UpdateStatus moves a pending transfer to a terminal status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Transaction, error)

	ListForAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountForAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	// ListStuckPending returns pending transfers last touched before the cutoff,
	// typically left behind by a failed rollback.
	ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]*Transaction, error)
}

// ErrTransactionNotFound indicates a missing transfer record
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// Is matches any ErrTransactionNotFound when the target carries a nil ID
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrTransactionFinalized indicates an attempted mutation of a terminal record.
// This is an invariant violation, not a retryable condition.
type ErrTransactionFinalized struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionFinalized) Error() string {
	return "transaction already finalized: " + e.TransactionID.String()
}

// Is matches any ErrTransactionFinalized when the target carries a nil ID
func (e ErrTransactionFinalized) Is(target error) bool {
	t, ok := target.(ErrTransactionFinalized)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
