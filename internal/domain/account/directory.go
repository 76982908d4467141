package account

import (
	"context"

	"github.com/google/uuid"
)

// Directory resolves accounts to their owning bank system and, on demand,
// their current balance snapshot.
type Directory interface {
	Create(ctx context.Context, acct *Account) error

	// Resolve returns the account without a balance read. Use it where only
	// the bank reference is needed.
	Resolve(ctx context.Context, id uuid.UUID) (*Account, error)

	// ResolveWithBalance returns the account with its current balance snapshot.
	ResolveWithBalance(ctx context.Context, id uuid.UUID) (*Account, error)

	// List returns registered accounts with balance snapshots, newest first.
	List(ctx context.Context, limit, offset int) ([]*Account, error)

	// Count returns the total number of registered accounts.
	Count(ctx context.Context) (int64, error)
}

// ErrAccountNotFound indicates a missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries a nil ID
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}
