package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrEmptyOwnerName    = errors.New("owner name cannot be empty")
	ErrEmptyBankRef      = errors.New("bank reference cannot be empty")
	ErrNegativeBalance   = errors.New("balance cannot be negative")
)

// Account is a ledger account held at an external bank system. Bank identifies
// which bank gateway backend owns the account.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	OwnerName string          `json:"owner_name"`
	Balance   decimal.Decimal `json:"balance"`
	Bank      string          `json:"bank"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAccount creates a new account held at the given bank.
func NewAccount(ownerName string, balance decimal.Decimal, bank string) (*Account, error) {
	if ownerName == "" {
		return nil, ErrEmptyOwnerName
	}
	if bank == "" {
		return nil, ErrEmptyBankRef
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		OwnerName: ownerName,
		Balance:   balance,
		Bank:      bank,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanCover reports whether the last known balance covers the given amount.
// This is a point-in-time check only; no reservation is held on the balance.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
