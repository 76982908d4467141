// Package bank defines the contract the saga requires from the external bank
// systems. Debit and credit open an in-flight leg and return its identifier;
// commit and rollback finalize or reverse a previously opened leg.
package bank

import (
	"context"

	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/shopspring/decimal"
)

// Gateway performs leg operations against a bank system. The account's Bank
// field selects which backend handles the call.
type Gateway interface {
	Debit(ctx context.Context, acct *account.Account, memo string, amount decimal.Decimal) (string, error)
	Credit(ctx context.Context, acct *account.Account, memo string, amount decimal.Decimal) (string, error)
	Commit(ctx context.Context, bankRef string, legID string) error
	Rollback(ctx context.Context, bankRef string, legID string) error
}

// GatewayError wraps any failure from a bank system. The saga treats every
// gateway error the same way: the current phase panics and compensation runs.
type GatewayError struct {
	Bank string
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	return "bank gateway " + e.Op + " failed at " + e.Bank + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
