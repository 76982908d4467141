package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// AccountDirectory implements the account.Directory interface for PostgreSQL.
// The balance column is a snapshot maintained by the bank systems; the saga
// only reads it for the funds check in start.
type AccountDirectory struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountDirectory creates a new PostgreSQL account directory
func NewAccountDirectory(logger *slog.Logger, db *persistence.PostgresDB) account.Directory {
	return &AccountDirectory{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new account
func (d *AccountDirectory) Create(ctx context.Context, acct *account.Account) error {
	query := `
		INSERT INTO accounts (id, owner_name, balance, bank, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := d.querier.Exec(ctx, query,
		acct.ID,
		acct.OwnerName,
		acct.Balance,
		acct.Bank,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		d.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Resolve returns the account without reading its balance
func (d *AccountDirectory) Resolve(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, owner_name, bank, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acct account.Account
	err := d.querier.QueryRow(ctx, query, id).Scan(
		&acct.ID,
		&acct.OwnerName,
		&acct.Bank,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		d.logger.Error("Failed to resolve account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	return &acct, nil
}

// List returns registered accounts, newest first
func (d *AccountDirectory) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	query := `
		SELECT id, owner_name, balance, bank, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := d.querier.Query(ctx, query, limit, offset)
	if err != nil {
		d.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		var acct account.Account
		if err := rows.Scan(
			&acct.ID,
			&acct.OwnerName,
			&acct.Balance,
			&acct.Bank,
			&acct.CreatedAt,
			&acct.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, &acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}

	return accounts, nil
}

// Count returns the total number of registered accounts
func (d *AccountDirectory) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.querier.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		d.logger.Error("Failed to count accounts", "error", err)
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// ResolveWithBalance returns the account with its current balance snapshot
func (d *AccountDirectory) ResolveWithBalance(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, owner_name, balance, bank, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acct account.Account
	err := d.querier.QueryRow(ctx, query, id).Scan(
		&acct.ID,
		&acct.OwnerName,
		&acct.Balance,
		&acct.Bank,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		d.logger.Error("Failed to resolve account with balance", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to resolve account with balance: %w", err)
	}

	return &acct, nil
}
