// Package postgres provides PostgreSQL implementations of the domain
// repositories. The transactions table is the saga's single source of truth:
// every update statement guards on PENDING status so a finalized record can
// never be mutated again.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
	"github.com/interbank-transfer-saga/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, source_id, destination_id, amount, description, debit_leg_id, credit_leg_id, status, created_at, updated_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transfer repository.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transfer record
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, source_id, destination_id, amount, description, debit_leg_id, credit_leg_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.SourceID,
		txn.DestinationID,
		txn.Amount,
		txn.Description,
		txn.DebitLegID,
		txn.CreditLegID,
		txn.Status,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := r.scanRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// UpdateDebitLeg records the debit leg ID for a pending transfer and returns
// the updated record.
func (r *TransactionRepository) UpdateDebitLeg(ctx context.Context, id uuid.UUID, legID string) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET debit_leg_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + transactionColumns

	return r.updatePending(ctx, id, "debit leg", query, legID, id, transaction.StatusPending)
}

// UpdateCreditLeg records the credit leg ID for a pending transfer and returns
// the updated record.
func (r *TransactionRepository) UpdateCreditLeg(ctx context.Context, id uuid.UUID, legID string) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET credit_leg_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + transactionColumns

	return r.updatePending(ctx, id, "credit leg", query, legID, id, transaction.StatusPending)
}

// UpdateStatus moves a pending transfer to the given status and returns the
// updated record.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + transactionColumns

	return r.updatePending(ctx, id, "status", query, status, id, transaction.StatusPending)
}

// updatePending runs an update that only matches pending records. A miss on a
// record that does exist means the record was already finalized.
func (r *TransactionRepository) updatePending(ctx context.Context, id uuid.UUID, field, query string, args ...interface{}) (*transaction.Transaction, error) {
	txn, err := r.scanRow(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return txn, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to update transaction "+field, "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to update transaction %s: %w", field, err)
	}

	// Distinguish a missing record from a finalized one
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Finalized() {
		return nil, transaction.ErrTransactionFinalized{TransactionID: id}
	}
	return nil, fmt.Errorf("failed to update transaction %s for %s: no rows affected", field, id.String())
}

// ListForAccount retrieves transfers where the account is either side,
// newest first.
func (r *TransactionRepository) ListForAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_id = $1 OR destination_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// CountForAccount counts the transfers where the account is either side
func (r *TransactionRepository) CountForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE source_id = $1 OR destination_id = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// ListStuckPending retrieves pending transfers last touched before the cutoff,
// oldest first.
func (r *TransactionRepository) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, transaction.StatusPending, cutoff, limit)
	if err != nil {
		r.logger.Error("Failed to list stuck pending transactions", "error", err)
		return nil, fmt.Errorf("failed to list stuck pending transactions: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *TransactionRepository) scanRow(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.SourceID,
		&txn.DestinationID,
		&txn.Amount,
		&txn.Description,
		&txn.DebitLegID,
		&txn.CreditLegID,
		&txn.Status,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var txns []*transaction.Transaction
	for rows.Next() {
		txn, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return txns, nil
}
