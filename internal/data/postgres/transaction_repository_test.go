package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

const selectColumns = `id, source_id, destination_id, amount, description, debit_leg_id, credit_leg_id, status, created_at, updated_at`

func transactionRows(txn *transaction.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "source_id", "destination_id", "amount", "description", "debit_leg_id", "credit_leg_id", "status", "created_at", "updated_at"}).
		AddRow(txn.ID, txn.SourceID, txn.DestinationID, txn.Amount, txn.Description, txn.DebitLegID, txn.CreditLegID, txn.Status, txn.CreatedAt, txn.UpdatedAt)
}

func pendingTransaction() *transaction.Transaction {
	now := time.Now()
	return &transaction.Transaction{
		ID:            uuid.New(),
		SourceID:      uuid.New(),
		DestinationID: uuid.New(),
		Amount:        decimal.NewFromInt(100),
		Description:   "rent",
		Status:        transaction.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := pendingTransaction()

	query := `
		INSERT INTO transactions \(id, source_id, destination_id, amount, description, debit_leg_id, credit_leg_id, status, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.ID, txn.SourceID, txn.DestinationID, txn.Amount, txn.Description, txn.DebitLegID, txn.CreditLegID, txn.Status, txn.CreatedAt, txn.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(txn.ID, txn.SourceID, txn.DestinationID, txn.Amount, txn.Description, txn.DebitLegID, txn.CreditLegID, txn.Status, txn.CreatedAt, txn.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, txn)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := pendingTransaction()

	query := `
		SELECT ` + selectColumns + `
		FROM transactions
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(txn.ID).WillReturnRows(transactionRows(txn))

		got, err := repo.GetByID(ctx, txn.ID)
		assert.NoError(t, err)
		assert.Equal(t, txn.ID, got.ID)
		assert.True(t, got.Amount.Equal(txn.Amount))
		assert.Equal(t, transaction.StatusPending, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		missingID := uuid.New()
		mock.ExpectQuery(query).WithArgs(missingID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, missingID)
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFoundErr transaction.ErrTransactionNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, missingID, notFoundErr.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_UpdateDebitLeg(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := pendingTransaction()
	legID := "leg-d1"

	updateQuery := `
		UPDATE transactions
		SET debit_leg_id = \$1, updated_at = NOW\(\)
		WHERE id = \$2 AND status = \$3
		RETURNING ` + selectColumns

	getQuery := `
		SELECT ` + selectColumns + `
		FROM transactions
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		updated := *txn
		updated.DebitLegID = &legID
		mock.ExpectQuery(updateQuery).
			WithArgs(legID, txn.ID, transaction.StatusPending).
			WillReturnRows(transactionRows(&updated))

		got, err := repo.UpdateDebitLeg(ctx, txn.ID, legID)
		assert.NoError(t, err)
		require.NotNil(t, got.DebitLegID)
		assert.Equal(t, legID, *got.DebitLegID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("finalized record refuses the update", func(t *testing.T) {
		finalized := *txn
		finalized.Status = transaction.StatusRejected

		mock.ExpectQuery(updateQuery).
			WithArgs(legID, txn.ID, transaction.StatusPending).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(getQuery).WithArgs(txn.ID).WillReturnRows(transactionRows(&finalized))

		got, err := repo.UpdateDebitLeg(ctx, txn.ID, legID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, transaction.ErrTransactionFinalized{TransactionID: txn.ID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		mock.ExpectQuery(updateQuery).
			WithArgs(legID, txn.ID, transaction.StatusPending).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(getQuery).WithArgs(txn.ID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.UpdateDebitLeg(ctx, txn.ID, legID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, transaction.ErrTransactionNotFound{TransactionID: txn.ID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	txn := pendingTransaction()

	query := `
		UPDATE transactions
		SET status = \$1, updated_at = NOW\(\)
		WHERE id = \$2 AND status = \$3
		RETURNING ` + selectColumns

	approved := *txn
	approved.Status = transaction.StatusApproved

	mock.ExpectQuery(query).
		WithArgs(transaction.StatusApproved, txn.ID, transaction.StatusPending).
		WillReturnRows(transactionRows(&approved))

	got, err := repo.UpdateStatus(ctx, txn.ID, transaction.StatusApproved)
	assert.NoError(t, err)
	assert.Equal(t, transaction.StatusApproved, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListForAccount(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	accountID := uuid.New()

	first := pendingTransaction()
	second := pendingTransaction()
	first.SourceID = accountID
	second.DestinationID = accountID

	query := `
		SELECT ` + selectColumns + `
		FROM transactions
		WHERE source_id = \$1 OR destination_id = \$1
		ORDER BY created_at DESC
		LIMIT \$2 OFFSET \$3
	`

	rows := transactionRows(first).
		AddRow(second.ID, second.SourceID, second.DestinationID, second.Amount, second.Description, second.DebitLegID, second.CreditLegID, second.Status, second.CreatedAt, second.UpdatedAt)

	mock.ExpectQuery(query).WithArgs(accountID, 10, 0).WillReturnRows(rows)

	got, err := repo.ListForAccount(ctx, accountID, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListStuckPending(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	cutoff := time.Now().Add(-time.Hour)
	stuck := pendingTransaction()

	query := `
		SELECT ` + selectColumns + `
		FROM transactions
		WHERE status = \$1 AND updated_at < \$2
		ORDER BY updated_at ASC
		LIMIT \$3
	`

	mock.ExpectQuery(query).
		WithArgs(transaction.StatusPending, cutoff, 50).
		WillReturnRows(transactionRows(stuck))

	got, err := repo.ListStuckPending(ctx, cutoff, 50)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, stuck.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
