package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interbank-transfer-saga/internal/domain/account"
)

func testAccount() *account.Account {
	now := time.Now()
	return &account.Account{
		ID:        uuid.New(),
		OwnerName: "Alice",
		Balance:   decimal.NewFromInt(500),
		Bank:      "alpha",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAccountDirectory_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dir := &AccountDirectory{querier: mock, logger: newTestLogger()}
	acct := testAccount()

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(acct.ID, acct.OwnerName, acct.Balance, acct.Bank, acct.CreatedAt, acct.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, dir.Create(ctx, acct))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountDirectory_Resolve(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dir := &AccountDirectory{querier: mock, logger: newTestLogger()}
	acct := testAccount()

	query := `
		SELECT id, owner_name, bank, created_at, updated_at
		FROM accounts
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "owner_name", "bank", "created_at", "updated_at"}).
			AddRow(acct.ID, acct.OwnerName, acct.Bank, acct.CreatedAt, acct.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(acct.ID).WillReturnRows(rows)

		got, err := dir.Resolve(ctx, acct.ID)
		assert.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
		assert.Equal(t, "alpha", got.Bank)
		// Resolve skips the balance column
		assert.True(t, got.Balance.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		missingID := uuid.New()
		mock.ExpectQuery(query).WithArgs(missingID).WillReturnError(pgx.ErrNoRows)

		got, err := dir.Resolve(ctx, missingID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{AccountID: missingID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountDirectory_ResolveWithBalance(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dir := &AccountDirectory{querier: mock, logger: newTestLogger()}
	acct := testAccount()

	query := `
		SELECT id, owner_name, balance, bank, created_at, updated_at
		FROM accounts
		WHERE id = \$1
	`

	rows := pgxmock.NewRows([]string{"id", "owner_name", "balance", "bank", "created_at", "updated_at"}).
		AddRow(acct.ID, acct.OwnerName, acct.Balance, acct.Bank, acct.CreatedAt, acct.UpdatedAt)
	mock.ExpectQuery(query).WithArgs(acct.ID).WillReturnRows(rows)

	got, err := dir.ResolveWithBalance(ctx, acct.ID)
	assert.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountDirectory_List(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dir := &AccountDirectory{querier: mock, logger: newTestLogger()}
	first := testAccount()
	second := testAccount()

	query := `
		SELECT id, owner_name, balance, bank, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
		LIMIT \$1 OFFSET \$2
	`

	rows := pgxmock.NewRows([]string{"id", "owner_name", "balance", "bank", "created_at", "updated_at"}).
		AddRow(first.ID, first.OwnerName, first.Balance, first.Bank, first.CreatedAt, first.UpdatedAt).
		AddRow(second.ID, second.OwnerName, second.Balance, second.Bank, second.CreatedAt, second.UpdatedAt)
	mock.ExpectQuery(query).WithArgs(10, 0).WillReturnRows(rows)

	got, err := dir.List(ctx, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountDirectory_Count(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dir := &AccountDirectory{querier: mock, logger: newTestLogger()}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM accounts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := dir.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
