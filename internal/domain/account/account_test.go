package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name        string
		ownerName   string
		balance     decimal.Decimal
		bank        string
		expectedErr error
	}{
		{
			name:      "valid account",
			ownerName: "Alice",
			balance:   decimal.NewFromInt(500),
			bank:      "alpha",
		},
		{
			name:      "zero balance is allowed",
			ownerName: "Bob",
			balance:   decimal.Zero,
			bank:      "beta",
		},
		{
			name:        "empty owner name",
			balance:     decimal.NewFromInt(100),
			bank:        "alpha",
			expectedErr: ErrEmptyOwnerName,
		},
		{
			name:        "empty bank reference",
			ownerName:   "Alice",
			balance:     decimal.NewFromInt(100),
			expectedErr: ErrEmptyBankRef,
		},
		{
			name:        "negative balance",
			ownerName:   "Alice",
			balance:     decimal.NewFromInt(-1),
			bank:        "alpha",
			expectedErr: ErrNegativeBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := NewAccount(tt.ownerName, tt.balance, tt.bank)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, acct)
				return
			}

			assert.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, acct.ID)
			assert.Equal(t, tt.ownerName, acct.OwnerName)
			assert.Equal(t, tt.bank, acct.Bank)
			assert.True(t, acct.Balance.Equal(tt.balance))
		})
	}
}

func TestAccount_CanCover(t *testing.T) {
	acct := &Account{Balance: decimal.NewFromInt(100)}

	assert.True(t, acct.CanCover(decimal.NewFromInt(100)))
	assert.True(t, acct.CanCover(decimal.NewFromInt(50)))
	assert.False(t, acct.CanCover(decimal.NewFromInt(101)))
}

func TestErrAccountNotFound_Is(t *testing.T) {
	id := uuid.New()
	err := ErrAccountNotFound{AccountID: id}

	assert.ErrorIs(t, err, ErrAccountNotFound{AccountID: id})
	assert.ErrorIs(t, err, ErrAccountNotFound{})
	assert.NotErrorIs(t, err, ErrAccountNotFound{AccountID: uuid.New()})
}
