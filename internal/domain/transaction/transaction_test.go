package transaction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewTransaction(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()

	tests := []struct {
		name        string
		amount      decimal.Decimal
		expectedErr error
	}{
		{
			name:   "valid amount",
			amount: decimal.NewFromInt(100),
		},
		{
			name:        "zero amount",
			amount:      decimal.Zero,
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromInt(-5),
			expectedErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewTransaction(sourceID, destinationID, tt.amount, "rent")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, txn)
				return
			}

			assert.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, txn.ID)
			assert.Equal(t, sourceID, txn.SourceID)
			assert.Equal(t, destinationID, txn.DestinationID)
			assert.Equal(t, StatusPending, txn.Status)
			assert.Nil(t, txn.DebitLegID)
			assert.Nil(t, txn.CreditLegID)
		})
	}
}

func TestTransaction_Phase(t *testing.T) {
	debitLeg := "leg-d1"
	creditLeg := "leg-c1"

	tests := []struct {
		name          string
		status        Status
		debitLegID    *string
		creditLegID   *string
		expectedPhase Phase
	}{
		{
			name:          "pending with no legs",
			status:        StatusPending,
			expectedPhase: PhaseInit,
		},
		{
			name:          "pending with debit leg",
			status:        StatusPending,
			debitLegID:    &debitLeg,
			expectedPhase: PhaseDebited,
		},
		{
			name:          "pending with both legs",
			status:        StatusPending,
			debitLegID:    &debitLeg,
			creditLegID:   &creditLeg,
			expectedPhase: PhaseCredited,
		},
		{
			name:          "approved wins over legs",
			status:        StatusApproved,
			debitLegID:    &debitLeg,
			creditLegID:   &creditLeg,
			expectedPhase: PhaseApproved,
		},
		{
			name:          "rejected wins over legs",
			status:        StatusRejected,
			debitLegID:    &debitLeg,
			expectedPhase: PhaseRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{
				Status:      tt.status,
				DebitLegID:  tt.debitLegID,
				CreditLegID: tt.creditLegID,
			}
			assert.Equal(t, tt.expectedPhase, txn.Phase())
		})
	}
}

func TestTransaction_Finalized(t *testing.T) {
	assert.False(t, (&Transaction{Status: StatusPending}).Finalized())
	assert.True(t, (&Transaction{Status: StatusApproved}).Finalized())
	assert.True(t, (&Transaction{Status: StatusRejected}).Finalized())
}

func TestErrTransactionNotFound_Is(t *testing.T) {
	id := uuid.New()
	err := ErrTransactionNotFound{TransactionID: id}

	assert.ErrorIs(t, err, ErrTransactionNotFound{TransactionID: id})
	assert.ErrorIs(t, err, ErrTransactionNotFound{})
	assert.NotErrorIs(t, err, ErrTransactionNotFound{TransactionID: uuid.New()})
}

func TestErrTransactionFinalized_Is(t *testing.T) {
	id := uuid.New()
	err := ErrTransactionFinalized{TransactionID: id}

	assert.ErrorIs(t, err, ErrTransactionFinalized{TransactionID: id})
	assert.ErrorIs(t, err, ErrTransactionFinalized{})
	assert.NotErrorIs(t, err, ErrTransactionFinalized{TransactionID: uuid.New()})
}
