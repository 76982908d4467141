package bankclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/bank"
)

func newTestClient(backends map[string]string) *Client {
	return NewClient(slog.Default(), &config.BanksConfig{
		Backends:       backends,
		RequestTimeout: 5 * time.Second,
	})
}

func TestClient_Debit(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), OwnerName: "Alice", Bank: "alpha"}
	amount := decimal.RequireFromString("100.50")

	var gotRequest legRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/legs/debit", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(legResponse{LegID: "leg-d1"})
	}))
	defer server.Close()

	client := newTestClient(map[string]string{"alpha": server.URL})

	legID, err := client.Debit(context.Background(), acct, "transfer to rent", amount)

	assert.NoError(t, err)
	assert.Equal(t, "leg-d1", legID)
	assert.Equal(t, acct.ID.String(), gotRequest.AccountID)
	assert.Equal(t, "transfer to rent", gotRequest.Memo)
	assert.Equal(t, "100.5", gotRequest.Amount)
}

func TestClient_Credit_BankError(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), OwnerName: "Bob", Bank: "beta"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{Message: "account frozen"})
	}))
	defer server.Close()

	client := newTestClient(map[string]string{"beta": server.URL})

	legID, err := client.Credit(context.Background(), acct, "transfer from rent", decimal.NewFromInt(10))

	assert.Empty(t, legID)
	var gatewayErr *bank.GatewayError
	assert.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, "beta", gatewayErr.Bank)
	assert.Equal(t, "credit", gatewayErr.Op)
	assert.Contains(t, err.Error(), "account frozen")
}

func TestClient_CommitAndRollback(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(map[string]string{"alpha": server.URL})

	assert.NoError(t, client.Commit(context.Background(), "alpha", "leg-d1"))
	assert.NoError(t, client.Rollback(context.Background(), "alpha", "leg-d1"))

	assert.Equal(t, []string{
		"/api/v1/legs/leg-d1/commit",
		"/api/v1/legs/leg-d1/rollback",
	}, gotPaths)
}

func TestClient_UnknownBank(t *testing.T) {
	client := newTestClient(map[string]string{"alpha": "http://localhost:9101"})

	err := client.Commit(context.Background(), "gamma", "leg-1")

	var gatewayErr *bank.GatewayError
	assert.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, "gamma", gatewayErr.Bank)
	assert.Contains(t, err.Error(), "no backend configured")
}

func TestClient_EmptyLegID(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), OwnerName: "Alice", Bank: "alpha"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(legResponse{})
	}))
	defer server.Close()

	client := newTestClient(map[string]string{"alpha": server.URL})

	_, err := client.Debit(context.Background(), acct, "memo", decimal.NewFromInt(1))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty leg id")
}
