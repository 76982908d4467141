// Package bankclient implements the bank.Gateway contract over the bank
// systems' HTTP APIs. Each bank reference maps to a configured backend base
// URL; every call is bounded by the configured request timeout and any
// failure, including timeout expiry, surfaces as a bank.GatewayError.
package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/bank"
	"github.com/shopspring/decimal"
)

// Client is an HTTP implementation of bank.Gateway
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	backends   map[string]string
}

// legRequest is the payload for opening a debit or credit leg
type legRequest struct {
	AccountID string `json:"account_id"`
	Memo      string `json:"memo"`
	Amount    string `json:"amount"`
}

// legResponse carries the bank's identifier for an opened leg
type legResponse struct {
	LegID string `json:"leg_id"`
}

// errorResponse is the bank systems' error payload
type errorResponse struct {
	Message string `json:"message"`
}

// NewClient creates a bank gateway client for the configured backends
func NewClient(logger *slog.Logger, cfg *config.BanksConfig) *Client {
	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		backends: cfg.Backends,
	}
}

// Debit opens a debit leg against the account's bank and returns the leg ID
func (c *Client) Debit(ctx context.Context, acct *account.Account, memo string, amount decimal.Decimal) (string, error) {
	return c.openLeg(ctx, "debit", acct, memo, amount)
}

// Credit opens a credit leg against the account's bank and returns the leg ID
func (c *Client) Credit(ctx context.Context, acct *account.Account, memo string, amount decimal.Decimal) (string, error) {
	return c.openLeg(ctx, "credit", acct, memo, amount)
}

// Commit finalizes a previously opened leg
func (c *Client) Commit(ctx context.Context, bankRef string, legID string) error {
	return c.finalizeLeg(ctx, "commit", bankRef, legID)
}

// Rollback reverses a previously opened leg
func (c *Client) Rollback(ctx context.Context, bankRef string, legID string) error {
	return c.finalizeLeg(ctx, "rollback", bankRef, legID)
}

func (c *Client) openLeg(ctx context.Context, op string, acct *account.Account, memo string, amount decimal.Decimal) (string, error) {
	baseURL, ok := c.backends[acct.Bank]
	if !ok {
		return "", &bank.GatewayError{Bank: acct.Bank, Op: op, Err: fmt.Errorf("no backend configured for bank %q", acct.Bank)}
	}

	payload, err := json.Marshal(legRequest{
		AccountID: acct.ID.String(),
		Memo:      memo,
		Amount:    amount.String(),
	})
	if err != nil {
		return "", &bank.GatewayError{Bank: acct.Bank, Op: op, Err: err}
	}

	url := fmt.Sprintf("%s/api/v1/legs/%s", baseURL, op)
	body, err := c.post(ctx, url, payload)
	if err != nil {
		c.logger.Error("Bank leg operation failed",
			"bank", acct.Bank,
			"op", op,
			"account_id", acct.ID.String(),
			"error", err,
		)
		return "", &bank.GatewayError{Bank: acct.Bank, Op: op, Err: err}
	}

	var leg legResponse
	if err := json.Unmarshal(body, &leg); err != nil {
		return "", &bank.GatewayError{Bank: acct.Bank, Op: op, Err: fmt.Errorf("failed to decode leg response: %w", err)}
	}
	if leg.LegID == "" {
		return "", &bank.GatewayError{Bank: acct.Bank, Op: op, Err: fmt.Errorf("bank returned an empty leg id")}
	}

	c.logger.Debug("Bank leg opened",
		"bank", acct.Bank,
		"op", op,
		"leg_id", leg.LegID,
	)
	return leg.LegID, nil
}

func (c *Client) finalizeLeg(ctx context.Context, op string, bankRef string, legID string) error {
	baseURL, ok := c.backends[bankRef]
	if !ok {
		return &bank.GatewayError{Bank: bankRef, Op: op, Err: fmt.Errorf("no backend configured for bank %q", bankRef)}
	}

	url := fmt.Sprintf("%s/api/v1/legs/%s/%s", baseURL, legID, op)
	if _, err := c.post(ctx, url, nil); err != nil {
		c.logger.Error("Bank leg finalization failed",
			"bank", bankRef,
			"op", op,
			"leg_id", legID,
			"error", err,
		)
		return &bank.GatewayError{Bank: bankRef, Op: op, Err: err}
	}

	c.logger.Debug("Bank leg finalized",
		"bank", bankRef,
		"op", op,
		"leg_id", legID,
	)
	return nil
}

// post sends the request and returns the response body for 2xx statuses
func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var bankErr errorResponse
		if err := json.Unmarshal(body, &bankErr); err == nil && bankErr.Message != "" {
			return nil, fmt.Errorf("bank returned status %d: %s", resp.StatusCode, bankErr.Message)
		}
		return nil, fmt.Errorf("bank returned status %d", resp.StatusCode)
	}

	return body, nil
}
