package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/interbank-transfer-saga/internal/domain/account"
)

type accountService struct {
	logger    *slog.Logger
	directory account.Directory
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, directory account.Directory) AccountService {
	return &accountService{
		logger:    logger,
		directory: directory,
	}
}

func (s *accountService) CreateAccount(ctx context.Context, ownerName string, initialBalance decimal.Decimal, bankName string) (*account.Account, error) {
	acct, err := account.NewAccount(ownerName, initialBalance, bankName)
	if err != nil {
		return nil, err
	}

	if err := s.directory.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account created",
		"account_id", acct.ID,
		"bank", acct.Bank,
	)

	return acct, nil
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.directory.ResolveWithBalance(ctx, id)
}

func (s *accountService) ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error) {
	offset := (page - 1) * perPage

	accounts, err := s.directory.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.directory.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}
