package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/flow"
)

type flowService struct {
	logger    *slog.Logger
	recorder  flow.Recorder
	directory account.Directory
}

// NewFlowService creates a new flow reporting service
func NewFlowService(logger *slog.Logger, recorder flow.Recorder, directory account.Directory) FlowService {
	return &flowService{
		logger:    logger,
		recorder:  recorder,
		directory: directory,
	}
}

func (s *flowService) ListFlows(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*flow.Flow, error) {
	if _, err := s.directory.Resolve(ctx, accountID); err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage

	flows, err := s.recorder.GetByAccount(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	return flows, nil
}

func (s *flowService) CounterpartyTotals(ctx context.Context, accountID uuid.UUID) ([]*flow.CounterpartyTotal, error) {
	if _, err := s.directory.Resolve(ctx, accountID); err != nil {
		return nil, err
	}

	totals, err := s.recorder.TotalsByCounterparty(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate flows: %w", err)
	}

	return totals, nil
}
