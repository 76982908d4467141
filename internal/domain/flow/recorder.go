package flow

import (
	"context"

	"github.com/google/uuid"
)

// Recorder is the analytics sink for completed transfers.
type Recorder interface {
	Record(ctx context.Context, f *Flow) error
	GetByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Flow, error)
	TotalsByCounterparty(ctx context.Context, accountID uuid.UUID) ([]*CounterpartyTotal, error)
}
