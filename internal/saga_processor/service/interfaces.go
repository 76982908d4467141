package service

import (
	"context"

	"github.com/interbank-transfer-saga/internal/domain/saga"
)

// SagaService applies one saga notification to its transfer. Implementations
// must tolerate redelivered and reordered notifications.
type SagaService interface {
	Apply(ctx context.Context, notification *saga.Notification) error
}

// NotificationPublisher publishes saga notifications keyed by transaction ID
type NotificationPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
