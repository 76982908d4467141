package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/interbank-transfer-saga/internal/domain/saga"
	"github.com/interbank-transfer-saga/internal/platform/messaging/producers"
	"github.com/interbank-transfer-saga/internal/saga_processor/service"
)

// SagaNotificationHandler handles incoming saga notifications from Kafka
type SagaNotificationHandler struct {
	sagaService service.SagaService
	producer    producers.DeadLetterPublisher
	logger      *slog.Logger
}

// NewSagaNotificationHandler creates a new handler
func NewSagaNotificationHandler(
	logger *slog.Logger,
	sagaService service.SagaService,
	producer producers.DeadLetterPublisher,
) *SagaNotificationHandler {
	return &SagaNotificationHandler{
		sagaService: sagaService,
		producer:    producer,
		logger:      logger,
	}
}

// HandleMessage processes Kafka messages
func (h *SagaNotificationHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var notification saga.Notification
	if err := json.Unmarshal(value, &notification); err != nil {
		return h.sendToDLQ(ctx, key, value, "Failed to unmarshal saga notification from Kafka message", err)
	}

	if err := notification.Validate(); err != nil {
		// A malformed notification never becomes valid; park it instead
		// of redelivering forever.
		return h.sendToDLQ(ctx, key, value, "Invalid saga notification", err)
	}

	logger := h.logger
	if notification.CorrelationID != "" {
		logger = h.logger.With("correlation_id", notification.CorrelationID)
	}

	logger.Info("Received saga notification",
		"transaction_id", notification.TransactionID.String(),
		"kind", notification.Kind,
	)

	if err := h.sagaService.Apply(ctx, &notification); err != nil {
		logger.Error("Failed to apply saga notification",
			"transaction_id", notification.TransactionID.String(),
			"kind", notification.Kind,
			"error", err,
		)
		return fmt.Errorf("applying notification for %s failed: %w", notification.TransactionID.String(), err)
	}

	logger.Info("Successfully applied saga notification",
		"transaction_id", notification.TransactionID.String(),
		"kind", notification.Kind,
	)
	return nil // Success, commit offset
}

func (h *SagaNotificationHandler) sendToDLQ(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
			// Return original error if DLQ fails
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			// Message handled, commit offset
			return nil
		}
	}
	// Allow Kafka retries
	return fmt.Errorf("%s: %w", reason, cause)
}
