package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/interbank-transfer-saga/internal/config"
	"github.com/segmentio/kafka-go"
)

// SagaNotificationProducer publishes saga notifications to the saga topic.
// Messages are keyed by transaction ID and hashed to a partition, so all
// notifications of one transfer land on the same partition in emit order.
// Writes are synchronous: a notification must not be considered emitted until
// the broker has acknowledged it.
type SagaNotificationProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewSagaNotificationProducer creates a saga producer and ensures the topic exists
func NewSagaNotificationProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SagaNotificationProducer, error) {
	if cfg.SagaTopic == "" {
		return nil, fmt.Errorf("kafka saga topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for saga producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.SagaTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure saga topic %s exists: %w", cfg.SagaTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.SagaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &SagaNotificationProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SagaTopic,
	}, nil
}

func (p *SagaNotificationProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal saga notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish saga notification",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish saga notification to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published saga notification",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *SagaNotificationProducer) Close() error {
	p.logger.Info("Closing saga Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close saga kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
