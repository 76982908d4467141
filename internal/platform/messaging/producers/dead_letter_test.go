package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: "transfer_saga_notifications_dlq",
		}

		key := "tx-1"
		originalValue := []byte(`{not json`)
		reason := "unmarshal failed"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			var payload map[string]string
			if err := json.Unmarshal(msgs[0].Value, &payload); err != nil {
				return false
			}
			return string(msgs[0].Key) == key &&
				payload["original_key"] == key &&
				payload["original_value"] == string(originalValue) &&
				payload["dlq_reason"] == reason
		})).Return(nil).Once()

		err := producer.PublishToDLQ(ctx, key, originalValue, reason)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("WriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: "transfer_saga_notifications_dlq",
		}

		writerErr := errors.New("kafka write error")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerErr).Once()

		err := producer.PublishToDLQ(ctx, "tx-1", []byte("payload"), "reason")
		require.Error(t, err)
		assert.ErrorIs(t, err, writerErr)
		mockWriter.AssertExpectations(t)
	})

	t.Run("NilReceiverReturnsError", func(t *testing.T) {
		// A typed nil reaches callers when the DLQ is disabled; the call must
		// fail without dereferencing anything.
		var producer *DLQProducer

		err := producer.PublishToDLQ(ctx, "tx-1", []byte("payload"), "disabled")
		require.Error(t, err)
		assert.Equal(t, "DLQ producer not initialized", err.Error())
	})

	t.Run("NilWriterReturnsError", func(t *testing.T) {
		producer := &DLQProducer{logger: logger}

		err := producer.PublishToDLQ(ctx, "tx-1", []byte("payload"), "disabled")
		require.Error(t, err)
		assert.Equal(t, "DLQ producer not initialized", err.Error())
	})
}

func TestDLQProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	t.Run("Success", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{
			logger:   logger,
			writer:   mockWriter,
			dlqTopic: "transfer_saga_notifications_dlq",
		}
		mockWriter.On("Close").Return(nil).Once()

		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("NilReceiverIsNoOp", func(t *testing.T) {
		var producer *DLQProducer
		require.NoError(t, producer.Close())
	})
}
