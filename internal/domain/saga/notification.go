// Package saga defines the notifications that drive the transfer saga between
// phases. A notification is a pure trigger: it carries only the transaction ID
// and handlers must re-read the transaction store for current state.
package saga

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownKind = errors.New("unknown saga notification kind")

// Kind identifies which saga phase just completed (or failed, for Panic).
type Kind string

const (
	KindInit            Kind = "INIT"
	KindDebitCompleted  Kind = "DEBIT_COMPLETED"
	KindCreditCompleted Kind = "CREDIT_COMPLETED"
	KindPanic           Kind = "PANIC"
)

// Notification is the message published to the saga topic. Delivery is
// at-least-once and unordered across retries; the payload is deliberately
// minimal so a stale or duplicated delivery cannot carry stale data.
type Notification struct {
	Kind          Kind      `json:"kind"`
	TransactionID uuid.UUID `json:"transaction_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewNotification creates a notification for the given phase and transfer.
func NewNotification(kind Kind, transactionID uuid.UUID, correlationID string) Notification {
	return Notification{
		Kind:          kind,
		TransactionID: transactionID,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks the notification carries a known kind and a transaction ID.
func (n Notification) Validate() error {
	switch n.Kind {
	case KindInit, KindDebitCompleted, KindCreditCompleted, KindPanic:
	default:
		return ErrUnknownKind
	}
	if n.TransactionID == uuid.Nil {
		return errors.New("notification is missing a transaction id")
	}
	return nil
}
