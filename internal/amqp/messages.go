package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"demowallet/internal/core"
)

// TransactionMessage wraps a transaction event for the broker.
type TransactionMessage struct {
	MessageID   string    `json:"message_id"`
	PublishedAt time.Time `json:"published_at"`
	core.TransactionEvent
}

// NewTransactionMessage stamps the event with a fresh message ID.
func NewTransactionMessage(ev core.TransactionEvent, now time.Time) *TransactionMessage {
	return &TransactionMessage{
		MessageID:        uuid.NewString(),
		PublishedAt:      now.UTC(),
		TransactionEvent: ev,
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON decodes and sanity-checks a message body.
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.MessageID == "" {
		return nil, errors.New("message id missing")
	}
	if err := msg.Kind.Validate(); err != nil {
		return nil, err
	}
	if msg.AccountID == "" {
		return nil, core.ErrEmptyAccountID
	}
	return &msg, nil
}
