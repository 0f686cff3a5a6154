package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a ledger change.
type EventType string

const (
	EventTransactionAdded   EventType = "transaction.added"
	EventTransactionRemoved EventType = "transaction.removed"
)

// LedgerEventMessage is a lightweight notification that the ledger changed.
// It carries only the transaction id; consumers that need more read the ledger.
type LedgerEventMessage struct {
	EventID       string    `json:"event_id"`
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event with a fresh id.
func NewLedgerEventMessage(eventType EventType, transactionID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		EventID:       uuid.NewString(),
		Type:          eventType,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
