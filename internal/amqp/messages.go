package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operations carried by change messages.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// ExpenseChangedMessage announces that a ledger row changed. It carries
// only identity and the kind of change; consumers fetch the current row
// from storage, so stale deliveries are harmless.
type ExpenseChangedMessage struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseChangedMessage(id, ownerID, op string) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		ID:        id,
		OwnerID:   ownerID,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("change message without expense id")
	}
	return &msg, nil
}
