package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseChangedMessage(t *testing.T) {
	msg := NewExpenseChangedMessage("e-1", "owner-1", OpCreated)

	if msg.ID != "e-1" {
		t.Errorf("ID = %q, want e-1", msg.ID)
	}
	if msg.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want owner-1", msg.OwnerID)
	}
	if msg.Op != OpCreated {
		t.Errorf("Op = %q, want %q", msg.Op, OpCreated)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseChangedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &ExpenseChangedMessage{
		ID:        "e-9",
		OwnerID:   "owner-3",
		Op:        OpDeleted,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseChangedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExpenseChangedMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if parsed.Op != msg.Op {
		t.Errorf("Parsed Op = %v, want %v", parsed.Op, msg.Op)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestExpenseChangedMessage_Invalid(t *testing.T) {
	if _, err := ExpenseChangedMessageFromJSON([]byte(`{"op": 5}`)); err == nil {
		t.Error("should fail on malformed JSON")
	}
	if _, err := ExpenseChangedMessageFromJSON([]byte(`{"op": "created"}`)); err == nil {
		t.Error("should fail when the expense id is missing")
	}
}
