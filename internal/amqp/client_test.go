package amqp

import (
	"testing"
	"time"
)

func TestNewScanEventMessage(t *testing.T) {
	msg := NewScanEventMessage("run-42", "alice", 3, 2, 5)

	if msg.RunID != "run-42" {
		t.Errorf("NewScanEventMessage() RunID = %v, want run-42", msg.RunID)
	}
	if msg.User != "alice" {
		t.Errorf("NewScanEventMessage() User = %v, want alice", msg.User)
	}
	if msg.Periods != 3 || msg.RecurringFound != 2 || msg.OneTimeFound != 5 {
		t.Errorf("NewScanEventMessage() counts = %d/%d/%d, want 3/2/5",
			msg.Periods, msg.RecurringFound, msg.OneTimeFound)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewScanEventMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewScanEventMessage() Timestamp should be recent")
	}
}

func TestScanEventMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &ScanEventMessage{
		RunID:          "run-42",
		User:           "alice",
		Periods:        3,
		RecurringFound: 2,
		OneTimeFound:   5,
		Timestamp:      timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := ScanEventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ScanEventMessageFromJSON() error = %v", err)
	}

	if parsedMsg.RunID != msg.RunID {
		t.Errorf("Parsed RunID = %v, want %v", parsedMsg.RunID, msg.RunID)
	}
	if parsedMsg.RecurringFound != msg.RecurringFound {
		t.Errorf("Parsed RecurringFound = %v, want %v", parsedMsg.RecurringFound, msg.RecurringFound)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestScanEventMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"run_id": 5, "periods": "three"}`)

	_, err := ScanEventMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("ScanEventMessageFromJSON() should fail with invalid JSON")
	}
}
