package amqp

import (
	"encoding/json"
	"time"
)

// ScanEventMessage announces a completed statement scan. It carries only the
// run id and result counts, consumers fetch the detected entries from the
// database.
type ScanEventMessage struct {
	RunID          string    `json:"run_id"`
	User           string    `json:"user"`
	Periods        int       `json:"periods"`
	RecurringFound int       `json:"recurring_found"`
	OneTimeFound   int       `json:"one_time_found"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewScanEventMessage creates a scan event for a finished run.
func NewScanEventMessage(runID, user string, periods, recurringFound, oneTimeFound int) *ScanEventMessage {
	return &ScanEventMessage{
		RunID:          runID,
		User:           user,
		Periods:        periods,
		RecurringFound: recurringFound,
		OneTimeFound:   oneTimeFound,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ScanEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ScanEventMessageFromJSON creates a message from JSON bytes
func ScanEventMessageFromJSON(data []byte) (*ScanEventMessage, error) {
	var msg ScanEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
