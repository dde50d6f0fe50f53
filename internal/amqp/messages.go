package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReceiptScanMessage carries OCR text from the API to the scan worker.
type ReceiptScanMessage struct {
	ScanID      string    `json:"scanId"`
	Text        string    `json:"text"`
	Receipt     *string   `json:"receipt,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewReceiptScanMessage creates a message with a fresh scan id.
func NewReceiptScanMessage(text string, receipt *string) *ReceiptScanMessage {
	return &ReceiptScanMessage{
		ScanID:      uuid.NewString(),
		Text:        text,
		Receipt:     receipt,
		SubmittedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReceiptScanMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptScanMessageFromJSON decodes a message; a missing scan id is an error.
func ReceiptScanMessageFromJSON(data []byte) (*ReceiptScanMessage, error) {
	var msg ReceiptScanMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ScanID == "" {
		return nil, errors.New("missing scan id")
	}
	return &msg, nil
}
