package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"expensek/internal/core"
)

// TransactionRecordedMessage announces a persisted transaction. It carries
// enough to log the event; consumers re-read storage for anything else.
type TransactionRecordedMessage struct {
	ID         int64     `json:"id"`
	Date       string    `json:"date"`
	Amount     int64     `json:"amount"`
	CategoryID int64     `json:"categoryId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:         t.ID,
		Date:       core.Day(t.Date).Format("2006-01-02"),
		Amount:     t.Amount,
		CategoryID: t.CategoryID,
		Timestamp:  time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes a message and rejects payloads
// without an id.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, errors.New("message has no transaction id")
	}
	return &msg, nil
}
