package amqp

import (
	"encoding/json"
	"time"
)

// ReviewRequestMessage asks a human to look at a near-duplicate group.
// It carries only ids plus the grouping key; reviewers fetch full records
// from the store.
type ReviewRequestMessage struct {
	GroupDate      string    `json:"group_date"`
	GroupAmount    string    `json:"group_amount"`
	TransactionIDs []string  `json:"transaction_ids"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}

// ResolutionMessage is a confirmed decision coming back from review:
// delete these ids. Unconfirmed messages are acknowledged and ignored.
type ResolutionMessage struct {
	RemoveIDs []string  `json:"remove_ids"`
	Confirmed bool      `json:"confirmed"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReviewRequestMessage(date, amount string, ids []string, reason string) *ReviewRequestMessage {
	return &ReviewRequestMessage{
		GroupDate:      date,
		GroupAmount:    amount,
		TransactionIDs: ids,
		Reason:         reason,
		Timestamp:      time.Now(),
	}
}

func (m *ReviewRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *ResolutionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ResolutionMessageFromJSON(data []byte) (*ResolutionMessage, error) {
	var msg ResolutionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
