package amqp

import (
	"encoding/json"
	"time"
)

// EventType names a change to the record collection
type EventType string

const (
	RecordCreated EventType = "record.created"
	RecordUpdated EventType = "record.updated"
	RecordDeleted EventType = "record.deleted"
)

// RecordEventMessage tells consumers that the collection changed and the
// summary for Month should be recomputed. PreviousMonth is set when an update
// moved the record out of another month, whose summary is stale too. It
// carries no record body.
type RecordEventMessage struct {
	Type          EventType `json:"type"`
	RecordID      string    `json:"record_id"`
	Date          string    `json:"date,omitempty"`
	Month         string    `json:"month,omitempty"`
	PreviousMonth string    `json:"previous_month,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewRecordEventMessage(t EventType, id, date, month string) *RecordEventMessage {
	return &RecordEventMessage{
		Type:      t,
		RecordID:  id,
		Date:      date,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

// WithPreviousMonth records the month the record was in before an update.
// It is left empty when the month did not change.
func (m *RecordEventMessage) WithPreviousMonth(month string) *RecordEventMessage {
	if month != m.Month {
		m.PreviousMonth = month
	}
	return m
}

// AffectedMonths lists the months whose summaries the event invalidates
func (m *RecordEventMessage) AffectedMonths() []string {
	var months []string
	for _, month := range []string{m.Month, m.PreviousMonth} {
		if month != "" {
			months = append(months, month)
		}
	}
	return months
}

func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
