package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// Message stores a cash book event for reliable publishing
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	EventType     shared.EventType    `json:"event_type"`
	BusinessDate  time.Time           `json:"business_date"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:      event.ID,
		EventType:    event.Type,
		BusinessDate: event.BusinessDate,
		Payload:      payload,
		Status:       shared.OutboxStatusPending,
		Attempts:     0,
		CreatedAt:    time.Now(),
	}, nil
}

// Key is the partition key the message is published under
func (m *Message) Key() string {
	return shared.FormatDate(m.BusinessDate)
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEvent decodes the stored event
func (m *Message) GetEvent() (*Event, error) {
	var event Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
