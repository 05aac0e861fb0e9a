package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// Event is the cash book change fanned out to the read model.
// DailyBalance is the row as committed; Transaction is set for recorded entries only.
type Event struct {
	ID            uuid.UUID             `json:"id"`
	Type          shared.EventType      `json:"type"`
	BusinessDate  time.Time             `json:"business_date"`
	CorrelationID string                `json:"correlation_id,omitempty"`
	Transaction   *ledger.Transaction   `json:"transaction,omitempty"`
	DailyBalance  *balance.DailyBalance `json:"daily_balance"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// NewEvent builds an event for a committed daily balance row
func NewEvent(eventType shared.EventType, correlationID string, txn *ledger.Transaction, row *balance.DailyBalance) *Event {
	return &Event{
		ID:            uuid.New(),
		Type:          eventType,
		BusinessDate:  row.Date,
		CorrelationID: correlationID,
		Transaction:   txn,
		DailyBalance:  row,
		OccurredAt:    time.Now(),
	}
}

// Key is the partition key; events of one date stay ordered on one partition
func (e *Event) Key() string {
	return shared.FormatDate(e.BusinessDate)
}
