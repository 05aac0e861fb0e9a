package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Transaction is a single cash book entry. It is append-only once stored.
type Transaction struct {
	ID              uuid.UUID                `json:"id"`
	VoucherNumber   string                   `json:"voucher_number"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	Date            time.Time                `json:"date"`          // instant the entry happened, kept for ordering
	BusinessDate    time.Time                `json:"business_date"` // calendar date the entry is reconciled under
	Type            shared.TransactionType   `json:"type"`
	Category        string                   `json:"category"`
	Amount          decimal.Decimal          `json:"amount"`
	PaymentMethod   shared.PaymentMethod     `json:"payment_method"`
	Status          shared.TransactionStatus `json:"status"`
	ReferenceNumber string                   `json:"reference_number,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	AmountInWords   string                   `json:"amount_in_words"`
	CreatedAt       time.Time                `json:"created_at"`
}

// RecordInput carries the caller-supplied fields of a new entry
type RecordInput struct {
	Date            *time.Time
	Name            string
	Description     string
	Type            shared.TransactionType
	Category        string
	Amount          decimal.Decimal
	PaymentMethod   shared.PaymentMethod
	Status          shared.TransactionStatus
	ReferenceNumber string
	Notes           string
}

// NewTransaction builds an unsaved entry from validated input.
// An explicit date keeps its own calendar date; a missing one defaults to now in loc.
// VoucherNumber and AmountInWords are assigned by the writer.
func NewTransaction(input RecordInput, now time.Time, loc *time.Location) *Transaction {
	date := now
	businessDate := shared.BusinessDate(now, loc)
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
		businessDate = shared.TruncateDate(date)
	}

	method := input.PaymentMethod
	if method == "" {
		method = shared.PaymentMethodCash
	}
	status := input.Status
	if status == "" {
		status = shared.TransactionStatusCompleted
	}

	return &Transaction{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     input.Description,
		Date:            date,
		BusinessDate:    businessDate,
		Type:            input.Type,
		Category:        input.Category,
		Amount:          input.Amount,
		PaymentMethod:   method,
		Status:          status,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
		CreatedAt:       now,
	}
}
