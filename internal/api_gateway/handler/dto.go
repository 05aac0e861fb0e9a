package handler

import (
	"time"

	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest represents a request to record a cash book entry.
// Date accepts YYYY-MM-DD or RFC 3339; it defaults to now.
type RecordTransactionRequest struct {
	Date            string          `json:"date,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Status          string          `json:"status,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// SetOpeningBalanceRequest represents a manual opening balance for a date
type SetOpeningBalanceRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// SetAccountBalancesRequest represents the bank and mobile banking figures of a date
type SetAccountBalancesRequest struct {
	BankBalance          *decimal.Decimal `json:"bank_balance" binding:"required"`
	MobileBankingBalance *decimal.Decimal `json:"mobile_banking_balance" binding:"required"`
}

// RangeQuery represents an inclusive date range in query parameters
type RangeQuery struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}

// toInput converts the request into engine input
func (r RecordTransactionRequest) toInput() (ledger.RecordInput, error) {
	input := ledger.RecordInput{
		Name:            r.Name,
		Description:     r.Description,
		Type:            shared.TransactionType(r.Type),
		Category:        r.Category,
		Amount:          r.Amount,
		PaymentMethod:   shared.PaymentMethod(r.PaymentMethod),
		Status:          shared.TransactionStatus(r.Status),
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
	}

	if r.Date == "" {
		return input, nil
	}

	date, err := parseEntryDate(r.Date)
	if err != nil {
		return ledger.RecordInput{}, err
	}
	input.Date = &date
	return input, nil
}

func parseEntryDate(s string) (time.Time, error) {
	if len(s) == len(shared.DateLayout) {
		return shared.ParseDate("date", s)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, shared.ValidationError{Field: "date", Message: "must be YYYY-MM-DD or an RFC 3339 timestamp"}
	}
	return t, nil
}

// parse validates both ends of q
func (q RangeQuery) parse() (time.Time, time.Time, error) {
	start, err := shared.ParseDate("start", q.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := shared.ParseDate("end", q.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
