package balance

import (
	"time"

	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DailyBalance is the cash position of one business date
type DailyBalance struct {
	Date                 time.Time       `json:"date"`
	OpeningBalance       decimal.Decimal `json:"opening_balance"`
	CashIn               decimal.Decimal `json:"cash_in"`
	CashOut              decimal.Decimal `json:"cash_out"`
	ClosingBalance       decimal.Decimal `json:"closing_balance"`
	BankBalance          decimal.Decimal `json:"bank_balance"`
	MobileBankingBalance decimal.Decimal `json:"mobile_banking_balance"`
	Version              int             `json:"version"` // For optimistic locking
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ClosingFor applies the balance equation, floored at zero
func ClosingFor(opening, cashIn, cashOut decimal.Decimal) decimal.Decimal {
	closing := opening.Add(cashIn).Sub(cashOut)
	if closing.IsNegative() {
		return decimal.Zero
	}
	return closing
}

// NewDailyBalance seeds an unsaved row carrying opening forward. Version 0 means not yet stored.
func NewDailyBalance(date time.Time, opening decimal.Decimal, now time.Time) *DailyBalance {
	return &DailyBalance{
		Date:                 shared.TruncateDate(date),
		OpeningBalance:       opening,
		CashIn:               decimal.Zero,
		CashOut:              decimal.Zero,
		ClosingBalance:       opening,
		BankBalance:          decimal.Zero,
		MobileBankingBalance: decimal.Zero,
		Version:              0,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// WouldBe is the read-only row of a date that has not been written yet
func WouldBe(date time.Time, opening, cashIn, cashOut decimal.Decimal) *DailyBalance {
	b := NewDailyBalance(date, opening, time.Time{})
	b.CashIn = cashIn
	b.CashOut = cashOut
	b.ClosingBalance = ClosingFor(opening, cashIn, cashOut)
	return b
}

// OpenWithFloor creates the first row of a date with a manual opening balance.
// floor is the closing balance of the most recent earlier row.
func OpenWithFloor(date time.Time, amount, floor decimal.Decimal, now time.Time) (*DailyBalance, error) {
	if amount.IsNegative() {
		return nil, shared.ValidationError{Field: "amount", Message: "opening balance must not be negative"}
	}
	if amount.LessThan(floor) {
		return nil, shared.ValidationError{
			Field:   "amount",
			Message: "opening balance cannot be less than previous closing balance " + floor.StringFixed(2),
		}
	}

	b := NewDailyBalance(date, amount, now)
	b.Version++
	return b, nil
}

// Reconcile replaces the day's sums and recomputes the closing balance
func (b *DailyBalance) Reconcile(cashIn, cashOut decimal.Decimal, now time.Time) {
	b.CashIn = cashIn
	b.CashOut = cashOut
	b.ClosingBalance = ClosingFor(b.OpeningBalance, cashIn, cashOut)
	b.UpdatedAt = now
	b.Version++
}

// RaiseOpening sets a new opening balance; it may only grow
func (b *DailyBalance) RaiseOpening(amount decimal.Decimal, now time.Time) error {
	if amount.IsNegative() {
		return shared.ValidationError{Field: "amount", Message: "opening balance must not be negative"}
	}
	if amount.LessThan(b.OpeningBalance) {
		return shared.ValidationError{
			Field:   "amount",
			Message: "opening balance can only be increased, current is " + b.OpeningBalance.StringFixed(2),
		}
	}

	b.OpeningBalance = amount
	b.ClosingBalance = ClosingFor(amount, b.CashIn, b.CashOut)
	b.UpdatedAt = now
	b.Version++
	return nil
}

// SetAccountBalances records the bank and mobile banking figures; cash fields are untouched
func (b *DailyBalance) SetAccountBalances(bank, mobile decimal.Decimal, now time.Time) error {
	if bank.IsNegative() {
		return shared.ValidationError{Field: "bank_balance", Message: "must not be negative"}
	}
	if mobile.IsNegative() {
		return shared.ValidationError{Field: "mobile_banking_balance", Message: "must not be negative"}
	}

	b.BankBalance = bank
	b.MobileBankingBalance = mobile
	b.UpdatedAt = now
	b.Version++
	return nil
}

// IsBalanced reports whether the stored closing matches the balance equation
func (b *DailyBalance) IsBalanced() bool {
	return b.ClosingBalance.Equal(ClosingFor(b.OpeningBalance, b.CashIn, b.CashOut))
}

