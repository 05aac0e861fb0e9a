// Package report holds the read-only projections of the cash book that
// summaries, the HTTP API and spreadsheet exports are built from.
package report

import (
	"sort"
	"time"

	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CategoryTotal sums the entries of one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// DailySummary is one business date with its entries.
// Persisted is false when DailyBalance was derived without a stored row.
type DailySummary struct {
	DailyBalance      *balance.DailyBalance `json:"daily_balance"`
	Persisted         bool                  `json:"persisted"`
	Transactions      []*ledger.Transaction `json:"transactions"`
	IncomeByCategory  []CategoryTotal       `json:"income_by_category"`
	ExpenseByCategory []CategoryTotal       `json:"expense_by_category"`
	TotalIncome       decimal.Decimal       `json:"total_income"`
	TotalExpense      decimal.Decimal       `json:"total_expense"`
}

// Totals aggregates a date range
type Totals struct {
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	Transfer         decimal.Decimal `json:"transfer"`
	Net              decimal.Decimal `json:"net"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	TransactionCount int             `json:"transaction_count"`
}

// RangeSummary is the projection consumed by monthly and yearly reports and exports
type RangeSummary struct {
	Start             time.Time               `json:"start"`
	End               time.Time               `json:"end"`
	Transactions      []*ledger.Transaction   `json:"transactions"`
	DailyBalances     []*balance.DailyBalance `json:"daily_balances"`
	IncomeByCategory  []CategoryTotal         `json:"income_by_category"`
	ExpenseByCategory []CategoryTotal         `json:"expense_by_category"`
	Totals            Totals                  `json:"totals"`
}

// SumByType adds up the amounts of entries of type t
func SumByType(txns []*ledger.Transaction, t shared.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range txns {
		if txn.Type == t {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum
}

// CategoryTotals groups entries of type t by category, sorted by category name
func CategoryTotals(txns []*ledger.Transaction, t shared.TransactionType) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)

	for _, txn := range txns {
		if txn.Type != t {
			continue
		}
		i, ok := index[txn.Category]
		if !ok {
			i = len(totals)
			index[txn.Category] = i
			totals = append(totals, CategoryTotal{Category: txn.Category, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(txn.Amount)
		totals[i].Count++
	}

	sort.Slice(totals, func(a, b int) bool {
		return totals[a].Category < totals[b].Category
	})
	return totals
}

// NewDailySummary assembles the summary of one date
func NewDailySummary(row *balance.DailyBalance, persisted bool, txns []*ledger.Transaction) *DailySummary {
	if txns == nil {
		txns = []*ledger.Transaction{}
	}
	return &DailySummary{
		DailyBalance:      row,
		Persisted:         persisted,
		Transactions:      txns,
		IncomeByCategory:  CategoryTotals(txns, shared.TransactionTypeIncome),
		ExpenseByCategory: CategoryTotals(txns, shared.TransactionTypeExpense),
		TotalIncome:       SumByType(txns, shared.TransactionTypeIncome),
		TotalExpense:      SumByType(txns, shared.TransactionTypeExpense),
	}
}

// OpeningBalance is the cash on hand at the start of a range: the opening of the row
// on start if there is one, else the closing of the latest row before start, else zero.
func OpeningBalance(start time.Time, rows []*balance.DailyBalance, previous *balance.DailyBalance) decimal.Decimal {
	if len(rows) > 0 && rows[0].Date.Equal(shared.TruncateDate(start)) {
		return rows[0].OpeningBalance
	}
	if previous != nil {
		return previous.ClosingBalance
	}
	return decimal.Zero
}

// NewRangeSummary aggregates entries and rows of [start, end]. rows must be ordered by date.
func NewRangeSummary(start, end time.Time, txns []*ledger.Transaction, rows []*balance.DailyBalance, opening decimal.Decimal) *RangeSummary {
	if txns == nil {
		txns = []*ledger.Transaction{}
	}
	if rows == nil {
		rows = []*balance.DailyBalance{}
	}

	income := SumByType(txns, shared.TransactionTypeIncome)
	expense := SumByType(txns, shared.TransactionTypeExpense)

	closing := opening
	if len(rows) > 0 {
		closing = rows[len(rows)-1].ClosingBalance
	}

	return &RangeSummary{
		Start:             shared.TruncateDate(start),
		End:               shared.TruncateDate(end),
		Transactions:      txns,
		DailyBalances:     rows,
		IncomeByCategory:  CategoryTotals(txns, shared.TransactionTypeIncome),
		ExpenseByCategory: CategoryTotals(txns, shared.TransactionTypeExpense),
		Totals: Totals{
			Income:           income,
			Expense:          expense,
			Transfer:         SumByType(txns, shared.TransactionTypeTransfer),
			Net:              income.Sub(expense),
			OpeningBalance:   opening,
			ClosingBalance:   closing,
			TransactionCount: len(txns),
		},
	}
}
