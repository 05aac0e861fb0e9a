package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordResult is the stored entry together with its reconciled date
type RecordResult struct {
	Transaction  *ledger.Transaction   `json:"transaction"`
	DailyBalance *balance.DailyBalance `json:"daily_balance"`
}

// ReconciliationService owns every write to the daily balance ledger
type ReconciliationService interface {
	RecordTransaction(ctx context.Context, input ledger.RecordInput) (*RecordResult, error)
	SetOpeningBalance(ctx context.Context, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error)
	SetAccountBalances(ctx context.Context, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error)

	GetDailySummary(ctx context.Context, date time.Time) (*report.DailySummary, error)
	GetRangeSummary(ctx context.Context, start, end time.Time) (*report.RangeSummary, error)
	GetMonthlySummary(ctx context.Context, year int, month time.Month) (*report.RangeSummary, error)
	GetYearlySummary(ctx context.Context, year int) (*report.RangeSummary, error)
	FindByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error)
}

// TxRunner runs fn inside one database transaction, rolling back on error
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// DateLocker serializes in-process writers of one business date
type DateLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// TransactionValidator checks caller input before anything is stored
type TransactionValidator interface {
	Validate(ctx context.Context, input ledger.RecordInput) error
}

// LedgerWriter stores a new entry, assigning its voucher number and amount in words
type LedgerWriter interface {
	Persist(ctx context.Context, tx pgx.Tx, txn *ledger.Transaction) error
}

// BalanceManager maintains daily balance rows; callers hold the date lock
type BalanceManager interface {
	LockDate(ctx context.Context, tx pgx.Tx, date time.Time) error
	Reconcile(ctx context.Context, tx pgx.Tx, date time.Time) (*balance.DailyBalance, error)
	SetOpening(ctx context.Context, tx pgx.Tx, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error)
	SetAccounts(ctx context.Context, tx pgx.Tx, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error)
}

// OutboxManager stores the change event in the same database transaction
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, txn *ledger.Transaction, row *balance.DailyBalance) error
}
