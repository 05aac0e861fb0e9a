package report

import (
	"context"
	"time"

	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
)

// ReadModel is the denormalized copy of the cash book kept by the projector
type ReadModel interface {
	// UpsertTransaction is keyed by voucher number
	UpsertTransaction(ctx context.Context, txn *ledger.Transaction) error

	// UpsertDailyBalance ignores rows older than the stored version
	UpsertDailyBalance(ctx context.Context, row *balance.DailyBalance) error
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]*ledger.Transaction, error)
	GetDailyBalancesByDateRange(ctx context.Context, start, end time.Time) ([]*balance.DailyBalance, error)

	// GetLatestDailyBalanceBefore returns nil when no earlier row exists
	GetLatestDailyBalanceBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error)
}
