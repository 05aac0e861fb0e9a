package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Repository is the transaction store
type Repository interface {
	// Create inserts txn, returning ErrDuplicateVoucher when its voucher number is taken
	Create(ctx context.Context, txn *Transaction) error
	GetByVoucher(ctx context.Context, voucherNumber string) (*Transaction, error)

	// GetByDateRange is inclusive on business date, ordered by date then voucher number
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*Transaction, error)

	// SumByTypeAndDate returns zero when no entry matches
	SumByTypeAndDate(ctx context.Context, date time.Time, txnType shared.TransactionType) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrDuplicateVoucher indicates a voucher number uniqueness violation
type ErrDuplicateVoucher struct {
	VoucherNumber string
}

func (e ErrDuplicateVoucher) Error() string {
	return "duplicate voucher number: " + e.VoucherNumber
}

// Is implements the errors.Is interface for ErrDuplicateVoucher
func (e ErrDuplicateVoucher) Is(target error) bool {
	t, ok := target.(ErrDuplicateVoucher)
	if !ok {
		return false
	}
	// If the target voucher is empty, consider it a match for any ErrDuplicateVoucher
	if t.VoucherNumber == "" {
		return true
	}
	return e.VoucherNumber == t.VoucherNumber
}

// NotFound builds the lookup-miss error for a voucher
func NotFound(voucherNumber string) error {
	return shared.NotFoundError{Resource: "transaction", Key: voucherNumber}
}
