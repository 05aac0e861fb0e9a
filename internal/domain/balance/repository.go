package balance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// Repository is the daily balance ledger
type Repository interface {
	// LockDate serializes writers of one date until the surrounding transaction ends
	LockDate(ctx context.Context, date time.Time) error
	GetByDate(ctx context.Context, date time.Time) (*DailyBalance, error)

	// GetLatestBefore returns the most recent row strictly before date, or nil when none exists
	GetLatestBefore(ctx context.Context, date time.Time) (*DailyBalance, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*DailyBalance, error)
	Create(ctx context.Context, b *DailyBalance) error

	// Update uses optimistic locking against b.Version-1
	Update(ctx context.Context, b *DailyBalance) error
	WithTx(tx pgx.Tx) Repository
}

// ErrBalanceNotFound indicates no row is stored for the date
type ErrBalanceNotFound struct {
	Date time.Time
}

func (e ErrBalanceNotFound) Error() string {
	return "daily balance not found: " + shared.FormatDate(e.Date)
}

// Is matches ErrBalanceNotFound by date, and shared.NotFoundError by resource
func (e ErrBalanceNotFound) Is(target error) bool {
	switch t := target.(type) {
	case ErrBalanceNotFound:
		return t.Date.IsZero() || t.Date.Equal(e.Date)
	case shared.NotFoundError:
		return (t.Resource == "" || t.Resource == "daily balance") &&
			(t.Key == "" || t.Key == shared.FormatDate(e.Date))
	}
	return false
}

// ErrDuplicateBalance indicates another writer created the row first
type ErrDuplicateBalance struct {
	Date time.Time
}

func (e ErrDuplicateBalance) Error() string {
	return "daily balance already exists: " + shared.FormatDate(e.Date)
}

// Is matches ErrDuplicateBalance by date; it also counts as a shared.ConcurrencyError
func (e ErrDuplicateBalance) Is(target error) bool {
	switch t := target.(type) {
	case ErrDuplicateBalance:
		return t.Date.IsZero() || t.Date.Equal(e.Date)
	case shared.ConcurrencyError:
		return t.Key == "" || t.Key == shared.FormatDate(e.Date)
	}
	return false
}

// ErrVersionConflict builds the error returned when an optimistic update loses
func ErrVersionConflict(date time.Time) error {
	return shared.ConcurrencyError{Key: shared.FormatDate(date), Reason: "daily balance version changed"}
}
