package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/persistence"
)

// dateLockNamespace is the first key of the two-key advisory lock taken per business date
const dateLockNamespace int32 = 0x0CA5B00C

const balanceColumns = `date, opening_balance, cash_in, cash_out, closing_balance,
		bank_balance, mobile_banking_balance, version, created_at, updated_at`

// DailyBalanceRepository implements the balance.Repository interface for PostgreSQL
type DailyBalanceRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDailyBalanceRepository creates a new PostgreSQL daily balance ledger
func NewDailyBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) balance.Repository {
	return &DailyBalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. LockDate is only meaningful
// on a repository bound this way.
func (r *DailyBalanceRepository) WithTx(tx pgx.Tx) balance.Repository {
	return &DailyBalanceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// LockDate takes a transaction-scoped advisory lock on the date. It also covers
// dates that have no row yet, which SELECT ... FOR UPDATE cannot.
func (r *DailyBalanceRepository) LockDate(ctx context.Context, date time.Time) error {
	query := `SELECT pg_advisory_xact_lock($1, $2)`

	if _, err := r.querier.Exec(ctx, query, dateLockNamespace, shared.DateKey(date)); err != nil {
		r.logger.Error("Failed to lock business date", "date", shared.FormatDate(date), "error", err)
		return fmt.Errorf("failed to lock business date: %w", err)
	}

	return nil
}

// GetByDate retrieves the row stored for the date
func (r *DailyBalanceRepository) GetByDate(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM daily_balances
		WHERE date = $1
	`

	b, err := scanDailyBalance(r.querier.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, balance.ErrBalanceNotFound{Date: date}
		}
		r.logger.Error("Failed to get daily balance", "date", shared.FormatDate(date), "error", err)
		return nil, fmt.Errorf("failed to get daily balance: %w", err)
	}

	return b, nil
}

// GetLatestBefore returns the newest row strictly before date, or nil when there is none
func (r *DailyBalanceRepository) GetLatestBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM daily_balances
		WHERE date < $1
		ORDER BY date DESC
		LIMIT 1
	`

	b, err := scanDailyBalance(r.querier.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get previous daily balance", "date", shared.FormatDate(date), "error", err)
		return nil, fmt.Errorf("failed to get previous daily balance: %w", err)
	}

	return b, nil
}

// GetByDateRange lists stored rows within [start, end], oldest first
func (r *DailyBalanceRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*balance.DailyBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM daily_balances
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`

	rows, err := r.querier.Query(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to get daily balances by date range",
			"start", shared.FormatDate(start),
			"end", shared.FormatDate(end),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get daily balances by date range: %w", err)
	}
	defer rows.Close()

	var balances []*balance.DailyBalance
	for rows.Next() {
		b, err := scanDailyBalance(rows)
		if err != nil {
			r.logger.Error("Failed to scan daily balance", "error", err)
			return nil, fmt.Errorf("failed to scan daily balance: %w", err)
		}
		balances = append(balances, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over daily balances", "error", err)
		return nil, fmt.Errorf("error iterating over daily balances: %w", err)
	}

	return balances, nil
}

// Create stores the first row of a date
func (r *DailyBalanceRepository) Create(ctx context.Context, b *balance.DailyBalance) error {
	query := `
		INSERT INTO daily_balances (` + balanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		b.Date,
		b.OpeningBalance,
		b.CashIn,
		b.CashOut,
		b.ClosingBalance,
		b.BankBalance,
		b.MobileBankingBalance,
		b.Version,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if _, ok := persistence.IsUniqueViolation(err); ok {
			return balance.ErrDuplicateBalance{Date: b.Date}
		}
		r.logger.Error("Failed to create daily balance", "date", shared.FormatDate(b.Date), "error", err)
		return fmt.Errorf("failed to create daily balance: %w", err)
	}

	return nil
}

// Update writes b back if nobody else has since the caller read it
func (r *DailyBalanceRepository) Update(ctx context.Context, b *balance.DailyBalance) error {
	query := `
		UPDATE daily_balances
		SET opening_balance = $1, cash_in = $2, cash_out = $3, closing_balance = $4,
			bank_balance = $5, mobile_banking_balance = $6, version = $7, updated_at = $8
		WHERE date = $9 AND version = $10
	`

	result, err := r.querier.Exec(ctx, query,
		b.OpeningBalance,
		b.CashIn,
		b.CashOut,
		b.ClosingBalance,
		b.BankBalance,
		b.MobileBankingBalance,
		b.Version,
		b.UpdatedAt,
		b.Date,
		b.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update daily balance", "date", shared.FormatDate(b.Date), "error", err)
		return fmt.Errorf("failed to update daily balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return balance.ErrVersionConflict(b.Date)
	}

	return nil
}

func scanDailyBalance(row pgx.Row) (*balance.DailyBalance, error) {
	var b balance.DailyBalance
	err := row.Scan(
		&b.Date,
		&b.OpeningBalance,
		&b.CashIn,
		&b.CashOut,
		&b.ClosingBalance,
		&b.BankBalance,
		&b.MobileBankingBalance,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
