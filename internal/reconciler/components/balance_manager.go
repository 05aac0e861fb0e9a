package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/reconciler/service"
	"github.com/shopspring/decimal"
)

type BalanceManagerImpl struct {
	balanceRepo     balance.Repository
	transactionRepo ledger.Repository
	now             func() time.Time
	logger          *slog.Logger
}

func NewBalanceManager(balanceRepo balance.Repository, transactionRepo ledger.Repository, logger *slog.Logger) service.BalanceManager {
	return &BalanceManagerImpl{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		now:             time.Now,
		logger:          logger,
	}
}

// LockDate takes the date's advisory lock for the rest of tx
func (m *BalanceManagerImpl) LockDate(ctx context.Context, tx pgx.Tx, date time.Time) error {
	if err := m.balanceRepo.WithTx(tx).LockDate(ctx, date); err != nil {
		return fmt.Errorf("failed to lock date %s: %w", shared.FormatDate(date), err)
	}
	return nil
}

// Reconcile recomputes cash in and cash out of date from every stored entry
func (m *BalanceManagerImpl) Reconcile(ctx context.Context, tx pgx.Tx, date time.Time) (*balance.DailyBalance, error) {
	rows := m.balanceRepo.WithTx(tx)
	txns := m.transactionRepo.WithTx(tx)

	row, isNew, err := m.loadOrSeed(ctx, rows, date)
	if err != nil {
		return nil, err
	}

	cashIn, err := txns.SumByTypeAndDate(ctx, date, shared.TransactionTypeIncome)
	if err != nil {
		return nil, fmt.Errorf("failed to sum income: %w", err)
	}
	cashOut, err := txns.SumByTypeAndDate(ctx, date, shared.TransactionTypeExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expense: %w", err)
	}

	row.Reconcile(cashIn, cashOut, m.now())
	if err := m.save(ctx, rows, row, isNew); err != nil {
		return nil, err
	}

	m.logger.Debug("Daily balance reconciled",
		"date", shared.FormatDate(date),
		"cash_in", cashIn.StringFixed(2),
		"cash_out", cashOut.StringFixed(2),
		"closing_balance", row.ClosingBalance.StringFixed(2),
		"version", row.Version,
	)
	return row, nil
}

// SetOpening opens date at amount, floored by the previous closing, or raises an existing opening
func (m *BalanceManagerImpl) SetOpening(ctx context.Context, tx pgx.Tx, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error) {
	rows := m.balanceRepo.WithTx(tx)

	row, err := rows.GetByDate(ctx, date)
	switch {
	case err == nil:
		if err := row.RaiseOpening(amount, m.now()); err != nil {
			return nil, err
		}
		if err := m.save(ctx, rows, row, false); err != nil {
			return nil, err
		}
		return row, nil

	case errors.Is(err, balance.ErrBalanceNotFound{}):
		floor, err := previousClosing(ctx, rows, date)
		if err != nil {
			return nil, err
		}
		row, err := balance.OpenWithFloor(date, amount, floor, m.now())
		if err != nil {
			return nil, err
		}
		if err := m.save(ctx, rows, row, true); err != nil {
			return nil, err
		}
		return row, nil

	default:
		return nil, fmt.Errorf("failed to get daily balance: %w", err)
	}
}

// SetAccounts records bank and mobile banking balances, seeding the row when absent
func (m *BalanceManagerImpl) SetAccounts(ctx context.Context, tx pgx.Tx, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error) {
	rows := m.balanceRepo.WithTx(tx)

	row, isNew, err := m.loadOrSeed(ctx, rows, date)
	if err != nil {
		return nil, err
	}
	if err := row.SetAccountBalances(bank, mobile, m.now()); err != nil {
		return nil, err
	}
	if err := m.save(ctx, rows, row, isNew); err != nil {
		return nil, err
	}
	return row, nil
}

// loadOrSeed returns the stored row of date, or a new one opening at the previous closing
func (m *BalanceManagerImpl) loadOrSeed(ctx context.Context, rows balance.Repository, date time.Time) (*balance.DailyBalance, bool, error) {
	row, err := rows.GetByDate(ctx, date)
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, balance.ErrBalanceNotFound{}) {
		return nil, false, fmt.Errorf("failed to get daily balance: %w", err)
	}

	opening, err := previousClosing(ctx, rows, date)
	if err != nil {
		return nil, false, err
	}

	m.logger.Debug("Seeding daily balance", "date", shared.FormatDate(date), "opening_balance", opening.StringFixed(2))
	return balance.NewDailyBalance(date, opening, m.now()), true, nil
}

func (m *BalanceManagerImpl) save(ctx context.Context, rows balance.Repository, row *balance.DailyBalance, isNew bool) error {
	if isNew {
		if err := rows.Create(ctx, row); err != nil {
			return fmt.Errorf("failed to create daily balance: %w", err)
		}
		return nil
	}
	if err := rows.Update(ctx, row); err != nil {
		return fmt.Errorf("failed to update daily balance: %w", err)
	}
	return nil
}

// previousClosing is the closing of the most recent row before date; gaps are skipped
func previousClosing(ctx context.Context, rows balance.Repository, date time.Time) (decimal.Decimal, error) {
	previous, err := rows.GetLatestBefore(ctx, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get previous daily balance: %w", err)
	}
	if previous == nil {
		return decimal.Zero, nil
	}
	return previous.ClosingBalance, nil
}
