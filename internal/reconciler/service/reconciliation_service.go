// Package service is the reconciliation engine: the single writer of the daily
// balance ledger. Every write runs under the date's in-process lock and, inside
// one database transaction, under the date's advisory lock.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

type ReconciliationServiceImpl struct {
	txRunner        TxRunner
	locker          DateLocker
	validator       TransactionValidator
	ledgerWriter    LedgerWriter
	balanceManager  BalanceManager
	outboxManager   OutboxManager
	transactionRepo ledger.Repository
	balanceRepo     balance.Repository
	loc             *time.Location
	now             func() time.Time
	logger          *slog.Logger
}

func NewReconciliationService(
	txRunner TxRunner,
	locker DateLocker,
	validator TransactionValidator,
	ledgerWriter LedgerWriter,
	balanceManager BalanceManager,
	outboxManager OutboxManager,
	transactionRepo ledger.Repository,
	balanceRepo balance.Repository,
	loc *time.Location,
	logger *slog.Logger,
) ReconciliationService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReconciliationServiceImpl{
		txRunner:        txRunner,
		locker:          locker,
		validator:       validator,
		ledgerWriter:    ledgerWriter,
		balanceManager:  balanceManager,
		outboxManager:   outboxManager,
		transactionRepo: transactionRepo,
		balanceRepo:     balanceRepo,
		loc:             loc,
		now:             time.Now,
		logger:          logger,
	}
}

// RecordTransaction stores a new entry and reconciles its business date in one unit of work
func (s *ReconciliationServiceImpl) RecordTransaction(ctx context.Context, input ledger.RecordInput) (*RecordResult, error) {
	logger := s.loggerFor(ctx)

	// 1. Validate before touching storage
	if err := s.validator.Validate(ctx, input); err != nil {
		logger.Warn("Transaction validation failed", "error", err)
		return nil, err
	}

	txn := ledger.NewTransaction(input, s.now(), s.loc)

	// 2. Persist and reconcile under the date lock
	var row *balance.DailyBalance
	err := s.withDateLock(ctx, txn.BusinessDate, func(tx pgx.Tx) error {
		if err := s.ledgerWriter.Persist(ctx, tx, txn); err != nil {
			return err
		}

		var err error
		row, err = s.balanceManager.Reconcile(ctx, tx, txn.BusinessDate)
		if err != nil {
			return err
		}

		return s.outboxManager.CreateOutboxEntry(ctx, tx, shared.EventTypeTransactionRecorded, txn, row)
	})
	if err != nil {
		logger.Error("Failed to record transaction", "date", shared.FormatDate(txn.BusinessDate), "error", err)
		return nil, normalizeError("record transaction", err)
	}

	logger.Info("Transaction recorded",
		"voucher_number", txn.VoucherNumber,
		"date", shared.FormatDate(txn.BusinessDate),
		"type", txn.Type,
		"closing_balance", row.ClosingBalance.StringFixed(2),
	)
	return &RecordResult{Transaction: txn, DailyBalance: row}, nil
}

// SetOpeningBalance creates the date's row with a manual opening balance, or raises an existing one
func (s *ReconciliationServiceImpl) SetOpeningBalance(ctx context.Context, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error) {
	logger := s.loggerFor(ctx)
	date = shared.TruncateDate(date)

	if err := validateMoney("amount", amount); err != nil {
		return nil, err
	}

	var row *balance.DailyBalance
	err := s.withDateLock(ctx, date, func(tx pgx.Tx) error {
		var err error
		row, err = s.balanceManager.SetOpening(ctx, tx, date, amount)
		if err != nil {
			return err
		}
		return s.outboxManager.CreateOutboxEntry(ctx, tx, shared.EventTypeOpeningBalanceSet, nil, row)
	})
	if err != nil {
		logger.Error("Failed to set opening balance", "date", shared.FormatDate(date), "amount", amount.String(), "error", err)
		return nil, normalizeError("set opening balance", err)
	}

	logger.Info("Opening balance set", "date", shared.FormatDate(date), "opening_balance", row.OpeningBalance.StringFixed(2))
	return row, nil
}

// SetAccountBalances records the bank and mobile banking figures of a date
func (s *ReconciliationServiceImpl) SetAccountBalances(ctx context.Context, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error) {
	logger := s.loggerFor(ctx)
	date = shared.TruncateDate(date)

	if err := validateMoney("bank_balance", bank); err != nil {
		return nil, err
	}
	if err := validateMoney("mobile_banking_balance", mobile); err != nil {
		return nil, err
	}

	var row *balance.DailyBalance
	err := s.withDateLock(ctx, date, func(tx pgx.Tx) error {
		var err error
		row, err = s.balanceManager.SetAccounts(ctx, tx, date, bank, mobile)
		if err != nil {
			return err
		}
		return s.outboxManager.CreateOutboxEntry(ctx, tx, shared.EventTypeAccountBalancesSet, nil, row)
	})
	if err != nil {
		logger.Error("Failed to set account balances", "date", shared.FormatDate(date), "error", err)
		return nil, normalizeError("set account balances", err)
	}

	logger.Info("Account balances set", "date", shared.FormatDate(date))
	return row, nil
}

// GetDailySummary reads one date. A date without a stored row gets the row it
// would have, computed from the carried-forward closing; nothing is written.
func (s *ReconciliationServiceImpl) GetDailySummary(ctx context.Context, date time.Time) (*report.DailySummary, error) {
	date = shared.TruncateDate(date)

	txns, err := s.transactionRepo.GetByDateRange(ctx, date, date)
	if err != nil {
		return nil, normalizeError("get daily summary", err)
	}

	row, err := s.balanceRepo.GetByDate(ctx, date)
	if err == nil {
		return report.NewDailySummary(row, true, txns), nil
	}
	if !errors.Is(err, balance.ErrBalanceNotFound{}) {
		return nil, normalizeError("get daily summary", err)
	}

	opening, err := s.carriedForward(ctx, date)
	if err != nil {
		return nil, normalizeError("get daily summary", err)
	}

	row = balance.WouldBe(date, opening,
		report.SumByType(txns, shared.TransactionTypeIncome),
		report.SumByType(txns, shared.TransactionTypeExpense),
	)
	return report.NewDailySummary(row, false, txns), nil
}

// GetRangeSummary aggregates the inclusive range [start, end]
func (s *ReconciliationServiceImpl) GetRangeSummary(ctx context.Context, start, end time.Time) (*report.RangeSummary, error) {
	start = shared.TruncateDate(start)
	end = shared.TruncateDate(end)
	if end.Before(start) {
		return nil, shared.ValidationError{Field: "end", Message: "must not be before start"}
	}

	txns, err := s.transactionRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, normalizeError("get range summary", err)
	}

	rows, err := s.balanceRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, normalizeError("get range summary", err)
	}

	previous, err := s.balanceRepo.GetLatestBefore(ctx, start)
	if err != nil {
		return nil, normalizeError("get range summary", err)
	}

	return report.NewRangeSummary(start, end, txns, rows, report.OpeningBalance(start, rows, previous)), nil
}

// GetMonthlySummary is the range summary of one calendar month
func (s *ReconciliationServiceImpl) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*report.RangeSummary, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, shared.ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}

	start, end := shared.MonthRange(year, month)
	return s.GetRangeSummary(ctx, start, end)
}

// GetYearlySummary is the range summary of one calendar year
func (s *ReconciliationServiceImpl) GetYearlySummary(ctx context.Context, year int) (*report.RangeSummary, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	start, end := shared.YearRange(year)
	return s.GetRangeSummary(ctx, start, end)
}

func (s *ReconciliationServiceImpl) FindByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error) {
	txn, err := s.transactionRepo.GetByVoucher(ctx, voucherNumber)
	if err != nil {
		return nil, normalizeError("find by voucher", err)
	}
	return txn, nil
}

// withDateLock runs fn in a database transaction while holding both locks of date
func (s *ReconciliationServiceImpl) withDateLock(ctx context.Context, date time.Time, fn func(tx pgx.Tx) error) error {
	release, err := s.locker.Lock(ctx, shared.FormatDate(date))
	if err != nil {
		return err
	}
	defer release()

	return s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.balanceManager.LockDate(ctx, tx, date); err != nil {
			return err
		}
		return fn(tx)
	})
}

func (s *ReconciliationServiceImpl) carriedForward(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	previous, err := s.balanceRepo.GetLatestBefore(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	if previous == nil {
		return decimal.Zero, nil
	}
	return previous.ClosingBalance, nil
}

func (s *ReconciliationServiceImpl) loggerFor(ctx context.Context) *slog.Logger {
	if id := shared.CorrelationIDFrom(ctx); id != "" {
		return s.logger.With("correlation_id", id)
	}
	return s.logger
}

// normalizeError keeps classified errors and wraps the rest as store failures
func normalizeError(op string, err error) error {
	if shared.KindOf(err) == shared.KindUnknown {
		return shared.StoreError{Op: op, Err: err}
	}
	return err
}

func validateMoney(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.ValidationError{Field: field, Message: "must not be negative"}
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return shared.ValidationError{Field: field, Message: "must have at most 2 decimal places"}
	}
	return nil
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return shared.ValidationError{Field: "year", Message: fmt.Sprintf("must be between 1 and 9999, got %d", year)}
	}
	return nil
}
