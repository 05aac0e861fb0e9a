package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockTransactionValidator struct {
	mock.Mock
}

func (m *MockTransactionValidator) Validate(ctx context.Context, input ledger.RecordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) Persist(ctx context.Context, tx pgx.Tx, txn *ledger.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

type MockBalanceManager struct {
	mock.Mock
}

func (m *MockBalanceManager) LockDate(ctx context.Context, tx pgx.Tx, date time.Time) error {
	args := m.Called(ctx, tx, date)
	return args.Error(0)
}

func (m *MockBalanceManager) Reconcile(ctx context.Context, tx pgx.Tx, date time.Time) (*balance.DailyBalance, error) {
	args := m.Called(ctx, tx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockBalanceManager) SetOpening(ctx context.Context, tx pgx.Tx, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error) {
	args := m.Called(ctx, tx, date, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockBalanceManager) SetAccounts(ctx context.Context, tx pgx.Tx, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error) {
	args := m.Called(ctx, tx, date, bank, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, txn *ledger.Transaction, row *balance.DailyBalance) error {
	args := m.Called(ctx, tx, eventType, txn, row)
	return args.Error(0)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, txn *ledger.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) GetByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) SumByTypeAndDate(ctx context.Context, date time.Time, txnType shared.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, date, txnType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) ledger.Repository {
	return m
}

type MockBalanceRepo struct {
	mock.Mock
}

func (m *MockBalanceRepo) LockDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockBalanceRepo) GetByDate(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockBalanceRepo) GetLatestBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockBalanceRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*balance.DailyBalance, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*balance.DailyBalance), args.Error(1)
}

func (m *MockBalanceRepo) Create(ctx context.Context, b *balance.DailyBalance) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBalanceRepo) Update(ctx context.Context, b *balance.DailyBalance) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBalanceRepo) WithTx(tx pgx.Tx) balance.Repository {
	return m
}

// fakeTxRunner runs fn with a nil transaction and counts calls
type fakeTxRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return fn(nil)
}

// fakeLocker records the keys it was asked for
type fakeLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	err      error
}

func (l *fakeLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}
