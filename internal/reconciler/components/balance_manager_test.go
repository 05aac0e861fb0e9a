package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func storedRow(date time.Time, opening, cashIn, cashOut int64, version int) *balance.DailyBalance {
	row := balance.WouldBe(date, decimal.NewFromInt(opening), decimal.NewFromInt(cashIn), decimal.NewFromInt(cashOut))
	row.Version = version
	return row
}

func TestBalanceManager_LockDate(t *testing.T) {
	rows := new(MockBalanceRepo)
	manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

	rows.On("LockDate", mock.Anything, jan(1)).Return(errors.New("deadlock detected")).Once()

	err := manager.LockDate(context.Background(), nil, jan(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lock date 2024-01-01")
	rows.AssertExpectations(t)
}

func TestBalanceManager_Reconcile(t *testing.T) {
	t.Run("UpdatesExistingRow", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		txns := new(MockTransactionRepo)
		manager := NewBalanceManager(rows, txns, discardLogger())

		rows.On("GetByDate", mock.Anything, jan(1)).Return(storedRow(jan(1), 10000, 0, 0, 1), nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(1), shared.TransactionTypeIncome).Return(decimal.NewFromInt(5000), nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(1), shared.TransactionTypeExpense).Return(decimal.NewFromInt(1500), nil).Once()
		rows.On("Update", mock.Anything, mock.MatchedBy(func(b *balance.DailyBalance) bool {
			return b.Version == 2 && b.ClosingBalance.Equal(decimal.NewFromInt(13500))
		})).Return(nil).Once()

		row, err := manager.Reconcile(context.Background(), nil, jan(1))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(13500).Equal(row.ClosingBalance))
		rows.AssertExpectations(t)
		txns.AssertExpectations(t)
	})

	t.Run("SeedsFromLatestEarlierRow", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		txns := new(MockTransactionRepo)
		manager := NewBalanceManager(rows, txns, discardLogger())

		rows.On("GetByDate", mock.Anything, jan(10)).Return(nil, balance.ErrBalanceNotFound{Date: jan(10)}).Once()
		rows.On("GetLatestBefore", mock.Anything, jan(10)).Return(storedRow(jan(3), 100, 400, 0, 4), nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(10), shared.TransactionTypeIncome).Return(decimal.Zero, nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(10), shared.TransactionTypeExpense).Return(decimal.NewFromInt(800), nil).Once()
		rows.On("Create", mock.Anything, mock.MatchedBy(func(b *balance.DailyBalance) bool {
			return b.Version == 1 && b.OpeningBalance.Equal(decimal.NewFromInt(500)) && b.ClosingBalance.IsZero()
		})).Return(nil).Once()

		row, err := manager.Reconcile(context.Background(), nil, jan(10))
		require.NoError(t, err)
		assert.True(t, row.ClosingBalance.IsZero())
		rows.AssertExpectations(t)
		txns.AssertExpectations(t)
	})

	t.Run("LostRaceSurfacesAsConcurrency", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		txns := new(MockTransactionRepo)
		manager := NewBalanceManager(rows, txns, discardLogger())

		rows.On("GetByDate", mock.Anything, jan(1)).Return(storedRow(jan(1), 0, 0, 0, 1), nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(1), mock.Anything).Return(decimal.Zero, nil).Twice()
		rows.On("Update", mock.Anything, mock.Anything).Return(balance.ErrVersionConflict(jan(1))).Once()

		_, err := manager.Reconcile(context.Background(), nil, jan(1))
		assert.Equal(t, shared.KindConcurrency, shared.KindOf(err))
	})

	t.Run("SumFailure", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		txns := new(MockTransactionRepo)
		manager := NewBalanceManager(rows, txns, discardLogger())

		rows.On("GetByDate", mock.Anything, jan(1)).Return(storedRow(jan(1), 0, 0, 0, 1), nil).Once()
		txns.On("SumByTypeAndDate", mock.Anything, jan(1), shared.TransactionTypeIncome).
			Return(decimal.Zero, errors.New("statement timeout")).Once()

		_, err := manager.Reconcile(context.Background(), nil, jan(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to sum income")
		rows.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestBalanceManager_SetOpening(t *testing.T) {
	t.Run("RaisesExistingRow", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

		rows.On("GetByDate", mock.Anything, jan(1)).Return(storedRow(jan(1), 100, 50, 0, 3), nil).Once()
		rows.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		row, err := manager.SetOpening(context.Background(), nil, jan(1), decimal.NewFromInt(300))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(350).Equal(row.ClosingBalance))
		assert.Equal(t, 4, row.Version)
		rows.AssertExpectations(t)
	})

	t.Run("FloorFromPreviousClosing", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

		rows.On("GetByDate", mock.Anything, jan(4)).Return(nil, balance.ErrBalanceNotFound{Date: jan(4)}).Once()
		rows.On("GetLatestBefore", mock.Anything, jan(4)).Return(storedRow(jan(2), 700, 0, 0, 1), nil).Once()

		_, err := manager.SetOpening(context.Background(), nil, jan(4), decimal.NewFromInt(699))
		assert.True(t, errors.Is(err, shared.ValidationError{Field: "amount"}))
		rows.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("CreatesRowAtFloor", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

		rows.On("GetByDate", mock.Anything, jan(4)).Return(nil, balance.ErrBalanceNotFound{Date: jan(4)}).Once()
		rows.On("GetLatestBefore", mock.Anything, jan(4)).Return(storedRow(jan(2), 700, 0, 0, 1), nil).Once()
		rows.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		row, err := manager.SetOpening(context.Background(), nil, jan(4), decimal.NewFromInt(700))
		require.NoError(t, err)
		assert.Equal(t, 1, row.Version)
		rows.AssertExpectations(t)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		rows := new(MockBalanceRepo)
		manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

		rows.On("GetByDate", mock.Anything, jan(4)).Return(nil, errors.New("io timeout")).Once()

		_, err := manager.SetOpening(context.Background(), nil, jan(4), decimal.NewFromInt(700))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get daily balance")
	})
}

func TestBalanceManager_SetAccounts(t *testing.T) {
	rows := new(MockBalanceRepo)
	manager := NewBalanceManager(rows, new(MockTransactionRepo), discardLogger())

	rows.On("GetByDate", mock.Anything, jan(1)).Return(storedRow(jan(1), 100, 0, 0, 2), nil).Once()
	rows.On("Update", mock.Anything, mock.MatchedBy(func(b *balance.DailyBalance) bool {
		return b.Version == 3 && b.BankBalance.Equal(decimal.NewFromInt(9000))
	})).Return(nil).Once()

	row, err := manager.SetAccounts(context.Background(), nil, jan(1), decimal.NewFromInt(9000), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(row.ClosingBalance))
	rows.AssertExpectations(t)
}
