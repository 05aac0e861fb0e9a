package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/reconciler/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) RecordTransaction(ctx context.Context, input ledger.RecordInput) (*service.RecordResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordResult), args.Error(1)
}

func (m *MockReconciliationService) SetOpeningBalance(ctx context.Context, date time.Time, amount decimal.Decimal) (*balance.DailyBalance, error) {
	args := m.Called(ctx, date, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockReconciliationService) SetAccountBalances(ctx context.Context, date time.Time, bank, mobile decimal.Decimal) (*balance.DailyBalance, error) {
	args := m.Called(ctx, date, bank, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DailyBalance), args.Error(1)
}

func (m *MockReconciliationService) GetDailySummary(ctx context.Context, date time.Time) (*report.DailySummary, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DailySummary), args.Error(1)
}

func (m *MockReconciliationService) GetRangeSummary(ctx context.Context, start, end time.Time) (*report.RangeSummary, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.RangeSummary), args.Error(1)
}

func (m *MockReconciliationService) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*report.RangeSummary, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.RangeSummary), args.Error(1)
}

func (m *MockReconciliationService) GetYearlySummary(ctx context.Context, year int) (*report.RangeSummary, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.RangeSummary), args.Error(1)
}

func (m *MockReconciliationService) FindByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
