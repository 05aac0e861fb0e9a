package mongo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func toBSON(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func testRow(day time.Time, opening, in, out int64, version int) *balance.DailyBalance {
	o, i, c := decimal.NewFromInt(opening), decimal.NewFromInt(in), decimal.NewFromInt(out)
	return &balance.DailyBalance{
		Date:                 day,
		OpeningBalance:       o,
		CashIn:               i,
		CashOut:              c,
		ClosingBalance:       balance.ClosingFor(o, i, c),
		BankBalance:          decimal.Zero,
		MobileBankingBalance: decimal.Zero,
		Version:              version,
		CreatedAt:            day,
		UpdatedAt:            day,
	}
}

func TestReportRepository_UpsertDailyBalance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("stores newer version", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.UpsertDailyBalance(context.Background(), testRow(day, 0, 5000, 0, 2))
		assert.NoError(mt, err)
	})

	mt.Run("ignores stale version", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: daily_balances index: _id_",
		}))

		err := repo.UpsertDailyBalance(context.Background(), testRow(day, 0, 100, 0, 1))
		assert.NoError(mt, err)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.UpsertDailyBalance(context.Background(), testRow(day, 0, 100, 0, 1))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to upsert daily balance")
	})
}

func TestReportRepository_UpsertTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		txn := &ledger.Transaction{
			ID:            uuid.New(),
			VoucherNumber: "CV2401011234",
			Type:          shared.TransactionTypeIncome,
			Amount:        decimal.NewFromInt(5000),
		}
		assert.NoError(mt, repo.UpsertTransaction(context.Background(), txn))
	})
}

func TestReportRepository_GetDailyBalancesByDateRange(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		first, err := newBalanceDocument(testRow(start, 0, 300, 0, 2), start)
		require.NoError(mt, err)
		second, err := newBalanceDocument(testRow(start.AddDate(0, 0, 3), 300, 0, 50, 1), start)
		require.NoError(mt, err)

		ns := mt.DB.Name() + "." + DailyBalanceCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toBSON(mt.T, first), toBSON(mt.T, second)))

		rows, err := repo.GetDailyBalancesByDateRange(context.Background(), start, end)
		require.NoError(mt, err)
		require.Len(mt, rows, 2)
		assert.True(mt, rows[0].Date.Equal(start))
		assert.True(mt, decimal.NewFromInt(250).Equal(rows[1].ClosingBalance))
	})
}

func TestReportRepository_GetTransactionsByDateRange(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		txn := &ledger.Transaction{
			ID:            uuid.New(),
			VoucherNumber: "CV2401011234",
			Name:          "Rent",
			BusinessDate:  day,
			Type:          shared.TransactionTypeIncome,
			Amount:        decimal.RequireFromString("5000.50"),
			PaymentMethod: shared.PaymentMethodCash,
			Status:        shared.TransactionStatusCompleted,
		}
		doc, err := newTransactionDocument(txn, day)
		require.NoError(mt, err)

		ns := mt.DB.Name() + "." + TransactionCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toBSON(mt.T, doc)))

		txns, err := repo.GetTransactionsByDateRange(context.Background(), day, day)
		require.NoError(mt, err)
		require.Len(mt, txns, 1)
		assert.Equal(mt, txn.ID, txns[0].ID)
		assert.True(mt, txn.Amount.Equal(txns[0].Amount))
	})
}

func TestReportRepository_GetLatestDailyBalanceBefore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		doc, err := newBalanceDocument(testRow(day.AddDate(0, 0, -4), 0, 800, 0, 1), day)
		require.NoError(mt, err)

		ns := mt.DB.Name() + "." + DailyBalanceCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toBSON(mt.T, doc)))

		row, err := repo.GetLatestDailyBalanceBefore(context.Background(), day)
		require.NoError(mt, err)
		require.NotNil(mt, row)
		assert.True(mt, decimal.NewFromInt(800).Equal(row.ClosingBalance))
	})

	mt.Run("none", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		ns := mt.DB.Name() + "." + DailyBalanceCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		row, err := repo.GetLatestDailyBalanceBefore(context.Background(), day)
		assert.NoError(mt, err)
		assert.Nil(mt, row)
	})
}

func TestReportRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewReportRepository(discardLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
