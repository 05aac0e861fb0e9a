package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecimal128Conversion(t *testing.T) {
	testCases := []string{"0", "0.75", "5000", "1250.50", "1500000000", "12345678.99"}

	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			in := decimal.RequireFromString(tc)
			d128, err := toDecimal128(in)
			require.NoError(t, err)

			out, err := fromDecimal128(d128)
			require.NoError(t, err)
			assert.True(t, in.Equal(out), "expected %s, got %s", in, out)
		})
	}
}

func TestTransactionDocument(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txn := &ledger.Transaction{
		ID:              uuid.New(),
		VoucherNumber:   "DV2401014321",
		Name:            "Plumber",
		Description:     "Kitchen sink repair",
		Date:            day.Add(15 * time.Hour),
		BusinessDate:    day,
		Type:            shared.TransactionTypeExpense,
		Category:        "maintenance",
		Amount:          decimal.RequireFromString("750.25"),
		PaymentMethod:   shared.PaymentMethodMobileBanking,
		Status:          shared.TransactionStatusPending,
		ReferenceNumber: "BK-77",
		AmountInWords:   "সাত শত পঞ্চাশ টাকা পঁচিশ পয়সা মাত্র",
		CreatedAt:       day.Add(15 * time.Hour),
	}

	doc, err := newTransactionDocument(txn, day)
	require.NoError(t, err)
	assert.Equal(t, "DV2401014321", doc.VoucherNumber)
	assert.Equal(t, "mobile_banking", doc.PaymentMethod)

	back, err := doc.toTransaction()
	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(back.Amount))
	back.Amount = txn.Amount
	assert.Equal(t, txn, back)

	t.Run("InvalidTransactionID", func(t *testing.T) {
		broken := *doc
		broken.TransactionID = "not-a-uuid"
		_, err := broken.toTransaction()
		assert.Error(t, err)
	})
}

func TestBalanceDocument(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	row := &balance.DailyBalance{
		Date:                 day,
		OpeningBalance:       decimal.NewFromInt(4800),
		CashIn:               decimal.NewFromInt(300),
		CashOut:              decimal.NewFromInt(100),
		ClosingBalance:       decimal.NewFromInt(5000),
		BankBalance:          decimal.RequireFromString("12000.50"),
		MobileBankingBalance: decimal.RequireFromString("800"),
		Version:              4,
		CreatedAt:            day,
		UpdatedAt:            day.Add(time.Hour),
	}

	doc, err := newBalanceDocument(row, day)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", doc.Key)
	assert.Equal(t, 4, doc.Version)
	assert.Equal(t, "12000.5", doc.BankBalance.String())

	back, err := doc.toDailyBalance()
	require.NoError(t, err)
	assert.True(t, row.ClosingBalance.Equal(back.ClosingBalance))
	assert.True(t, row.BankBalance.Equal(back.BankBalance))
	assert.True(t, back.IsBalanced())
	assert.Equal(t, row.Version, back.Version)
	assert.True(t, row.UpdatedAt.Equal(back.UpdatedAt))

	t.Run("RejectsNaN", func(t *testing.T) {
		broken := *doc
		broken.CashIn = primitive.NewDecimal128(0x7C00000000000000, 0) // NaN
		_, err := broken.toDailyBalance()
		assert.Error(t, err)
	})
}
