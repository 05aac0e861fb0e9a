package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// transactionDocument is a cash book entry as stored in the read model, keyed by voucher number
type transactionDocument struct {
	VoucherNumber   string               `bson:"_id"`
	TransactionID   string               `bson:"transaction_id"`
	Name            string               `bson:"name"`
	Description     string               `bson:"description"`
	Date            time.Time            `bson:"date"`
	BusinessDate    time.Time            `bson:"business_date"`
	Type            string               `bson:"type"`
	Category        string               `bson:"category"`
	Amount          primitive.Decimal128 `bson:"amount"`
	PaymentMethod   string               `bson:"payment_method"`
	Status          string               `bson:"status"`
	ReferenceNumber string               `bson:"reference_number,omitempty"`
	Notes           string               `bson:"notes,omitempty"`
	AmountInWords   string               `bson:"amount_in_words"`
	CreatedAt       time.Time            `bson:"created_at"`
	ProjectedAt     time.Time            `bson:"projected_at"`
}

// balanceDocument is a daily balance row, keyed by its YYYY-MM-DD date
type balanceDocument struct {
	Key                  string               `bson:"_id"`
	Date                 time.Time            `bson:"date"`
	OpeningBalance       primitive.Decimal128 `bson:"opening_balance"`
	CashIn               primitive.Decimal128 `bson:"cash_in"`
	CashOut              primitive.Decimal128 `bson:"cash_out"`
	ClosingBalance       primitive.Decimal128 `bson:"closing_balance"`
	BankBalance          primitive.Decimal128 `bson:"bank_balance"`
	MobileBankingBalance primitive.Decimal128 `bson:"mobile_banking_balance"`
	Version              int                  `bson:"version"`
	CreatedAt            time.Time            `bson:"created_at"`
	UpdatedAt            time.Time            `bson:"updated_at"`
	ProjectedAt          time.Time            `bson:"projected_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to convert decimal128 %s: %w", v.String(), err)
	}
	return d, nil
}

func newTransactionDocument(txn *ledger.Transaction, now time.Time) (*transactionDocument, error) {
	amount, err := toDecimal128(txn.Amount)
	if err != nil {
		return nil, err
	}

	return &transactionDocument{
		VoucherNumber:   txn.VoucherNumber,
		TransactionID:   txn.ID.String(),
		Name:            txn.Name,
		Description:     txn.Description,
		Date:            txn.Date,
		BusinessDate:    txn.BusinessDate,
		Type:            string(txn.Type),
		Category:        txn.Category,
		Amount:          amount,
		PaymentMethod:   string(txn.PaymentMethod),
		Status:          string(txn.Status),
		ReferenceNumber: txn.ReferenceNumber,
		Notes:           txn.Notes,
		AmountInWords:   txn.AmountInWords,
		CreatedAt:       txn.CreatedAt,
		ProjectedAt:     now,
	}, nil
}

func (d *transactionDocument) toTransaction() (*ledger.Transaction, error) {
	id, err := uuid.Parse(d.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", d.TransactionID, err)
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}

	return &ledger.Transaction{
		ID:              id,
		VoucherNumber:   d.VoucherNumber,
		Name:            d.Name,
		Description:     d.Description,
		Date:            d.Date,
		BusinessDate:    d.BusinessDate,
		Type:            shared.TransactionType(d.Type),
		Category:        d.Category,
		Amount:          amount,
		PaymentMethod:   shared.PaymentMethod(d.PaymentMethod),
		Status:          shared.TransactionStatus(d.Status),
		ReferenceNumber: d.ReferenceNumber,
		Notes:           d.Notes,
		AmountInWords:   d.AmountInWords,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func newBalanceDocument(row *balance.DailyBalance, now time.Time) (*balanceDocument, error) {
	doc := &balanceDocument{
		Key:         shared.FormatDate(row.Date),
		Date:        row.Date,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ProjectedAt: now,
	}

	fields := []struct {
		src decimal.Decimal
		dst *primitive.Decimal128
	}{
		{row.OpeningBalance, &doc.OpeningBalance},
		{row.CashIn, &doc.CashIn},
		{row.CashOut, &doc.CashOut},
		{row.ClosingBalance, &doc.ClosingBalance},
		{row.BankBalance, &doc.BankBalance},
		{row.MobileBankingBalance, &doc.MobileBankingBalance},
	}
	for _, f := range fields {
		v, err := toDecimal128(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return doc, nil
}

func (d *balanceDocument) toDailyBalance() (*balance.DailyBalance, error) {
	row := &balance.DailyBalance{
		Date:      d.Date,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	fields := []struct {
		src primitive.Decimal128
		dst *decimal.Decimal
	}{
		{d.OpeningBalance, &row.OpeningBalance},
		{d.CashIn, &row.CashIn},
		{d.CashOut, &row.CashOut},
		{d.ClosingBalance, &row.ClosingBalance},
		{d.BankBalance, &row.BankBalance},
		{d.MobileBankingBalance, &row.MobileBankingBalance},
	}
	for _, f := range fields {
		v, err := fromDecimal128(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return row, nil
}
