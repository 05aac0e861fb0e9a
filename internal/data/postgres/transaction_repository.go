// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be bound to a pgx transaction with WithTx so the transaction
// store, the daily balance ledger and the outbox commit together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, voucher_number, name, description, transaction_date, business_date, type,
		category, amount, payment_method, status, reference_number, notes, amount_in_words, created_at`

// TransactionRepository implements the ledger.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction store
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx binds the repository to tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the entry. A taken voucher number is reported as ErrDuplicateVoucher
// without aborting the surrounding transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	query := `
		INSERT INTO cash_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (voucher_number) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.VoucherNumber,
		txn.Name,
		txn.Description,
		txn.Date,
		txn.BusinessDate,
		txn.Type,
		txn.Category,
		txn.Amount,
		txn.PaymentMethod,
		txn.Status,
		txn.ReferenceNumber,
		txn.Notes,
		txn.AmountInWords,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "voucher_number", txn.VoucherNumber, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ledger.ErrDuplicateVoucher{VoucherNumber: txn.VoucherNumber}
	}

	return nil
}

// GetByVoucher retrieves an entry by its voucher number
func (r *TransactionRepository) GetByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM cash_transactions
		WHERE voucher_number = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, voucherNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFound(voucherNumber)
		}
		r.logger.Error("Failed to get transaction", "voucher_number", voucherNumber, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetByDateRange lists entries whose business date falls within [start, end]
func (r *TransactionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM cash_transactions
		WHERE business_date BETWEEN $1 AND $2
		ORDER BY business_date ASC, voucher_number ASC
	`

	rows, err := r.querier.Query(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to get transactions by date range",
			"start", shared.FormatDate(start),
			"end", shared.FormatDate(end),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get transactions by date range: %w", err)
	}
	defer rows.Close()

	var txns []*ledger.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

// SumByTypeAndDate totals the entries of one type on one business date
func (r *TransactionRepository) SumByTypeAndDate(ctx context.Context, date time.Time, txnType shared.TransactionType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_transactions
		WHERE business_date = $1 AND type = $2
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, date, txnType).Scan(&total); err != nil {
		r.logger.Error("Failed to sum transactions",
			"date", shared.FormatDate(date),
			"type", string(txnType),
			"error", err,
		)
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return total, nil
}

func scanTransaction(row pgx.Row) (*ledger.Transaction, error) {
	var txn ledger.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.VoucherNumber,
		&txn.Name,
		&txn.Description,
		&txn.Date,
		&txn.BusinessDate,
		&txn.Type,
		&txn.Category,
		&txn.Amount,
		&txn.PaymentMethod,
		&txn.Status,
		&txn.ReferenceNumber,
		&txn.Notes,
		&txn.AmountInWords,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
