// Package mongo holds the MongoDB read model the projector keeps in step with the
// PostgreSQL cash book. Documents carry money as Decimal128.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

const (
	// TransactionCollectionName holds one document per voucher
	TransactionCollectionName = "cashbook_transactions"

	// DailyBalanceCollectionName holds one document per business date
	DailyBalanceCollectionName = "daily_balances"
)

// ReportRepository implements the report.ReadModel interface for MongoDB
type ReportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
	now    func() time.Time
}

// NewReportRepository creates a new MongoDB read model
func NewReportRepository(logger *slog.Logger, db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

var _ report.ReadModel = (*ReportRepository)(nil)

// EnsureIndexes creates the indexes range queries rely on
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(TransactionCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_date", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		r.logger.Error("Failed to create transaction indexes", "error", err)
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	_, err = r.db.Collection(DailyBalanceCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
	})
	if err != nil {
		r.logger.Error("Failed to create daily balance indexes", "error", err)
		return fmt.Errorf("failed to create daily balance indexes: %w", err)
	}

	return nil
}

// UpsertTransaction replaces the document of the voucher, so redelivered events are harmless
func (r *ReportRepository) UpsertTransaction(ctx context.Context, txn *ledger.Transaction) error {
	doc, err := newTransactionDocument(txn, r.now())
	if err != nil {
		return err
	}

	filter := bson.M{"_id": doc.VoucherNumber}
	_, err = r.db.Collection(TransactionCollectionName).ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert transaction",
			"voucher_number", txn.VoucherNumber,
			"error", err)
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}

	return nil
}

// UpsertDailyBalance stores row unless a document with the same or a newer version
// is already there. Out-of-order deliveries are dropped silently.
func (r *ReportRepository) UpsertDailyBalance(ctx context.Context, row *balance.DailyBalance) error {
	doc, err := newBalanceDocument(row, r.now())
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":     doc.Key,
		"version": bson.M{"$lt": doc.Version},
	}
	_, err = r.db.Collection(DailyBalanceCollectionName).ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		// The filter missed an existing document, so the upsert collided on _id: ours is stale
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Debug("Skipping stale daily balance",
				"date", doc.Key,
				"version", doc.Version)
			return nil
		}
		r.logger.Error("Failed to upsert daily balance",
			"date", doc.Key,
			"error", err)
		return fmt.Errorf("failed to upsert daily balance: %w", err)
	}

	return nil
}

// GetTransactionsByDateRange lists entries within [start, end] by business date, then voucher
func (r *ReportRepository) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]*ledger.Transaction, error) {
	filter := bson.M{
		"business_date": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "business_date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.db.Collection(TransactionCollectionName).Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transactions by date range",
			"start", shared.FormatDate(start),
			"end", shared.FormatDate(end),
			"error", err)
		return nil, fmt.Errorf("failed to get transactions by date range: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode transactions", "error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txns := make([]*ledger.Transaction, 0, len(docs))
	for i := range docs {
		txn, err := docs[i].toTransaction()
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction %s: %w", docs[i].VoucherNumber, err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// GetDailyBalancesByDateRange lists stored rows within [start, end], oldest first
func (r *ReportRepository) GetDailyBalancesByDateRange(ctx context.Context, start, end time.Time) ([]*balance.DailyBalance, error) {
	filter := bson.M{
		"date": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.db.Collection(DailyBalanceCollectionName).Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get daily balances by date range",
			"start", shared.FormatDate(start),
			"end", shared.FormatDate(end),
			"error", err)
		return nil, fmt.Errorf("failed to get daily balances by date range: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []balanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode daily balances", "error", err)
		return nil, fmt.Errorf("failed to decode daily balances: %w", err)
	}

	rows := make([]*balance.DailyBalance, 0, len(docs))
	for i := range docs {
		row, err := docs[i].toDailyBalance()
		if err != nil {
			return nil, fmt.Errorf("failed to decode daily balance %s: %w", docs[i].Key, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// GetLatestDailyBalanceBefore returns the newest row strictly before date, or nil
func (r *ReportRepository) GetLatestDailyBalanceBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	filter := bson.M{"date": bson.M{"$lt": date}}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var doc balanceDocument
	err := r.db.Collection(DailyBalanceCollectionName).FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get previous daily balance",
			"date", shared.FormatDate(date),
			"error", err)
		return nil, fmt.Errorf("failed to get previous daily balance: %w", err)
	}

	return doc.toDailyBalance()
}
