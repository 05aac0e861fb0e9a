package components

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk-cashbook/internal/domain/balance"
	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/outbox"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// memoryStore stands in for PostgreSQL in engine scenario tests.
// Rows are copied in and out so callers never share state with the store.
type memoryStore struct {
	mu         sync.Mutex
	txns       map[string]ledger.Transaction
	rows       map[string]balance.DailyBalance
	messages   []outbox.Message
	failOutbox error
}

type storeSnapshot struct {
	txns     map[string]ledger.Transaction
	rows     map[string]balance.DailyBalance
	messages []outbox.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		txns: make(map[string]ledger.Transaction),
		rows: make(map[string]balance.DailyBalance),
	}
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		txns:     make(map[string]ledger.Transaction, len(s.txns)),
		rows:     make(map[string]balance.DailyBalance, len(s.rows)),
		messages: append([]outbox.Message(nil), s.messages...),
	}
	for k, v := range s.txns {
		snap.txns[k] = v
	}
	for k, v := range s.rows {
		snap.rows[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = snap.txns
	s.rows = snap.rows
	s.messages = snap.messages
}

func (s *memoryStore) row(date time.Time) (balance.DailyBalance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[shared.FormatDate(date)]
	return row, ok
}

func (s *memoryStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}

func (s *memoryStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// memoryTxRunner restores the store when fn fails, like a rollback
type memoryTxRunner struct {
	store *memoryStore
}

func (r *memoryTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type memoryTransactionRepo struct {
	store *memoryStore
}

func (r *memoryTransactionRepo) Create(ctx context.Context, txn *ledger.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.txns[txn.VoucherNumber]; ok {
		return ledger.ErrDuplicateVoucher{VoucherNumber: txn.VoucherNumber}
	}
	r.store.txns[txn.VoucherNumber] = *txn
	return nil
}

func (r *memoryTransactionRepo) GetByVoucher(ctx context.Context, voucherNumber string) (*ledger.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[voucherNumber]
	if !ok {
		return nil, ledger.NotFound(voucherNumber)
	}
	return &txn, nil
}

func (r *memoryTransactionRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*ledger.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txns := make([]*ledger.Transaction, 0)
	for _, txn := range r.store.txns {
		if txn.BusinessDate.Before(start) || txn.BusinessDate.After(end) {
			continue
		}
		txn := txn
		txns = append(txns, &txn)
	}
	sort.Slice(txns, func(a, b int) bool {
		if !txns[a].BusinessDate.Equal(txns[b].BusinessDate) {
			return txns[a].BusinessDate.Before(txns[b].BusinessDate)
		}
		return txns[a].VoucherNumber < txns[b].VoucherNumber
	})
	return txns, nil
}

func (r *memoryTransactionRepo) SumByTypeAndDate(ctx context.Context, date time.Time, txnType shared.TransactionType) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sum := decimal.Zero
	for _, txn := range r.store.txns {
		if txn.Type == txnType && txn.BusinessDate.Equal(date) {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

func (r *memoryTransactionRepo) WithTx(tx pgx.Tx) ledger.Repository {
	return r
}

type memoryBalanceRepo struct {
	store *memoryStore
}

func (r *memoryBalanceRepo) LockDate(ctx context.Context, date time.Time) error {
	return nil
}

func (r *memoryBalanceRepo) GetByDate(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	row, ok := r.store.row(date)
	if !ok {
		return nil, balance.ErrBalanceNotFound{Date: date}
	}
	return &row, nil
}

func (r *memoryBalanceRepo) GetLatestBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var latest *balance.DailyBalance
	for _, row := range r.store.rows {
		if !row.Date.Before(date) {
			continue
		}
		if latest == nil || row.Date.After(latest.Date) {
			row := row
			latest = &row
		}
	}
	return latest, nil
}

func (r *memoryBalanceRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*balance.DailyBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rows := make([]*balance.DailyBalance, 0)
	for _, row := range r.store.rows {
		if row.Date.Before(start) || row.Date.After(end) {
			continue
		}
		row := row
		rows = append(rows, &row)
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].Date.Before(rows[b].Date) })
	return rows, nil
}

func (r *memoryBalanceRepo) Create(ctx context.Context, b *balance.DailyBalance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := shared.FormatDate(b.Date)
	if _, ok := r.store.rows[key]; ok {
		return balance.ErrDuplicateBalance{Date: b.Date}
	}
	r.store.rows[key] = *b
	return nil
}

func (r *memoryBalanceRepo) Update(ctx context.Context, b *balance.DailyBalance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := shared.FormatDate(b.Date)
	stored, ok := r.store.rows[key]
	if !ok || stored.Version != b.Version-1 {
		return balance.ErrVersionConflict(b.Date)
	}
	r.store.rows[key] = *b
	return nil
}

func (r *memoryBalanceRepo) WithTx(tx pgx.Tx) balance.Repository {
	return r
}

type memoryOutboxRepo struct {
	store *memoryStore
}

func (r *memoryOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failOutbox != nil {
		return r.store.failOutbox
	}
	message.ID = int64(len(r.store.messages) + 1)
	r.store.messages = append(r.store.messages, *message)
	return nil
}

func (r *memoryOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pending := make([]*outbox.Message, 0)
	for i := range r.store.messages {
		if len(pending) == limit {
			break
		}
		if r.store.messages[i].Status == shared.OutboxStatusPending {
			msg := r.store.messages[i]
			pending = append(pending, &msg)
		}
	}
	return pending, nil
}

func (r *memoryOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.messages {
		if r.store.messages[i].ID == id {
			r.store.messages[i].Status = status
			return nil
		}
	}
	return outbox.ErrMessageNotFound{ID: id}
}

func (r *memoryOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.messages {
		if r.store.messages[i].ID == id {
			r.store.messages[i].Attempts++
			return nil
		}
	}
	return outbox.ErrMessageNotFound{ID: id}
}

func (r *memoryOutboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return r
}
