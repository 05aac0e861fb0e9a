package shared

// TransactionType classifies a cash book entry
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// PaymentMethod defines how money moved
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodBank          PaymentMethod = "bank"
	PaymentMethodMobileBanking PaymentMethod = "mobile_banking"
	PaymentMethodCheck         PaymentMethod = "check"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodMobileBanking, PaymentMethodCheck:
		return true
	}
	return false
}

// TransactionStatus defines approval states of an entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names the cash book events fanned out through the outbox
type EventType string

const (
	EventTypeTransactionRecorded EventType = "transaction.recorded"
	EventTypeOpeningBalanceSet   EventType = "balance.opening_set"
	EventTypeAccountBalancesSet  EventType = "balance.accounts_set"
)
