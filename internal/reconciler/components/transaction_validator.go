package components

import (
	"context"
	"log/slog"
	"strings"

	"github.com/propdesk-cashbook/internal/domain/ledger"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/reconciler/service"
)

type TransactionValidatorImpl struct {
	logger *slog.Logger
}

func NewTransactionValidator(logger *slog.Logger) service.TransactionValidator {
	return &TransactionValidatorImpl{
		logger: logger,
	}
}

// Validate checks a new entry; the first problem found is returned as a shared.ValidationError
func (v *TransactionValidatorImpl) Validate(ctx context.Context, input ledger.RecordInput) error {
	err := validateInput(input)
	if err != nil {
		logger := v.logger
		if id := shared.CorrelationIDFrom(ctx); id != "" {
			logger = v.logger.With("correlation_id", id)
		}
		logger.Warn("Rejected transaction input", "error", err)
	}
	return err
}

func validateInput(input ledger.RecordInput) error {
	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"description", input.Description},
		{"type", string(input.Type)},
		{"category", input.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return shared.ValidationError{Field: r.field, Message: "is required"}
		}
	}

	if !input.Type.IsValid() {
		return shared.ValidationError{Field: "type", Message: "must be income, expense or transfer"}
	}

	if !input.Amount.IsPositive() {
		return shared.ValidationError{Field: "amount", Message: "must be greater than 0"}
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return shared.ValidationError{Field: "amount", Message: "must have at most 2 decimal places"}
	}

	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		return shared.ValidationError{Field: "payment_method", Message: "must be cash, bank, mobile_banking or check"}
	}
	if input.Status != "" && !input.Status.IsValid() {
		return shared.ValidationError{Field: "status", Message: "must be pending, completed or cancelled"}
	}

	return nil
}
