package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidDebt      = errors.New("invalid debt")
	ErrInvalidGoal      = errors.New("invalid goal")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateOperations(operations []model.Operation) error {
	if operations == nil {
		return fmt.Errorf("%w: operations", ErrNilParameter)
	}
	if len(operations) == 0 {
		return fmt.Errorf("%w: operations", ErrEmptySlice)
	}

	for i := range operations {
		if err := validateOperation(&operations[i]); err != nil {
			return fmt.Errorf("operation at index %d: %w", i, err)
		}
	}
	return nil
}

// validateOperation checks the fields the ledger cannot default. Currency and
// wallet may be blank; the calculations treat those as base currency and
// "no wallet".
func validateOperation(op *model.Operation) error {
	if op == nil {
		return fmt.Errorf("%w: operation", ErrNilParameter)
	}
	if op.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidOperation)
	}
	if !op.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
	if op.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidOperation)
	}
	if !op.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	}
	return nil
}

func validateDebt(debt *model.Debt) error {
	if debt == nil {
		return fmt.Errorf("%w: debt", ErrNilParameter)
	}
	if debt.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidDebt)
	}
	if err := validateDebtAmount(debt.Amount); err != nil {
		return err
	}
	if debt.Status != "" {
		if err := validateDebtStatus(debt.Status); err != nil {
			return err
		}
	}
	return nil
}

func validateDebtAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDebt)
	}
	return nil
}

func validateDebtStatus(status model.DebtStatus) error {
	switch status {
	case model.DebtOpen, model.DebtClosed:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}

func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if goal.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidGoal)
	}
	if strings.TrimSpace(goal.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidGoal)
	}
	if !goal.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	}
	if goal.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: negative current amount", ErrInvalidGoal)
	}
	switch goal.Status {
	case "", model.GoalActive, model.GoalDone:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, goal.Status)
	}
	return nil
}

func validateSettings(settings *model.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}
	if !settings.BaseCurrency.IsSupported() {
		return fmt.Errorf("%w: unsupported base currency %q", ErrInvalidSettings, settings.BaseCurrency)
	}
	for currency, rate := range settings.Rates {
		if !rate.IsPositive() {
			return fmt.Errorf("%w: rate for %s must be positive", ErrInvalidSettings, currency)
		}
	}
	return nil
}
