// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Ledger errors.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameWallet        = errors.New("source and destination wallet are the same")
	ErrDebtClosed        = errors.New("debt is already closed")
	ErrInvalidInput      = errors.New("invalid input")

	// Exchange rate errors.
	ErrRateFetch       = errors.New("exchange rate fetch failed")
	ErrRateUnavailable = errors.New("no exchange rates available")

	// Access errors.
	ErrForbidden = errors.New("operation requires the editor role")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// userSentinels are expected ledger failures whose text is fit to show as is.
var userSentinels = []error{
	ErrInvalidInput,
	ErrInsufficientFunds,
	ErrNotFound,
	ErrDuplicateEntry,
	ErrDebtClosed,
	ErrSameWallet,
	ErrForbidden,
}

// AsUserError wraps err in a UserError when it stems from an expected ledger
// failure. Other errors, and errors that already are UserErrors, pass through.
func AsUserError(err error) error {
	if err == nil {
		return nil
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}
	for _, target := range userSentinels {
		if errors.Is(err, target) {
			return NewUserError(err.Error(), err)
		}
	}
	return err
}

// UserMessage is the text to print for err: the UserError message if there
// is one in the chain, the full error otherwise.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
