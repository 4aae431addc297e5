package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType distinguishes money coming in from money going out.
type OperationType string

// Operation types.
const (
	OperationIncome  OperationType = "income"
	OperationExpense OperationType = "expense"
)

// IsValid reports whether t is one of the two operation types.
func (t OperationType) IsValid() bool {
	return t == OperationIncome || t == OperationExpense
}

// CategoryTransfer is the category given to both legs of a wallet transfer.
const CategoryTransfer = "transfer"

// Operation is a single income or expense event recorded against a wallet.
type Operation struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	Amount     decimal.Decimal
	ID         string
	Category   string
	Wallet     string
	Comment    string
	Type       OperationType
	Currency   Currency
	Source     Source
}

// Signed returns the amount with income positive and expense negative.
func (o Operation) Signed() decimal.Decimal {
	if o.Type == OperationExpense {
		return o.Amount.Neg()
	}
	return o.Amount
}

// IsTransfer reports whether the operation is one leg of a wallet transfer.
func (o Operation) IsTransfer() bool {
	_, ok := o.Source.TransferID()
	return ok
}
