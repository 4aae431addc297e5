package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType says which way the money went when the debt was opened.
type DebtType string

// Debt types.
const (
	// DebtBorrowed is money the organization received and owes back.
	DebtBorrowed DebtType = "borrowed"
	// DebtLent is money the organization handed out and expects back.
	DebtLent DebtType = "lent"
)

// DebtStatus is the lifecycle state of a debt.
type DebtStatus string

// Debt statuses.
const (
	DebtOpen   DebtStatus = "open"
	DebtClosed DebtStatus = "closed"
)

// Debt is money owed to or by the organization.
type Debt struct {
	CreatedAt time.Time
	// Amount is what is still owed. Partial repayments lower it.
	Amount      decimal.Decimal
	ID          string
	Wallet      string
	Counterpart string
	Comment     string
	Type        DebtType
	Status      DebtStatus
	Currency    Currency
	// Existing marks a debt that predates the ledger. It is tracked in the
	// borrowed and lent totals but never moved cash through a wallet.
	Existing bool
}

// IsOpen reports whether the debt still counts toward any balance.
func (d Debt) IsOpen() bool {
	return d.Status != DebtClosed
}
