package ledger

import (
	"fmt"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// InsufficientFundsError reports a transfer that would overdraw a wallet.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Wallet    string
	Currency  model.Currency
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%v in %q: available %s %s, requested %s %s",
		common.ErrInsufficientFunds,
		e.Wallet,
		e.Available.StringFixed(2), e.Currency,
		e.Requested.StringFixed(2), e.Currency)
}

func (e *InsufficientFundsError) Unwrap() error {
	return common.ErrInsufficientFunds
}

// Available returns the native amount of currency held in wallet.
// Unknown wallets hold nothing.
func Available(balances *WalletBalances, wallet string, currency model.Currency) decimal.Decimal {
	entry, ok := balances.Get(wallet)
	if !ok {
		return decimal.Zero
	}
	return entry.Native(currency)
}

// CheckTransfer verifies wallet holds enough of currency to move amount.
// Shortfalls within Epsilon are allowed to absorb rounding.
func CheckTransfer(balances *WalletBalances, wallet string, currency model.Currency, amount decimal.Decimal) error {
	available := Available(balances, wallet, currency)
	if available.Sub(amount).LessThan(Epsilon.Neg()) {
		entry, ok := balances.Get(wallet)
		name := wallet
		if ok {
			name = entry.Wallet
		}
		return &InsufficientFundsError{
			Wallet:    name,
			Currency:  currency,
			Available: available,
			Requested: amount,
		}
	}
	return nil
}
