package ledger

import (
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// Snapshot is everything a balance computation reads. Callers load it from
// storage and must not modify it while a computation runs.
type Snapshot struct {
	Settings   *model.Settings
	Operations []model.Operation
	Debts      []model.Debt
	Goals      []model.Goal
	Wallets    []model.Wallet
}

// ActiveWalletNames returns the names of wallets that are not archived.
func (s Snapshot) ActiveWalletNames() []string {
	names := make([]string, 0, len(s.Wallets))
	for _, w := range s.Wallets {
		if !w.Archived {
			names = append(names, w.Name)
		}
	}
	return names
}

// WalletBalances aggregates the snapshot per wallet.
func (s Snapshot) WalletBalances() (*WalletBalances, error) {
	return BuildWalletBalances(s.ActiveWalletNames(), s.Operations, s.Debts, s.Goals, s.Settings)
}

// BalanceSummary is the organization-wide position in Currency.
type BalanceSummary struct {
	Currency model.Currency
	// Balance is cash on hand: Operations + DebtEffect.
	Balance decimal.Decimal
	// NetBalance is Balance with outstanding debts settled:
	// Balance - Borrowed + Lent.
	NetBalance decimal.Decimal
	Operations decimal.Decimal
	DebtEffect decimal.Decimal
	Borrowed   decimal.Decimal
	Lent       decimal.Decimal
	// Savings is the money already set aside in goals.
	Savings decimal.Decimal
}

// ComputeBalance derives the overall position from a snapshot.
func ComputeBalance(s Snapshot) (BalanceSummary, error) {
	conv, err := NewConverter(s.Settings)
	if err != nil {
		return BalanceSummary{}, err
	}

	ops := summarizeOperations(s.Operations, NewGoalTitleSet(GoalTitles(s.Goals)), conv)
	debts := summarizeDebts(s.Debts, conv)
	goals := summarizeGoals(s.Goals, conv)

	balance := ops.Add(debts.BalanceEffect)
	return BalanceSummary{
		Currency:   conv.Base(),
		Balance:    balance,
		NetBalance: balance.Sub(debts.Borrowed).Add(debts.Lent),
		Operations: ops,
		DebtEffect: debts.BalanceEffect,
		Borrowed:   debts.Borrowed,
		Lent:       debts.Lent,
		Savings:    goals.Saved,
	}, nil
}
