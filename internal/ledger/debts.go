package ledger

import (
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// DebtCashPolicy is the sign a debt of each type applies to available cash.
// Borrowed money is sitting in a wallet; lent money has left one.
var DebtCashPolicy = map[model.DebtType]int64{
	model.DebtBorrowed: 1,
	model.DebtLent:     -1,
}

// debtKind folds anything that is not borrowed into lent, matching how the
// totals are bucketed.
func debtKind(t model.DebtType) model.DebtType {
	if t == model.DebtBorrowed {
		return model.DebtBorrowed
	}
	return model.DebtLent
}

// debtCashEffect is the signed amount an open debt moves through its wallet.
func debtCashEffect(d model.Debt, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(DebtCashPolicy[debtKind(d.Type)]))
}

// movesCash reports whether a debt contributes to cash balances.
func movesCash(d model.Debt) bool {
	return d.IsOpen() && !d.Existing
}

// DebtSummary totals open debts in the base currency.
type DebtSummary struct {
	Borrowed      decimal.Decimal
	Lent          decimal.Decimal
	BalanceEffect decimal.Decimal
}

// SummarizeDebts totals open debts. Closed debts are ignored entirely;
// existing debts count toward Borrowed and Lent but not BalanceEffect.
func SummarizeDebts(debts []model.Debt, settings *model.Settings) (DebtSummary, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return DebtSummary{}, err
	}
	return summarizeDebts(debts, conv), nil
}

func summarizeDebts(debts []model.Debt, conv *Converter) DebtSummary {
	sum := DebtSummary{
		Borrowed:      decimal.Zero,
		Lent:          decimal.Zero,
		BalanceEffect: decimal.Zero,
	}

	for _, d := range debts {
		if !d.IsOpen() {
			continue
		}

		amount := conv.ToBase(d.Amount, d.Currency)
		if debtKind(d.Type) == model.DebtBorrowed {
			sum.Borrowed = sum.Borrowed.Add(amount)
		} else {
			sum.Lent = sum.Lent.Add(amount)
		}

		if movesCash(d) {
			sum.BalanceEffect = sum.BalanceEffect.Add(debtCashEffect(d, amount))
		}
	}

	return sum
}
