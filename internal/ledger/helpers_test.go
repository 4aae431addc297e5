package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usdSettings() *model.Settings {
	return &model.Settings{
		BaseCurrency: model.USD,
		Rates: map[model.Currency]decimal.Decimal{
			model.USD: d("1"),
			model.EUR: d("1.1"),
			model.GEL: d("0.37"),
			model.RUB: d("0.011"),
		},
	}
}

func income(amount string, currency model.Currency, wallet string) model.Operation {
	return model.Operation{
		ID:         "inc-" + amount,
		Type:       model.OperationIncome,
		Amount:     d(amount),
		Currency:   currency,
		Wallet:     wallet,
		Category:   "donations",
		OccurredAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func expense(amount string, currency model.Currency, wallet, category string) model.Operation {
	return model.Operation{
		ID:         "exp-" + amount,
		Type:       model.OperationExpense,
		Amount:     d(amount),
		Currency:   currency,
		Wallet:     wallet,
		Category:   category,
		OccurredAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func debt(t model.DebtType, amount string, currency model.Currency, wallet string) model.Debt {
	return model.Debt{
		ID:       "debt-" + string(t) + "-" + amount,
		Type:     t,
		Amount:   d(amount),
		Currency: currency,
		Status:   model.DebtOpen,
		Wallet:   wallet,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label ...string) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "%s want %s, got %s", strings.Join(label, " "), want, got)
}

func assertClose(t *testing.T, want, got decimal.Decimal, tolerance string) {
	t.Helper()
	assert.True(t, want.Sub(got).Abs().LessThanOrEqual(d(tolerance)),
		"want %s within %s, got %s", want, tolerance, got)
}
