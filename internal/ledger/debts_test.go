package ledger

import (
	"testing"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDebts(t *testing.T) {
	existing := func(dbt model.Debt) model.Debt {
		dbt.Existing = true
		return dbt
	}
	closed := func(dbt model.Debt) model.Debt {
		dbt.Status = model.DebtClosed
		return dbt
	}

	tests := []struct {
		name         string
		debts        []model.Debt
		wantBorrowed string
		wantLent     string
		wantEffect   string
	}{
		{
			name:         "no debts",
			wantBorrowed: "0", wantLent: "0", wantEffect: "0",
		},
		{
			name:         "borrowed increases available cash",
			debts:        []model.Debt{debt(model.DebtBorrowed, "50", model.USD, "Cash")},
			wantBorrowed: "50", wantLent: "0", wantEffect: "50",
		},
		{
			name:         "lent decreases available cash",
			debts:        []model.Debt{debt(model.DebtLent, "50", model.USD, "Cash")},
			wantBorrowed: "0", wantLent: "50", wantEffect: "-50",
		},
		{
			name:         "existing borrowed debt is tracked but moves no cash",
			debts:        []model.Debt{existing(debt(model.DebtBorrowed, "50", model.USD, "Cash"))},
			wantBorrowed: "50", wantLent: "0", wantEffect: "0",
		},
		{
			name:         "existing lent debt is tracked but moves no cash",
			debts:        []model.Debt{existing(debt(model.DebtLent, "30", model.USD, "Cash"))},
			wantBorrowed: "0", wantLent: "30", wantEffect: "0",
		},
		{
			name:         "closed debts are inert",
			debts:        []model.Debt{closed(debt(model.DebtBorrowed, "50", model.USD, "Cash"))},
			wantBorrowed: "0", wantLent: "0", wantEffect: "0",
		},
		{
			name: "mixed currencies convert to base",
			debts: []model.Debt{
				debt(model.DebtBorrowed, "100", model.EUR, "Bank"),
				debt(model.DebtLent, "20", model.USD, "Cash"),
			},
			wantBorrowed: "110", wantLent: "20", wantEffect: "90",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := SummarizeDebts(tt.debts, usdSettings())
			require.NoError(t, err)
			assertDecimal(t, tt.wantBorrowed, sum.Borrowed, "borrowed")
			assertDecimal(t, tt.wantLent, sum.Lent, "lent")
			assertDecimal(t, tt.wantEffect, sum.BalanceEffect, "balance effect")
		})
	}
}

func TestSummarizeDebts_ClosingRemovesContribution(t *testing.T) {
	open := debt(model.DebtLent, "40", model.EUR, "Cash")
	other := debt(model.DebtBorrowed, "10", model.USD, "Cash")

	before, err := SummarizeDebts([]model.Debt{open, other}, usdSettings())
	require.NoError(t, err)

	open.Status = model.DebtClosed
	after, err := SummarizeDebts([]model.Debt{open, other}, usdSettings())
	require.NoError(t, err)

	assertDecimal(t, "44", before.Lent)
	assertDecimal(t, "0", after.Lent)
	assertDecimal(t, "10", after.Borrowed)
	assertDecimal(t, "10", after.BalanceEffect)
	assertDecimal(t, "-34", before.BalanceEffect)
}

func TestSummarizeDebts_OrderIndependent(t *testing.T) {
	debts := []model.Debt{
		debt(model.DebtBorrowed, "12.34", model.EUR, "A"),
		debt(model.DebtLent, "5.67", model.GEL, "B"),
		debt(model.DebtBorrowed, "1000", model.RUB, "C"),
	}
	reversed := []model.Debt{debts[2], debts[1], debts[0]}

	a, err := SummarizeDebts(debts, usdSettings())
	require.NoError(t, err)
	b, err := SummarizeDebts(reversed, usdSettings())
	require.NoError(t, err)

	assertDecimal(t, a.Borrowed.String(), b.Borrowed)
	assertDecimal(t, a.Lent.String(), b.Lent)
	assertDecimal(t, a.BalanceEffect.String(), b.BalanceEffect)
}

func TestSummarizeDebts_NilSettings(t *testing.T) {
	_, err := SummarizeDebts(nil, nil)
	require.ErrorIs(t, err, ErrNilSettings)
}
