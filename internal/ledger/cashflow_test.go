package ledger

import (
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashFlow(t *testing.T) {
	march := service.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
	}

	repayment := expense("30", model.USD, "Cash", "loans")
	repayment.Source = model.DebtPaymentSource(d("30"))

	transferOut := expense("15", model.USD, "Cash", model.CategoryTransfer)
	transferOut.Source = model.Source{}.With(model.SourceTransfer, "t-1")
	transferIn := income("15", model.USD, "Bank")
	transferIn.Category = model.CategoryTransfer
	transferIn.Source = transferOut.Source

	outside := income("999", model.USD, "Cash")
	outside.OccurredAt = time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	ops := []model.Operation{
		income("200", model.USD, "Cash"),
		expense("20", model.EUR, "Cash", "food"),
		expense("10", model.USD, "Cash", " "),
		expense("40", model.USD, "Cash", "ROOF"),
		repayment,
		transferOut,
		transferIn,
		outside,
	}
	goals := []model.Goal{{Title: "Roof"}}

	flow, err := CashFlow(ops, goals, usdSettings(), march)
	require.NoError(t, err)

	assert.Equal(t, model.USD, flow.Currency)
	assertDecimal(t, "200", flow.TotalIncome, "income")
	assertDecimal(t, "62", flow.TotalExpenses, "expenses")
	assertDecimal(t, "40", flow.TotalSavings, "savings")
	assertDecimal(t, "30", flow.TotalRepayments, "repayments")
	assertDecimal(t, "15", flow.TransferTotal, "transfers")
	assertDecimal(t, "138", flow.NetCashFlow, "net")

	assert.Equal(t, 1, flow.IncomeByCategory["donations"].Count)
	assertDecimal(t, "22", flow.ExpensesByCategory["food"].Amount)
	assert.Contains(t, flow.ExpensesByCategory, "Uncategorized")
	assertDecimal(t, "40", flow.SavingsByGoal["Roof"].Amount)

	assert.Equal(t, []string{"loans", "food", "Uncategorized"}, SortedCategories(flow.ExpensesByCategory))
	require.NotEmpty(t, flow.Insights)
	assert.Contains(t, flow.Insights[0], "loans")
}

func TestCashFlow_NilSettings(t *testing.T) {
	_, err := CashFlow(nil, nil, nil, service.DateRange{})
	require.ErrorIs(t, err, ErrNilSettings)
}
