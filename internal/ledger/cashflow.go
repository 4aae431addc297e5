package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"
)

const uncategorized = "Uncategorized"

var hundred = decimal.NewFromInt(100)

// CashFlow reports income and spending by category for operations inside
// period, in the base currency. Goal contributions are reported as savings
// rather than expenses, and transfer legs only count toward TransferTotal.
func CashFlow(ops []model.Operation, goals []model.Goal, settings *model.Settings, period service.DateRange) (*service.CashFlowSummary, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return nil, err
	}

	titles := NewGoalTitleSet(GoalTitles(goals))
	canonicalGoal := make(map[string]string, len(goals))
	for _, g := range goals {
		if _, seen := canonicalGoal[goalKey(g.Title)]; !seen {
			canonicalGoal[goalKey(g.Title)] = strings.TrimSpace(g.Title)
		}
	}

	flow := &service.CashFlowSummary{
		DateRange:          period,
		Currency:           conv.Base(),
		IncomeByCategory:   make(map[string]service.CategorySummary),
		ExpensesByCategory: make(map[string]service.CategorySummary),
		SavingsByGoal:      make(map[string]service.CategorySummary),
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		TotalSavings:       decimal.Zero,
		TotalRepayments:    decimal.Zero,
		NetCashFlow:        decimal.Zero,
		TransferTotal:      decimal.Zero,
	}

	for _, op := range ops {
		if !op.Type.IsValid() || !period.Contains(op.OccurredAt) {
			continue
		}
		amount := conv.ToBase(op.Amount, op.Currency)

		switch {
		case op.IsTransfer():
			if op.Type == model.OperationExpense {
				flow.TransferTotal = flow.TransferTotal.Add(amount)
			}
		case titles.IsGoalContribution(op):
			addToCategory(flow.SavingsByGoal, canonicalGoal[goalKey(op.Category)], amount)
			flow.TotalSavings = flow.TotalSavings.Add(amount)
		case op.Type == model.OperationIncome:
			addToCategory(flow.IncomeByCategory, categoryName(op.Category), amount)
			flow.TotalIncome = flow.TotalIncome.Add(amount)
		default:
			addToCategory(flow.ExpensesByCategory, categoryName(op.Category), amount)
			flow.TotalExpenses = flow.TotalExpenses.Add(amount)
			if repaid := op.Source.DebtPayment(); repaid.IsPositive() {
				flow.TotalRepayments = flow.TotalRepayments.Add(conv.ToBase(repaid, op.Currency))
			}
		}
	}

	flow.NetCashFlow = flow.TotalIncome.Sub(flow.TotalExpenses)
	flow.Insights = cashFlowInsights(flow)

	return flow, nil
}

func categoryName(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return uncategorized
}

func addToCategory(m map[string]service.CategorySummary, category string, amount decimal.Decimal) {
	s := m[category]
	s.Amount = s.Amount.Add(amount)
	s.Count++
	m[category] = s
}

// SortedCategories returns category names ordered by amount, largest first.
func SortedCategories(m map[string]service.CategorySummary) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := m[names[i]].Amount, m[names[j]].Amount
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return names[i] < names[j]
	})
	return names
}

func cashFlowInsights(flow *service.CashFlowSummary) []string {
	var insights []string

	if top := SortedCategories(flow.ExpensesByCategory); len(top) > 0 && flow.TotalExpenses.IsPositive() {
		amount := flow.ExpensesByCategory[top[0]].Amount
		share := amount.Div(flow.TotalExpenses).Mul(hundred)
		insights = append(insights, fmt.Sprintf("Largest expense category: %s (%s%% of spending)",
			top[0], share.StringFixed(0)))
	}

	if flow.TotalIncome.IsPositive() && flow.TotalSavings.IsPositive() {
		rate := flow.TotalSavings.Div(flow.TotalIncome).Mul(hundred)
		insights = append(insights, fmt.Sprintf("Set aside %s%% of income toward goals", rate.StringFixed(0)))
	}

	if flow.NetCashFlow.IsNegative() {
		insights = append(insights, fmt.Sprintf("Spending exceeded income by %s %s",
			flow.NetCashFlow.Abs().StringFixed(2), flow.Currency))
	}

	if flow.TotalRepayments.IsPositive() {
		insights = append(insights, fmt.Sprintf("%s %s of spending repaid debts",
			flow.TotalRepayments.StringFixed(2), flow.Currency))
	}

	return insights
}
