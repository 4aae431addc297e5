package ledger

import (
	"strings"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// GoalTitleSet matches expense categories against savings goal titles,
// ignoring case and surrounding whitespace.
type GoalTitleSet map[string]struct{}

func goalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewGoalTitleSet builds the set from raw titles. Blank titles are skipped.
func NewGoalTitleSet(titles []string) GoalTitleSet {
	set := make(GoalTitleSet, len(titles))
	for _, title := range titles {
		if key := goalKey(title); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// GoalTitles returns the titles of all goals, regardless of status.
func GoalTitles(goals []model.Goal) []string {
	titles := make([]string, 0, len(goals))
	for _, g := range goals {
		titles = append(titles, g.Title)
	}
	return titles
}

// Contains reports whether category names a goal.
func (s GoalTitleSet) Contains(category string) bool {
	_, ok := s[goalKey(category)]
	return ok
}

// IsGoalContribution reports whether op moves money into a savings goal
// rather than spending it.
func (s GoalTitleSet) IsGoalContribution(op model.Operation) bool {
	return op.Type == model.OperationExpense && s.Contains(op.Category)
}

// operationDelta is what a single operation does to cash, both valued in the
// base currency and as the literal amount in its own currency.
type operationDelta struct {
	base     decimal.Decimal
	native   decimal.Decimal
	currency model.Currency
}

// deltaFor returns the effect of op on cash. ok is false for operations that
// do not touch disposable cash: goal contributions and unknown types.
// The debt-payment portion of an expense is credited back, since closing the
// debt already removed it from the balance.
func deltaFor(op model.Operation, goals GoalTitleSet, conv *Converter) (operationDelta, bool) {
	if !op.Type.IsValid() || goals.IsGoalContribution(op) {
		return operationDelta{}, false
	}

	currency := conv.Sanitize(op.Currency)
	d := operationDelta{
		base:     conv.ToBase(op.Amount, currency),
		native:   op.Amount,
		currency: currency,
	}

	if op.Type == model.OperationIncome {
		return d, true
	}

	d.base = d.base.Neg()
	d.native = d.native.Neg()

	if repaid := op.Source.DebtPayment(); repaid.IsPositive() {
		d.base = d.base.Add(conv.ToBase(repaid, currency))
		d.native = d.native.Add(repaid)
	}

	return d, true
}

// SummarizeOperations returns the balance contributed by income and expense
// operations, in the base currency.
func SummarizeOperations(ops []model.Operation, goalTitles []string, settings *model.Settings) (decimal.Decimal, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return decimal.Zero, err
	}
	return summarizeOperations(ops, NewGoalTitleSet(goalTitles), conv), nil
}

func summarizeOperations(ops []model.Operation, goals GoalTitleSet, conv *Converter) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		if d, ok := deltaFor(op, goals, conv); ok {
			total = total.Add(d.base)
		}
	}
	return total
}
