package ledger

import (
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// GoalProgress describes how far a single goal has come, in its own currency.
type GoalProgress struct {
	Goal model.Goal
	// Progress is CurrentAmount / TargetAmount clamped to [0, 1].
	Progress  decimal.Decimal
	Remaining decimal.Decimal
}

// GoalsSummary totals goals in the base currency.
type GoalsSummary struct {
	Currency model.Currency
	Goals    []GoalProgress
	Saved    decimal.Decimal
	Target   decimal.Decimal
}

// SummarizeGoals reports per-goal progress and base-currency totals.
func SummarizeGoals(goals []model.Goal, settings *model.Settings) (GoalsSummary, error) {
	conv, err := NewConverter(settings)
	if err != nil {
		return GoalsSummary{}, err
	}
	return summarizeGoals(goals, conv), nil
}

func summarizeGoals(goals []model.Goal, conv *Converter) GoalsSummary {
	sum := GoalsSummary{
		Currency: conv.Base(),
		Goals:    make([]GoalProgress, 0, len(goals)),
		Saved:    decimal.Zero,
		Target:   decimal.Zero,
	}

	for _, g := range goals {
		sum.Goals = append(sum.Goals, goalProgress(g))
		sum.Saved = sum.Saved.Add(conv.ToBase(g.CurrentAmount, g.Currency))
		sum.Target = sum.Target.Add(conv.ToBase(g.TargetAmount, g.Currency))
	}

	return sum
}

func goalProgress(g model.Goal) GoalProgress {
	p := GoalProgress{
		Goal:      g,
		Progress:  decimal.Zero,
		Remaining: decimal.Max(g.TargetAmount.Sub(g.CurrentAmount), decimal.Zero),
	}

	switch {
	case g.Status == model.GoalDone:
		p.Progress = one
	case g.TargetAmount.IsPositive():
		p.Progress = decimal.Min(decimal.Max(g.CurrentAmount.Div(g.TargetAmount), decimal.Zero), one)
	}

	return p
}
