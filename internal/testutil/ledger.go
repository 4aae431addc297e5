package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultDate is the occurrence date given to seeded operations.
var DefaultDate = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// LedgerBuilder collects ledger records for seeding a test database.
//
// Example:
//
//	ledger := testutil.NewLedger().
//		Rates(model.EUR, "1.1").
//		Income("Cash", "100", model.USD, "Donations").
//		Borrowed("Bank", "50", model.EUR)
type LedgerBuilder struct {
	settings   *model.Settings
	operations []model.Operation
	debts      []model.Debt
	goals      []model.Goal
	wallets    []string
}

// NewLedger returns an empty builder.
func NewLedger() *LedgerBuilder {
	return &LedgerBuilder{}
}

// Wallet configures a wallet.
func (b *LedgerBuilder) Wallet(names ...string) *LedgerBuilder {
	b.wallets = append(b.wallets, names...)
	return b
}

// Base sets the base currency.
func (b *LedgerBuilder) Base(c model.Currency) *LedgerBuilder {
	b.ensureSettings().BaseCurrency = c
	return b
}

// Rates sets the rate of c in units of the base currency.
func (b *LedgerBuilder) Rates(c model.Currency, rate string) *LedgerBuilder {
	b.ensureSettings().Rates[c] = decimal.RequireFromString(rate)
	return b
}

func (b *LedgerBuilder) ensureSettings() *model.Settings {
	if b.settings == nil {
		s := model.DefaultSettings()
		b.settings = &s
	}
	return b.settings
}

// Income records an income operation.
func (b *LedgerBuilder) Income(wallet, amount string, c model.Currency, category string) *LedgerBuilder {
	return b.Operation(model.Operation{
		Type:     model.OperationIncome,
		Wallet:   wallet,
		Amount:   decimal.RequireFromString(amount),
		Currency: c,
		Category: category,
	})
}

// Expense records an expense operation.
func (b *LedgerBuilder) Expense(wallet, amount string, c model.Currency, category string) *LedgerBuilder {
	return b.Operation(model.Operation{
		Type:     model.OperationExpense,
		Wallet:   wallet,
		Amount:   decimal.RequireFromString(amount),
		Currency: c,
		Category: category,
	})
}

// Operation records op, filling in an id and date when they are unset.
func (b *LedgerBuilder) Operation(op model.Operation) *LedgerBuilder {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.OccurredAt.IsZero() {
		op.OccurredAt = DefaultDate.Add(time.Duration(len(b.operations)) * time.Minute)
	}
	b.operations = append(b.operations, op)
	return b
}

// Borrowed records an open borrowed debt.
func (b *LedgerBuilder) Borrowed(wallet, amount string, c model.Currency) *LedgerBuilder {
	return b.Debt(model.Debt{Type: model.DebtBorrowed, Wallet: wallet, Amount: decimal.RequireFromString(amount), Currency: c})
}

// Lent records an open lent debt.
func (b *LedgerBuilder) Lent(wallet, amount string, c model.Currency) *LedgerBuilder {
	return b.Debt(model.Debt{Type: model.DebtLent, Wallet: wallet, Amount: decimal.RequireFromString(amount), Currency: c})
}

// Debt records d, filling in an id and status when they are unset.
func (b *LedgerBuilder) Debt(d model.Debt) *LedgerBuilder {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = model.DebtOpen
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = DefaultDate.Add(time.Duration(len(b.debts)) * time.Minute)
	}
	b.debts = append(b.debts, d)
	return b
}

// Goal records an active savings goal.
func (b *LedgerBuilder) Goal(title, target, current string, c model.Currency) *LedgerBuilder {
	b.goals = append(b.goals, model.Goal{
		ID:            uuid.NewString(),
		Title:         title,
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
		Status:        model.GoalActive,
		Currency:      c,
		CreatedAt:     DefaultDate.Add(time.Duration(len(b.goals)) * time.Minute),
	})
	return b
}

// Operations returns the collected operations.
func (b *LedgerBuilder) Operations() []model.Operation {
	return b.operations
}

// Debts returns the collected debts.
func (b *LedgerBuilder) Debts() []model.Debt {
	return b.debts
}

// Goals returns the collected goals.
func (b *LedgerBuilder) Goals() []model.Goal {
	return b.goals
}

// Seed writes everything collected into store.
func (b *LedgerBuilder) Seed(ctx context.Context, store service.Storage) error {
	for _, name := range b.wallets {
		if _, err := store.CreateWallet(ctx, name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
	}
	if b.settings != nil {
		if err := store.SaveSettings(ctx, b.settings); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	if len(b.operations) > 0 {
		if err := store.SaveOperations(ctx, b.operations); err != nil {
			return fmt.Errorf("operations: %w", err)
		}
	}
	for i := range b.debts {
		if err := store.SaveDebt(ctx, &b.debts[i]); err != nil {
			return fmt.Errorf("debt %s: %w", b.debts[i].ID, err)
		}
	}
	for i := range b.goals {
		if err := store.SaveGoal(ctx, &b.goals[i]); err != nil {
			return fmt.Errorf("goal %s: %w", b.goals[i].Title, err)
		}
	}
	return nil
}
