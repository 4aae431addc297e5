// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// OperationFilter defines filtering options for operation queries.
type OperationFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Wallet    string
	Type      model.OperationType
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Operation operations
	SaveOperations(ctx context.Context, operations []model.Operation) error
	GetOperations(ctx context.Context, filter OperationFilter) ([]model.Operation, error)
	GetOperationByID(ctx context.Context, id string) (*model.Operation, error)
	DeleteOperation(ctx context.Context, id string) error

	// Debt operations
	SaveDebt(ctx context.Context, debt *model.Debt) error
	GetDebts(ctx context.Context) ([]model.Debt, error)
	GetDebtByID(ctx context.Context, id string) (*model.Debt, error)
	UpdateDebtStatus(ctx context.Context, id string, status model.DebtStatus) error
	UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal) error

	// Goal operations
	SaveGoal(ctx context.Context, goal *model.Goal) error
	GetGoals(ctx context.Context) ([]model.Goal, error)
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	AddGoalContribution(ctx context.Context, id string, amount decimal.Decimal) error

	// Wallet operations
	CreateWallet(ctx context.Context, name string) (*model.Wallet, error)
	GetWallets(ctx context.Context, includeArchived bool) ([]model.Wallet, error)
	ArchiveWallet(ctx context.Context, name string) error

	// Settings operations
	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings *model.Settings) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range. A zero bound is open.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// CategorySummary contains aggregated statistics for a category.
type CategorySummary struct {
	Amount decimal.Decimal
	Count  int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CashFlowSummary contains income, expense, and net flow calculations
// expressed in Currency.
type CashFlowSummary struct {
	DateRange          DateRange
	IncomeByCategory   map[string]CategorySummary
	ExpensesByCategory map[string]CategorySummary
	SavingsByGoal      map[string]CategorySummary
	Currency           model.Currency
	Insights           []string
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	TotalSavings       decimal.Decimal
	TotalRepayments    decimal.Decimal
	NetCashFlow        decimal.Decimal
	TransferTotal      decimal.Decimal
}
