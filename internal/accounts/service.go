// Package accounts orchestrates the ledger: it loads snapshots from storage,
// runs the valuation engine over them, and performs the multi-record writes
// (transfers, repayments, goal contributions) inside one storage transaction.
package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/google/uuid"
)

// Service is the entry point for reading and changing the cash book.
type Service struct {
	storage service.Storage
	now     func() time.Time
	newID   func() string
}

// New creates a service backed by storage.
func New(storage service.Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// LoadSnapshot reads everything a balance computation needs through q, which
// may be the storage itself or an open transaction.
func LoadSnapshot(ctx context.Context, q service.Storage) (ledger.Snapshot, error) {
	settings, err := q.GetSettings(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load settings: %w", err)
	}

	ops, err := q.GetOperations(ctx, service.OperationFilter{})
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load operations: %w", err)
	}

	debts, err := q.GetDebts(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load debts: %w", err)
	}

	goals, err := q.GetGoals(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load goals: %w", err)
	}

	wallets, err := q.GetWallets(ctx, true)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load wallets: %w", err)
	}

	return ledger.Snapshot{
		Settings:   settings,
		Operations: ops,
		Debts:      debts,
		Goals:      goals,
		Wallets:    wallets,
	}, nil
}

// Snapshot loads the current state of the cash book.
func (s *Service) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	return LoadSnapshot(ctx, s.storage)
}

// Balance computes the organization-wide balance.
func (s *Service) Balance(ctx context.Context) (ledger.BalanceSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ledger.BalanceSummary{}, err
	}
	return ledger.ComputeBalance(snap)
}

// WalletBalances computes per-wallet balances.
func (s *Service) WalletBalances(ctx context.Context) (*ledger.WalletBalances, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.WalletBalances()
}

// Goals reports progress on every savings goal.
func (s *Service) Goals(ctx context.Context) (ledger.GoalsSummary, error) {
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return ledger.GoalsSummary{}, fmt.Errorf("failed to load settings: %w", err)
	}
	goals, err := s.storage.GetGoals(ctx)
	if err != nil {
		return ledger.GoalsSummary{}, fmt.Errorf("failed to load goals: %w", err)
	}
	return ledger.SummarizeGoals(goals, settings)
}

// CashFlow reports income, spending, savings and repayments over period.
func (s *Service) CashFlow(ctx context.Context, period service.DateRange) (*service.CashFlowSummary, error) {
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	filter := service.OperationFilter{}
	if !period.Start.IsZero() {
		filter.StartDate = &period.Start
	}
	if !period.End.IsZero() {
		filter.EndDate = &period.End
	}
	ops, err := s.storage.GetOperations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	goals, err := s.storage.GetGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	return ledger.CashFlow(ops, goals, settings, period)
}

// inTx runs fn inside a storage transaction, committing when fn succeeds.
func (s *Service) inTx(ctx context.Context, fn func(tx service.Transaction) error) error {
	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}

// resolveCurrency validates c, defaulting a blank currency to base.
func resolveCurrency(c model.Currency, base model.Currency) (model.Currency, error) {
	if c == "" {
		return base, nil
	}
	parsed, ok := model.ParseCurrency(string(c))
	if !ok {
		return "", fmt.Errorf("%w: unsupported currency %q", common.ErrInvalidInput, c)
	}
	return parsed, nil
}
