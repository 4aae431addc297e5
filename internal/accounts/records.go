package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
)

// RecordOperation validates and stores a single income or expense. A blank
// ID, date or currency is filled in.
func (s *Service) RecordOperation(ctx context.Context, op model.Operation) (*model.Operation, error) {
	if !op.Type.IsValid() {
		return nil, fmt.Errorf("%w: operation type must be income or expense", common.ErrInvalidInput)
	}
	if !op.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}
	if strings.EqualFold(strings.TrimSpace(op.Category), model.CategoryTransfer) {
		return nil, fmt.Errorf("%w: use a transfer to move money between wallets", common.ErrInvalidInput)
	}

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if op.Currency, err = resolveCurrency(op.Currency, settings.BaseCurrency); err != nil {
		return nil, err
	}

	if op.ID == "" {
		op.ID = s.newID()
	}
	if op.OccurredAt.IsZero() {
		op.OccurredAt = s.now()
	}
	op.Wallet = strings.TrimSpace(op.Wallet)
	op.Category = strings.TrimSpace(op.Category)

	if err := s.storage.SaveOperations(ctx, []model.Operation{op}); err != nil {
		return nil, err
	}
	return &op, nil
}

// OpenDebt stores a new open debt.
func (s *Service) OpenDebt(ctx context.Context, debt model.Debt) (*model.Debt, error) {
	switch debt.Type {
	case model.DebtBorrowed, model.DebtLent:
	default:
		return nil, fmt.Errorf("%w: debt type must be borrowed or lent", common.ErrInvalidInput)
	}
	if !debt.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if debt.Currency, err = resolveCurrency(debt.Currency, settings.BaseCurrency); err != nil {
		return nil, err
	}

	if debt.ID == "" {
		debt.ID = s.newID()
	}
	if debt.CreatedAt.IsZero() {
		debt.CreatedAt = s.now()
	}
	debt.Status = model.DebtOpen
	debt.Wallet = strings.TrimSpace(debt.Wallet)

	if err := s.storage.SaveDebt(ctx, &debt); err != nil {
		return nil, err
	}
	return &debt, nil
}

// CloseDebt marks a debt as settled.
func (s *Service) CloseDebt(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx service.Transaction) error {
		debt, err := tx.GetDebtByID(ctx, id)
		if err != nil {
			return err
		}
		if !debt.IsOpen() {
			return fmt.Errorf("debt %s: %w", id, common.ErrDebtClosed)
		}
		return tx.UpdateDebtStatus(ctx, id, model.DebtClosed)
	})
}

// CreateGoal stores a new active savings goal. Titles must be unique
// ignoring case, since expenses are matched to goals by title.
func (s *Service) CreateGoal(ctx context.Context, goal model.Goal) (*model.Goal, error) {
	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Title == "" {
		return nil, fmt.Errorf("%w: goal title is required", common.ErrInvalidInput)
	}
	if !goal.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: target must be positive", common.ErrInvalidInput)
	}

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if goal.Currency, err = resolveCurrency(goal.Currency, settings.BaseCurrency); err != nil {
		return nil, err
	}

	existing, err := s.storage.GetGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	for _, g := range existing {
		if strings.EqualFold(strings.TrimSpace(g.Title), goal.Title) {
			return nil, fmt.Errorf("goal %q: %w", goal.Title, common.ErrDuplicateEntry)
		}
	}

	if goal.ID == "" {
		goal.ID = s.newID()
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = s.now()
	}
	goal.Status = model.GoalActive

	if err := s.storage.SaveGoal(ctx, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}
