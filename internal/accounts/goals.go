package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"
)

// Contribution sets money from a wallet aside for a goal.
type Contribution struct {
	OccurredAt time.Time
	Amount     decimal.Decimal
	GoalID     string
	Wallet     string
	Comment    string
}

// Contribute records an expense categorized with the goal's title and adds
// the amount to the goal, in one transaction. The amount is in the goal's
// currency.
func (s *Service) Contribute(ctx context.Context, c Contribution) (*model.Goal, error) {
	if !c.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}
	wallet := strings.TrimSpace(c.Wallet)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", common.ErrInvalidInput)
	}

	var updated *model.Goal
	err := s.inTx(ctx, func(tx service.Transaction) error {
		goal, err := tx.GetGoalByID(ctx, c.GoalID)
		if err != nil {
			return err
		}

		snap, err := LoadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		currency, err := resolveCurrency(goal.Currency, snap.Settings.BaseCurrency)
		if err != nil {
			return err
		}

		balances, err := snap.WalletBalances()
		if err != nil {
			return err
		}
		if err := ledger.CheckTransfer(balances, wallet, currency, c.Amount); err != nil {
			return err
		}

		occurred := c.OccurredAt
		if occurred.IsZero() {
			occurred = s.now()
		}
		op := model.Operation{
			ID:         s.newID(),
			Type:       model.OperationExpense,
			Amount:     c.Amount,
			Currency:   currency,
			Category:   goal.Title,
			Wallet:     canonicalWallet(balances, wallet),
			Comment:    c.Comment,
			OccurredAt: occurred,
		}
		if err := tx.SaveOperations(ctx, []model.Operation{op}); err != nil {
			return err
		}
		if err := tx.AddGoalContribution(ctx, goal.ID, c.Amount); err != nil {
			return err
		}

		updated, err = tx.GetGoalByID(ctx, goal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
