package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"
)

// CategoryDebtRepayment is the category of operations that pay back a debt.
const CategoryDebtRepayment = "Debt repayment"

// RepayRequest pays back part or all of a borrowed debt.
type RepayRequest struct {
	OccurredAt time.Time
	// Amount to pay, in the debt's currency. Zero pays the remainder.
	Amount  decimal.Decimal
	DebtID  string
	Comment string
}

// RepayResult describes a recorded repayment.
type RepayResult struct {
	Operation model.Operation
	Remaining decimal.Decimal
	Closed    bool
}

// RepayDebt records an expense paying back a borrowed debt from the debt's
// wallet. A partial payment lowers the debt's outstanding amount; paying the
// rest closes it.
//
// For a debt that moved cash when it was opened, the expense carries a
// debt-payment tag for the amount paid, and the cash leaves the balance
// through the smaller debt instead. A debt that predates the ledger never
// added cash, so its repayments are plain expenses.
func (s *Service) RepayDebt(ctx context.Context, req RepayRequest) (*RepayResult, error) {
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	var result *RepayResult
	err := s.inTx(ctx, func(tx service.Transaction) error {
		debt, err := tx.GetDebtByID(ctx, req.DebtID)
		if err != nil {
			return err
		}
		if !debt.IsOpen() {
			return fmt.Errorf("debt %s: %w", debt.ID, common.ErrDebtClosed)
		}
		if debt.Type != model.DebtBorrowed {
			return common.NewUserError("only borrowed debts are repaid; close a lent debt once it is returned",
				common.ErrInvalidInput)
		}

		snap, err := LoadSnapshot(ctx, tx)
		if err != nil {
			return err
		}

		remaining := debt.Amount
		amount := req.Amount
		if amount.IsZero() {
			amount = remaining
		}
		if !amount.IsPositive() {
			return fmt.Errorf("%w: nothing left to repay on debt %s", common.ErrInvalidInput, debt.ID)
		}
		if amount.Sub(remaining).GreaterThan(ledger.Epsilon) {
			return fmt.Errorf("%w: repayment %s exceeds remaining %s", common.ErrInvalidInput,
				amount.StringFixed(2), remaining.StringFixed(2))
		}

		currency, err := resolveCurrency(debt.Currency, snap.Settings.BaseCurrency)
		if err != nil {
			return err
		}

		balances, err := snap.WalletBalances()
		if err != nil {
			return err
		}
		if err := ledger.CheckTransfer(balances, debt.Wallet, currency, amount); err != nil {
			return err
		}

		source := model.Source{}
		if !debt.Existing {
			source = model.DebtPaymentSource(amount)
		}
		source = source.With(model.SourceDebt, debt.ID)

		occurred := req.OccurredAt
		if occurred.IsZero() {
			occurred = s.now()
		}
		op := model.Operation{
			ID:         s.newID(),
			Type:       model.OperationExpense,
			Amount:     amount,
			Currency:   currency,
			Category:   CategoryDebtRepayment,
			Wallet:     canonicalWallet(balances, debt.Wallet),
			Comment:    req.Comment,
			Source:     source,
			OccurredAt: occurred,
		}
		if err := tx.SaveOperations(ctx, []model.Operation{op}); err != nil {
			return err
		}

		left := remaining.Sub(amount)
		closed := !left.GreaterThan(ledger.Epsilon)
		if closed {
			if err := tx.UpdateDebtStatus(ctx, debt.ID, model.DebtClosed); err != nil {
				return err
			}
			left = decimal.Zero
		} else if err := tx.UpdateDebtAmount(ctx, debt.ID, left); err != nil {
			return err
		}

		result = &RepayResult{Operation: op, Remaining: left, Closed: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded debt repayment",
		"debt", req.DebtID,
		"amount", result.Operation.Amount.String(),
		"remaining", result.Remaining.String(),
		"closed", result.Closed)
	return result, nil
}
