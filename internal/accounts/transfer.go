package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount of Currency from one wallet to another.
type TransferRequest struct {
	OccurredAt time.Time
	Amount     decimal.Decimal
	From       string
	To         string
	Comment    string
	Currency   model.Currency
}

// TransferResult holds the two operations a transfer recorded.
type TransferResult struct {
	ID       string
	Outgoing model.Operation
	Incoming model.Operation
}

// Transfer records a transfer as an expense in the source wallet and an
// income in the destination wallet sharing one transfer tag. The balance is
// recomputed and checked inside the same transaction as the inserts, so two
// concurrent transfers cannot both spend the same money.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	from := strings.TrimSpace(req.From)
	to := strings.TrimSpace(req.To)
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: both wallets are required", common.ErrInvalidInput)
	}
	if model.SameWallet(from, to) {
		return nil, common.ErrSameWallet
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	var result *TransferResult
	err := s.inTx(ctx, func(tx service.Transaction) error {
		snap, err := LoadSnapshot(ctx, tx)
		if err != nil {
			return err
		}

		currency, err := resolveCurrency(req.Currency, snap.Settings.BaseCurrency)
		if err != nil {
			return err
		}

		balances, err := snap.WalletBalances()
		if err != nil {
			return err
		}
		if err := ledger.CheckTransfer(balances, from, currency, req.Amount); err != nil {
			return err
		}

		result = s.transferOperations(balances, from, to, currency, req)
		return tx.SaveOperations(ctx, []model.Operation{result.Outgoing, result.Incoming})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded transfer",
		"id", result.ID,
		"from", result.Outgoing.Wallet,
		"to", result.Incoming.Wallet,
		"amount", req.Amount.String(),
		"currency", result.Outgoing.Currency)
	return result, nil
}

func (s *Service) transferOperations(balances *ledger.WalletBalances, from, to string, currency model.Currency, req TransferRequest) *TransferResult {
	occurred := req.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}

	id := s.newID()
	source := model.Source{}.With(model.SourceTransfer, id)

	leg := func(opType model.OperationType, wallet string) model.Operation {
		return model.Operation{
			ID:         s.newID(),
			Type:       opType,
			Amount:     req.Amount,
			Currency:   currency,
			Category:   model.CategoryTransfer,
			Wallet:     canonicalWallet(balances, wallet),
			Comment:    req.Comment,
			Source:     source,
			OccurredAt: occurred,
		}
	}

	return &TransferResult{
		ID:       id,
		Outgoing: leg(model.OperationExpense, from),
		Incoming: leg(model.OperationIncome, to),
	}
}

// canonicalWallet returns the display name the ledger already uses for
// wallet, or wallet itself when it is new.
func canonicalWallet(balances *ledger.WalletBalances, wallet string) string {
	if entry, ok := balances.Get(wallet); ok {
		return entry.Wallet
	}
	return wallet
}
