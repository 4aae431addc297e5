package accounts

import (
	"context"
	"testing"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RepayDebt_InInstallments(t *testing.T) {
	svc, store := newTestService(t, testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "50", model.USD, "Donations").
		Debt(model.Debt{ID: "loan", Type: model.DebtBorrowed, Wallet: "Cash", Amount: d("100"), Currency: model.USD}))
	ctx := context.Background()

	first, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "loan", Amount: d("40")})
	require.NoError(t, err)
	assert.False(t, first.Closed)
	assertAmount(t, "60", first.Remaining)
	assertAmount(t, "40", first.Operation.Source.DebtPayment())
	assert.Equal(t, CategoryDebtRepayment, first.Operation.Category)

	debt, err := store.GetDebtByID(ctx, "loan")
	require.NoError(t, err)
	assertAmount(t, "60", debt.Amount, "partial payment lowers what is owed")
	assert.True(t, debt.IsOpen())

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "110", summary.Balance)
	assertAmount(t, "60", summary.Borrowed)
	assertAmount(t, "50", summary.NetBalance)

	second, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "loan"})
	require.NoError(t, err)
	assert.True(t, second.Closed)
	assertAmount(t, "60", second.Operation.Amount, "zero amount pays the remainder")
	assertAmount(t, "0", second.Remaining)

	debt, err = store.GetDebtByID(ctx, "loan")
	require.NoError(t, err)
	assert.Equal(t, model.DebtClosed, debt.Status)

	summary, err = svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "50", summary.Balance)
	assertAmount(t, "0", summary.Borrowed)

	_, err = svc.RepayDebt(ctx, RepayRequest{DebtID: "loan", Amount: d("1")})
	assert.ErrorIs(t, err, common.ErrDebtClosed)
}

func TestService_RepayDebt_ThenTransfer(t *testing.T) {
	svc, _ := newTestService(t, testutil.NewLedger().
		Wallet("Cash", "Bank").
		Debt(model.Debt{ID: "loan", Type: model.DebtBorrowed, Wallet: "Cash", Amount: d("100"), Currency: model.USD}))
	ctx := context.Background()

	_, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "loan", Amount: d("40")})
	require.NoError(t, err)

	balances, err := svc.WalletBalances(ctx)
	require.NoError(t, err)
	cash, ok := balances.Get("Cash")
	require.True(t, ok)
	assertAmount(t, "60", cash.Native(model.USD), "wallet holds what is physically left")

	_, err = svc.Transfer(ctx, TransferRequest{From: "Cash", To: "Bank", Amount: d("100"), Currency: model.USD})
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	result, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "loan"})
	require.NoError(t, err)
	assert.True(t, result.Closed)
	assertAmount(t, "60", result.Operation.Amount)

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "0", summary.Balance)
	assertAmount(t, "0", summary.NetBalance)
}

func TestService_RepayDebt_PartialExistingDebt(t *testing.T) {
	svc, store := newTestService(t, testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "200", model.USD, "Donations").
		Debt(model.Debt{ID: "old", Type: model.DebtBorrowed, Wallet: "Cash", Amount: d("100"), Currency: model.USD, Existing: true}))
	ctx := context.Background()

	result, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "old", Amount: d("30")})
	require.NoError(t, err)
	assert.False(t, result.Closed)
	assert.True(t, result.Operation.Source.DebtPayment().IsZero())

	debt, err := store.GetDebtByID(ctx, "old")
	require.NoError(t, err)
	assertAmount(t, "70", debt.Amount)

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "170", summary.Balance)
	assertAmount(t, "100", summary.NetBalance)
}

func TestService_RepayDebt_ExistingDebt(t *testing.T) {
	svc, _ := newTestService(t, testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "200", model.USD, "Donations").
		Debt(model.Debt{ID: "old", Type: model.DebtBorrowed, Wallet: "Cash", Amount: d("100"), Currency: model.USD, Existing: true}))
	ctx := context.Background()

	result, err := svc.RepayDebt(ctx, RepayRequest{DebtID: "old"})
	require.NoError(t, err)
	assert.True(t, result.Closed)
	assert.True(t, result.Operation.Source.DebtPayment().IsZero())

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "100", summary.Balance, "repaying a pre-existing debt spends cash")
}

func TestService_RepayDebt_Rejections(t *testing.T) {
	ledger := func() *testutil.LedgerBuilder {
		return testutil.NewLedger().
			Wallet("Cash").
			Income("Cash", "10", model.USD, "Donations").
			Debt(model.Debt{ID: "loan", Type: model.DebtBorrowed, Wallet: "Cash", Amount: d("100"), Currency: model.USD, Existing: true}).
			Debt(model.Debt{ID: "given", Type: model.DebtLent, Wallet: "Cash", Amount: d("5"), Currency: model.USD})
	}

	tests := []struct {
		wantErr error
		name    string
		req     RepayRequest
	}{
		{name: "missing debt", req: RepayRequest{DebtID: "nope"}, wantErr: common.ErrNotFound},
		{name: "lent debt", req: RepayRequest{DebtID: "given"}, wantErr: common.ErrInvalidInput},
		{name: "more than owed", req: RepayRequest{DebtID: "loan", Amount: d("100.5")}, wantErr: common.ErrInvalidInput},
		{name: "wallet cannot cover it", req: RepayRequest{DebtID: "loan", Amount: d("50")}, wantErr: common.ErrInsufficientFunds},
		{name: "negative amount", req: RepayRequest{DebtID: "loan", Amount: d("-1")}, wantErr: common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, ledger())
			_, err := svc.RepayDebt(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_OpenAndCloseDebt(t *testing.T) {
	svc, _ := newTestService(t, testutil.NewLedger().Wallet("Cash"))
	ctx := context.Background()

	debt, err := svc.OpenDebt(ctx, model.Debt{Type: model.DebtLent, Wallet: "Cash", Amount: d("25"), Counterpart: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, model.DebtOpen, debt.Status)
	assert.Equal(t, model.USD, debt.Currency)

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "-25", summary.Balance)
	assertAmount(t, "0", summary.NetBalance)

	require.NoError(t, svc.CloseDebt(ctx, debt.ID))
	assert.ErrorIs(t, svc.CloseDebt(ctx, debt.ID), common.ErrDebtClosed)

	summary, err = svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "0", summary.Balance)

	_, err = svc.OpenDebt(ctx, model.Debt{Type: "gifted", Amount: d("1")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
