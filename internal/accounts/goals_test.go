package accounts

import (
	"context"
	"testing"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Contribute(t *testing.T) {
	ledger := testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "200", model.USD, "Donations").
		Goal("Roof", "100", "0", model.USD)
	svc, _ := newTestService(t, ledger)
	ctx := context.Background()
	goalID := ledger.Goals()[0].ID

	goal, err := svc.Contribute(ctx, Contribution{GoalID: goalID, Wallet: "cash", Amount: d("30")})
	require.NoError(t, err)
	assertAmount(t, "30", goal.CurrentAmount)
	assert.Equal(t, model.GoalActive, goal.Status)

	summary, err := svc.Balance(ctx)
	require.NoError(t, err)
	assertAmount(t, "200", summary.Balance, "goal contributions are not spending")
	assertAmount(t, "30", summary.Savings)

	goal, err = svc.Contribute(ctx, Contribution{GoalID: goalID, Wallet: "Cash", Amount: d("70")})
	require.NoError(t, err)
	assert.Equal(t, model.GoalDone, goal.Status)

	progress, err := svc.Goals(ctx)
	require.NoError(t, err)
	require.Len(t, progress.Goals, 1)
	assert.True(t, progress.Goals[0].Progress.Equal(decimal.NewFromInt(1)))
}

func TestService_Contribute_Rejections(t *testing.T) {
	ledger := testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "10", model.USD, "Donations").
		Goal("Roof", "100", "0", model.USD)
	svc, _ := newTestService(t, ledger)
	ctx := context.Background()
	goalID := ledger.Goals()[0].ID

	_, err := svc.Contribute(ctx, Contribution{GoalID: goalID, Wallet: "Cash", Amount: d("50")})
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	_, err = svc.Contribute(ctx, Contribution{GoalID: "missing", Wallet: "Cash", Amount: d("5")})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Contribute(ctx, Contribution{GoalID: goalID, Amount: d("5")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
