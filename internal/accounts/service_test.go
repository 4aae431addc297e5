package accounts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

// newTestService returns a service over a fresh database seeded by ledger,
// with a fixed clock and sequential ids.
func newTestService(t *testing.T, ledger *testutil.LedgerBuilder) (*Service, service.Storage) {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Ledger: ledger})

	svc := New(db.Storage)
	svc.now = func() time.Time { return fixedNow }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc, db.Storage
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "want %s, got %s %v", want, got, msgAndArgs)
}

func TestService_Balance(t *testing.T) {
	svc, _ := newTestService(t, testutil.NewLedger().
		Wallet("Cash", "Bank").
		Rates(model.EUR, "1.1").
		Income("Cash", "100", model.USD, "Donations").
		Expense("Bank", "10", model.EUR, "Rent").
		Borrowed("Bank", "50", model.USD).
		Lent("Cash", "20", model.USD).
		Goal("Roof", "500", "40", model.USD))

	summary, err := svc.Balance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.USD, summary.Currency)
	assertAmount(t, "89", summary.Operations)
	assertAmount(t, "30", summary.DebtEffect)
	assertAmount(t, "119", summary.Balance)
	assertAmount(t, "89", summary.NetBalance)
	assertAmount(t, "40", summary.Savings)
}

func TestService_WalletBalances(t *testing.T) {
	svc, store := newTestService(t, testutil.NewLedger().
		Wallet("Cash", "Old").
		Income("Cash", "100", model.USD, "Donations").
		Income("old", "5", model.USD, "Donations"))

	require.NoError(t, store.ArchiveWallet(context.Background(), "Old"))

	balances, err := svc.WalletBalances(context.Background())
	require.NoError(t, err)

	cash, ok := balances.Get("cash")
	require.True(t, ok)
	assert.True(t, cash.Active)
	assertAmount(t, "100", cash.BaseAmount)

	old, ok := balances.Get("Old")
	require.True(t, ok, "archived wallet keeps its history")
	assert.False(t, old.Active)
	assertAmount(t, "5", old.BaseAmount)
}

func TestService_CashFlow(t *testing.T) {
	ledger := testutil.NewLedger().
		Wallet("Cash").
		Income("Cash", "100", model.USD, "Donations").
		Expense("Cash", "30", model.USD, "Rent").
		Expense("Cash", "20", model.USD, "Roof").
		Goal("Roof", "500", "20", model.USD)
	ledger.Operation(model.Operation{
		Type:       model.OperationIncome,
		Wallet:     "Cash",
		Amount:     d("999"),
		Currency:   model.USD,
		OccurredAt: testutil.DefaultDate.AddDate(1, 0, 0),
	})
	svc, _ := newTestService(t, ledger)

	flow, err := svc.CashFlow(context.Background(), service.DateRange{
		Start: testutil.DefaultDate.AddDate(0, 0, -1),
		End:   testutil.DefaultDate.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	assertAmount(t, "100", flow.TotalIncome)
	assertAmount(t, "30", flow.TotalExpenses)
	assertAmount(t, "20", flow.TotalSavings)
	assertAmount(t, "70", flow.NetCashFlow)
}

func TestService_RecordOperation(t *testing.T) {
	svc, store := newTestService(t, testutil.NewLedger().Wallet("Cash"))
	ctx := context.Background()

	op, err := svc.RecordOperation(ctx, model.Operation{
		Type:     model.OperationIncome,
		Amount:   d("12.5"),
		Wallet:   " Cash ",
		Category: " Donations ",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", op.ID)
	assert.Equal(t, model.USD, op.Currency, "blank currency defaults to base")
	assert.Equal(t, "Cash", op.Wallet)
	assert.Equal(t, "Donations", op.Category)
	assert.True(t, op.OccurredAt.Equal(fixedNow))

	stored, err := store.GetOperationByID(ctx, "id-1")
	require.NoError(t, err)
	assertAmount(t, "12.5", stored.Amount)

	tests := []struct {
		name string
		op   model.Operation
	}{
		{name: "unknown type", op: model.Operation{Type: "gift", Amount: d("1")}},
		{name: "zero amount", op: model.Operation{Type: model.OperationIncome}},
		{name: "unsupported currency", op: model.Operation{Type: model.OperationIncome, Amount: d("1"), Currency: "JPY"}},
		{name: "transfer category", op: model.Operation{Type: model.OperationExpense, Amount: d("1"), Category: "Transfer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordOperation(ctx, tt.op)
			assert.Error(t, err)
		})
	}
}

func TestService_CreateGoal_DuplicateTitle(t *testing.T) {
	svc, _ := newTestService(t, testutil.NewLedger().Goal("Roof", "100", "0", model.USD))

	_, err := svc.CreateGoal(context.Background(), model.Goal{Title: " roof ", TargetAmount: d("10")})
	assert.Error(t, err)

	goal, err := svc.CreateGoal(context.Background(), model.Goal{Title: "Piano", TargetAmount: d("10"), Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, model.EUR, goal.Currency)
	assert.Equal(t, model.GoalActive, goal.Status)
}
