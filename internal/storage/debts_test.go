package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_DebtLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	debt := &model.Debt{
		ID:          "debt-1",
		Type:        model.DebtBorrowed,
		Amount:      decimal.RequireFromString("150.50"),
		Currency:    model.EUR,
		Wallet:      "Bank",
		Counterpart: "Neighbour",
		Existing:    true,
		CreatedAt:   testDay,
	}
	require.NoError(t, store.SaveDebt(ctx, debt))

	got, err := store.GetDebtByID(ctx, "debt-1")
	require.NoError(t, err)
	assert.Equal(t, model.DebtBorrowed, got.Type)
	assert.Equal(t, model.DebtOpen, got.Status, "blank status defaults to open")
	assert.Equal(t, model.EUR, got.Currency)
	assert.Equal(t, "Neighbour", got.Counterpart)
	assert.True(t, got.Existing)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("150.5")))

	require.NoError(t, store.UpdateDebtAmount(ctx, "debt-1", decimal.RequireFromString("100.25")))
	got, err = store.GetDebtByID(ctx, "debt-1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.25")))

	require.NoError(t, store.UpdateDebtStatus(ctx, "debt-1", model.DebtClosed))
	got, err = store.GetDebtByID(ctx, "debt-1")
	require.NoError(t, err)
	assert.False(t, got.IsOpen())

	debts, err := store.GetDebts(ctx)
	require.NoError(t, err)
	assert.Len(t, debts, 1, "closed debts are still listed")
}

func TestSQLiteStorage_DebtErrors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		run     func() error
		wantErr error
		name    string
	}{
		{
			name:    "nil debt",
			run:     func() error { return store.SaveDebt(ctx, nil) },
			wantErr: ErrNilParameter,
		},
		{
			name: "missing id",
			run: func() error {
				return store.SaveDebt(ctx, &model.Debt{Amount: decimal.NewFromInt(1)})
			},
			wantErr: ErrInvalidDebt,
		},
		{
			name: "non-positive amount",
			run: func() error {
				return store.SaveDebt(ctx, &model.Debt{ID: "d", Amount: decimal.Zero})
			},
			wantErr: ErrInvalidDebt,
		},
		{
			name:    "unknown status",
			run:     func() error { return store.UpdateDebtStatus(ctx, "d", "forgiven") },
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "missing debt",
			run:     func() error { return store.UpdateDebtStatus(ctx, "missing", model.DebtClosed) },
			wantErr: common.ErrNotFound,
		},
		{
			name:    "zero outstanding amount",
			run:     func() error { return store.UpdateDebtAmount(ctx, "d", decimal.Zero) },
			wantErr: ErrInvalidDebt,
		},
		{
			name:    "amount of missing debt",
			run:     func() error { return store.UpdateDebtAmount(ctx, "missing", decimal.NewFromInt(5)) },
			wantErr: common.ErrNotFound,
		},
		{
			name: "lookup of missing debt",
			run: func() error {
				_, err := store.GetDebtByID(ctx, "missing")
				return err
			},
			wantErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}
