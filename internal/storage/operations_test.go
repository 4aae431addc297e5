package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveOperations(t *testing.T) {
	tests := []struct {
		validate   func(*testing.T, *SQLiteStorage, context.Context)
		name       string
		operations []model.Operation
		wantErr    error
	}{
		{
			name: "round trips every field",
			operations: []model.Operation{{
				ID:         "op-1",
				Type:       model.OperationExpense,
				Amount:     decimal.RequireFromString("12.34"),
				Currency:   model.GEL,
				Category:   " Loan ",
				Wallet:     " Cash ",
				Comment:    "paid back",
				Source:     model.DebtPaymentSource(decimal.RequireFromString("12.34")).With(model.SourceDebt, "debt-1"),
				OccurredAt: testDay,
			}},
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				op, err := s.GetOperationByID(ctx, "op-1")
				require.NoError(t, err)
				assert.Equal(t, model.OperationExpense, op.Type)
				assert.True(t, op.Amount.Equal(decimal.RequireFromString("12.34")), "amount %s", op.Amount)
				assert.Equal(t, model.GEL, op.Currency)
				assert.Equal(t, "Loan", op.Category)
				assert.Equal(t, "Cash", op.Wallet)
				assert.Equal(t, "paid back", op.Comment)
				assert.True(t, op.Source.DebtPayment().Equal(decimal.RequireFromString("12.34")))
				debtTag, ok := op.Source.First(model.SourceDebt)
				require.True(t, ok)
				assert.Equal(t, "debt-1", debtTag.Value)
				assert.True(t, op.OccurredAt.Equal(testDay), "occurred at %s", op.OccurredAt)
				assert.False(t, op.CreatedAt.IsZero())
			},
		},
		{
			name: "saving the same id replaces the row",
			operations: []model.Operation{
				testOperation("op-1", model.OperationIncome, "10", "Cash"),
				testOperation("op-1", model.OperationIncome, "25", "Cash"),
			},
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				ops, err := s.GetOperations(ctx, service.OperationFilter{})
				require.NoError(t, err)
				require.Len(t, ops, 1)
				assert.True(t, ops[0].Amount.Equal(decimal.NewFromInt(25)))
			},
		},
		{
			name:       "empty slice",
			operations: []model.Operation{},
			wantErr:    ErrEmptySlice,
		},
		{
			name:       "nil slice",
			operations: nil,
			wantErr:    ErrNilParameter,
		},
		{
			name: "zero amount rejected",
			operations: []model.Operation{
				testOperation("op-1", model.OperationIncome, "0", "Cash"),
			},
			wantErr: ErrInvalidOperation,
		},
		{
			name: "invalid batch saves nothing",
			operations: []model.Operation{
				testOperation("op-1", model.OperationIncome, "10", "Cash"),
				{ID: "op-2", Type: "transfer", Amount: decimal.NewFromInt(1), OccurredAt: testDay},
			},
			wantErr: ErrInvalidOperation,
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				ops, err := s.GetOperations(ctx, service.OperationFilter{})
				require.NoError(t, err)
				assert.Empty(t, ops)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			err := store.SaveOperations(ctx, tt.operations)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.validate != nil {
				tt.validate(t, store, ctx)
			}
		})
	}
}

func TestSQLiteStorage_GetOperations_Filter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	ops := []model.Operation{
		testOperation("a", model.OperationIncome, "1", "Cash"),
		testOperation("b", model.OperationExpense, "2", "cash "),
		testOperation("c", model.OperationIncome, "3", "Bank"),
		testOperation("d", model.OperationExpense, "4", "Bank"),
	}
	for i := range ops {
		ops[i].OccurredAt = testDay.AddDate(0, 0, i)
	}
	require.NoError(t, store.SaveOperations(ctx, ops))

	start := testDay.AddDate(0, 0, 1)
	end := testDay.AddDate(0, 0, 2)

	tests := []struct {
		name   string
		filter service.OperationFilter
		want   []string
	}{
		{name: "no filter returns all oldest first", want: []string{"a", "b", "c", "d"}},
		{name: "wallet matches case-insensitively", filter: service.OperationFilter{Wallet: "CASH"}, want: []string{"a", "b"}},
		{name: "type", filter: service.OperationFilter{Type: model.OperationExpense}, want: []string{"b", "d"}},
		{name: "date range inclusive", filter: service.OperationFilter{StartDate: &start, EndDate: &end}, want: []string{"b", "c"}},
		{name: "limit", filter: service.OperationFilter{Limit: 2}, want: []string{"a", "b"}},
		{name: "offset and limit", filter: service.OperationFilter{Offset: 1, Limit: 2}, want: []string{"b", "c"}},
		{name: "offset past end", filter: service.OperationFilter{Offset: 10}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetOperations(ctx, tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, op := range got {
				ids = append(ids, op.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSQLiteStorage_GetOperations_InvalidRange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	start := testDay
	end := testDay.Add(-time.Hour)
	_, err := store.GetOperations(context.Background(), service.OperationFilter{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSQLiteStorage_OperationNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetOperationByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, store.DeleteOperation(ctx, "missing"), common.ErrNotFound)
}

func TestSQLiteStorage_DeleteOperation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveOperations(ctx, []model.Operation{testOperation("op-1", model.OperationIncome, "10", "Cash")}))
	require.NoError(t, store.DeleteOperation(ctx, "op-1"))

	_, err := store.GetOperationByID(ctx, "op-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_MalformedSourceIsTolerated(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveOperations(ctx, []model.Operation{testOperation("op-1", model.OperationExpense, "10", "Cash")}))
	_, err := store.db.ExecContext(ctx, `UPDATE operations SET source = 'debt-payment:abc|garbage' WHERE id = 'op-1'`)
	require.NoError(t, err)

	op, err := store.GetOperationByID(ctx, "op-1")
	require.NoError(t, err)
	assert.True(t, op.Source.DebtPayment().IsZero())
	assert.Len(t, op.Source, 2)
}
