package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_CreateWallet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cash, err := store.CreateWallet(ctx, "  Cash ")
	require.NoError(t, err)
	assert.Equal(t, "Cash", cash.Name)
	assert.NotZero(t, cash.ID)

	again, err := store.CreateWallet(ctx, "CASH")
	require.NoError(t, err)
	assert.Equal(t, cash.ID, again.ID, "names are matched case-insensitively")
	assert.Equal(t, "Cash", again.Name, "first spelling is kept")

	_, err = store.CreateWallet(ctx, "Bank")
	require.NoError(t, err)

	wallets, err := store.GetWallets(ctx, false)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "Cash", wallets[0].Name)
	assert.Equal(t, "Bank", wallets[1].Name)
}

func TestSQLiteStorage_ArchiveWallet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.CreateWallet(ctx, "Cash")
	require.NoError(t, err)
	require.NoError(t, store.ArchiveWallet(ctx, "cash"))

	active, err := store.GetWallets(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.GetWallets(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)

	reactivated, err := store.CreateWallet(ctx, "Cash")
	require.NoError(t, err)
	assert.False(t, reactivated.Archived)
	assert.Equal(t, all[0].ID, reactivated.ID)

	assert.ErrorIs(t, store.ArchiveWallet(ctx, "Nowhere"), common.ErrNotFound)
	_, err = store.CreateWallet(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyString)
}
