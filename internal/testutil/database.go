// Package testutil provides test utilities for the kassa ledger: an isolated
// in-memory database per test and a fluent builder for seeding ledger data.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with the given wallets
// configured. It handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, "Cash", "Bank")
func SetupTestDB(t *testing.T, wallets ...string) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Wallets: wallets})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Ledger         *LedgerBuilder
	Wallets        []string
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	for _, name := range opts.Wallets {
		if _, err := store.CreateWallet(ctx, name); err != nil {
			t.Fatalf("failed to seed wallet %q: %v", name, err)
		}
	}

	if opts.Ledger != nil {
		if err := opts.Ledger.Seed(ctx, store); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// Seed writes the builder's records into the database or fails the test.
func (db *TestDB) Seed(b *LedgerBuilder) {
	db.t.Helper()
	if err := b.Seed(context.Background(), db.Storage); err != nil {
		db.t.Fatalf("failed to seed ledger: %v", err)
	}
}

// WithTransaction executes fn within a database transaction that is always
// rolled back afterwards.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
