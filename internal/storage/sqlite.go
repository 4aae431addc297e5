// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryer is satisfied by both *sql.DB and *sql.Tx so every query helper can
// run inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers, which is what makes the
	// transfer check-then-insert atomic.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx}, nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Storage methods run directly against the database.

// SaveOperations inserts or replaces operations atomically.
func (s *SQLiteStorage) SaveOperations(ctx context.Context, operations []model.Operation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOperations(operations); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveOperations(ctx, tx, operations)
	})
}

// GetOperations returns operations matching filter, oldest first.
func (s *SQLiteStorage) GetOperations(ctx context.Context, filter service.OperationFilter) ([]model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperations(ctx, s.db, filter)
}

// GetOperationByID returns a single operation.
func (s *SQLiteStorage) GetOperationByID(ctx context.Context, id string) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getOperationByID(ctx, s.db, id)
}

// DeleteOperation removes an operation.
func (s *SQLiteStorage) DeleteOperation(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteOperation(ctx, s.db, id)
}

// SaveDebt inserts or replaces a debt.
func (s *SQLiteStorage) SaveDebt(ctx context.Context, debt *model.Debt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebt(debt); err != nil {
		return err
	}
	return saveDebt(ctx, s.db, debt)
}

// GetDebts returns every debt, open and closed.
func (s *SQLiteStorage) GetDebts(ctx context.Context) ([]model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getDebts(ctx, s.db)
}

// GetDebtByID returns a single debt.
func (s *SQLiteStorage) GetDebtByID(ctx context.Context, id string) (*model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getDebtByID(ctx, s.db, id)
}

// UpdateDebtStatus opens or closes a debt.
func (s *SQLiteStorage) UpdateDebtStatus(ctx context.Context, id string, status model.DebtStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebtStatus(status); err != nil {
		return err
	}
	return updateDebtStatus(ctx, s.db, id, status)
}

// UpdateDebtAmount sets the outstanding amount of a debt.
func (s *SQLiteStorage) UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebtAmount(amount); err != nil {
		return err
	}
	return updateDebtAmount(ctx, s.db, id, amount)
}

// SaveGoal inserts or replaces a goal.
func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return saveGoal(ctx, s.db, goal)
}

// GetGoals returns every goal.
func (s *SQLiteStorage) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getGoals(ctx, s.db)
}

// GetGoalByID returns a single goal.
func (s *SQLiteStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getGoalByID(ctx, s.db, id)
}

// AddGoalContribution increases a goal's current amount.
func (s *SQLiteStorage) AddGoalContribution(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return addGoalContribution(ctx, tx, id, amount)
	})
}

// CreateWallet creates a wallet, or reactivates an archived one with the same name.
func (s *SQLiteStorage) CreateWallet(ctx context.Context, name string) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return createWallet(ctx, s.db, name)
}

// GetWallets returns wallets in creation order.
func (s *SQLiteStorage) GetWallets(ctx context.Context, includeArchived bool) ([]model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getWallets(ctx, s.db, includeArchived)
}

// ArchiveWallet hides a wallet from the configured set. Its history remains.
func (s *SQLiteStorage) ArchiveWallet(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	return archiveWallet(ctx, s.db, name)
}

// GetSettings returns the stored settings, or defaults when none are stored.
func (s *SQLiteStorage) GetSettings(ctx context.Context) (*model.Settings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSettings(ctx, s.db)
}

// SaveSettings replaces the base currency and the whole rate table.
func (s *SQLiteStorage) SaveSettings(ctx context.Context, settings *model.Settings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveSettings(ctx, tx, settings)
	})
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods run the same helpers against the open transaction.

func (t *sqliteTransaction) SaveOperations(ctx context.Context, operations []model.Operation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOperations(operations); err != nil {
		return err
	}
	return saveOperations(ctx, t.tx, operations)
}

func (t *sqliteTransaction) GetOperations(ctx context.Context, filter service.OperationFilter) ([]model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperations(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetOperationByID(ctx context.Context, id string) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getOperationByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteOperation(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteOperation(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveDebt(ctx context.Context, debt *model.Debt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebt(debt); err != nil {
		return err
	}
	return saveDebt(ctx, t.tx, debt)
}

func (t *sqliteTransaction) GetDebts(ctx context.Context) ([]model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getDebts(ctx, t.tx)
}

func (t *sqliteTransaction) GetDebtByID(ctx context.Context, id string) (*model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getDebtByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateDebtStatus(ctx context.Context, id string, status model.DebtStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebtStatus(status); err != nil {
		return err
	}
	return updateDebtStatus(ctx, t.tx, id, status)
}

func (t *sqliteTransaction) UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebtAmount(amount); err != nil {
		return err
	}
	return updateDebtAmount(ctx, t.tx, id, amount)
}

func (t *sqliteTransaction) SaveGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return saveGoal(ctx, t.tx, goal)
}

func (t *sqliteTransaction) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getGoals(ctx, t.tx)
}

func (t *sqliteTransaction) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getGoalByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) AddGoalContribution(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return addGoalContribution(ctx, t.tx, id, amount)
}

func (t *sqliteTransaction) CreateWallet(ctx context.Context, name string) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return createWallet(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetWallets(ctx context.Context, includeArchived bool) ([]model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getWallets(ctx, t.tx, includeArchived)
}

func (t *sqliteTransaction) ArchiveWallet(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	return archiveWallet(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetSettings(ctx context.Context) (*model.Settings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getSettings(ctx, t.tx)
}

func (t *sqliteTransaction) SaveSettings(ctx context.Context, settings *model.Settings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}
	return saveSettings(ctx, t.tx, settings)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return errors.New("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, errors.New("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return errors.New("transactions must be committed or rolled back, not closed")
}
