package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kassa/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS wallets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					name_key TEXT NOT NULL UNIQUE,
					archived BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS operations (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					wallet TEXT NOT NULL DEFAULT '',
					comment TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT '',
					occurred_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS debts (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'open',
					wallet TEXT NOT NULL DEFAULT '',
					counterpart TEXT NOT NULL DEFAULT '',
					comment TEXT NOT NULL DEFAULT '',
					existing BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					target_amount TEXT NOT NULL,
					current_amount TEXT NOT NULL DEFAULT '0',
					status TEXT NOT NULL DEFAULT 'active',
					currency TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add settings and exchange rates",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS settings (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					base_currency TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS exchange_rates (
					currency TEXT PRIMARY KEY,
					rate TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add checkpoint metadata table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto BOOLEAN DEFAULT 0,
					parent_checkpoint TEXT
				)`,
				`CREATE INDEX idx_checkpoint_metadata_created_at ON checkpoint_metadata(created_at)`,
				`CREATE INDEX idx_checkpoint_metadata_is_auto ON checkpoint_metadata(is_auto)`,
			)
		},
	},
	{
		Version:     4,
		Description: "Add operation and debt indexes",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_operations_occurred_at ON operations(occurred_at)`,
				`CREATE INDEX idx_operations_wallet ON operations(wallet COLLATE NOCASE)`,
				`CREATE INDEX idx_debts_status ON debts(status)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SchemaVersion returns the database's current user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// PendingMigrations lists the migrations Migrate would apply, oldest first.
// A database written by a newer kassa is refused.
func (s *SQLiteStorage) PendingMigrations(ctx context.Context) ([]Migration, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	if current > ExpectedSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d is newer than supported version %d",
			common.ErrDatabaseCorrupted, current, ExpectedSchemaVersion)
	}

	var pending []Migration
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration, each in its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	pending, err := s.PendingMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, version)
	}
	return nil
}

func (s *SQLiteStorage) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(tx); err != nil {
		return fmt.Errorf("migration %d failed: %w", m.Version, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
