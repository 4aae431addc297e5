package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
)

// createWallet inserts a wallet. A wallet whose name matches an existing one
// case-insensitively is returned as is, and reactivated if it was archived.
func createWallet(ctx context.Context, q queryer, name string) (*model.Wallet, error) {
	name = strings.TrimSpace(name)
	key := model.WalletKey(name)

	var existing model.Wallet
	err := q.QueryRowContext(ctx,
		`SELECT id, name, archived, created_at FROM wallets WHERE name_key = ?`, key,
	).Scan(&existing.ID, &existing.Name, &existing.Archived, &existing.CreatedAt)

	switch {
	case err == nil:
		if existing.Archived {
			if _, err := q.ExecContext(ctx, `UPDATE wallets SET archived = 0 WHERE id = ?`, existing.ID); err != nil {
				return nil, fmt.Errorf("failed to reactivate wallet: %w", err)
			}
			existing.Archived = false
			slog.Info("reactivated archived wallet", "name", existing.Name)
		}
		return &existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check existing wallet: %w", err)
	}

	now := time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`INSERT INTO wallets (name, name_key, archived, created_at) VALUES (?, ?, 0, ?)`,
		name, key, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet ID: %w", err)
	}

	slog.Info("created wallet", "name", name, "id", id)
	return &model.Wallet{
		ID:        id,
		Name:      name,
		CreatedAt: now,
	}, nil
}

func getWallets(ctx context.Context, q queryer, includeArchived bool) ([]model.Wallet, error) {
	query := `SELECT id, name, archived, created_at FROM wallets`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wallets []model.Wallet
	for rows.Next() {
		var w model.Wallet
		if err := rows.Scan(&w.ID, &w.Name, &w.Archived, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}
	return wallets, nil
}

func archiveWallet(ctx context.Context, q queryer, name string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE wallets SET archived = 1 WHERE name_key = ?`, model.WalletKey(name))
	if err != nil {
		return fmt.Errorf("failed to archive wallet: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wallet %q: %w", name, common.ErrNotFound)
	}
	return nil
}
