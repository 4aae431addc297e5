package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

// getSettings loads the base currency and rate table. A database that has
// never stored settings yields the defaults.
func getSettings(ctx context.Context, q queryer) (*model.Settings, error) {
	settings := model.DefaultSettings()

	var (
		base      string
		updatedAt time.Time
	)
	err := q.QueryRowContext(ctx,
		`SELECT base_currency, updated_at FROM settings WHERE id = 1`,
	).Scan(&base, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query settings: %w", err)
	default:
		settings.BaseCurrency = model.Currency(base)
		settings.UpdatedAt = updatedAt
		settings.Rates = make(map[model.Currency]decimal.Decimal)
	}

	rows, err := q.QueryContext(ctx, `SELECT currency, rate FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			currency string
			rate     decimal.Decimal
		)
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		settings.Rates[model.Currency(currency)] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}

	settings.Normalize()
	return &settings, nil
}

// saveSettings replaces the stored base currency and the whole rate table.
func saveSettings(ctx context.Context, q queryer, settings *model.Settings) error {
	normalized := *settings
	normalized.Normalize()

	now := time.Now().UTC()
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (id, base_currency, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET base_currency = excluded.base_currency, updated_at = excluded.updated_at
	`, string(normalized.BaseCurrency), now)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM exchange_rates`); err != nil {
		return fmt.Errorf("failed to clear exchange rates: %w", err)
	}

	for currency, rate := range normalized.Rates {
		_, err := q.ExecContext(ctx,
			`INSERT INTO exchange_rates (currency, rate, updated_at) VALUES (?, ?, ?)`,
			string(currency), rate.String(), now)
		if err != nil {
			return fmt.Errorf("failed to save rate for %s: %w", currency, err)
		}
	}

	settings.UpdatedAt = now
	return nil
}
