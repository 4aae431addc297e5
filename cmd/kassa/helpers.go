package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/config"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// KASSA_RATES_URL maps to rates.url.
var envKeyReplacer = strings.NewReplacer(".", "_")

const dateLayout = "2006-01-02"

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := config.DatabasePath(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withAccounts runs fn against a freshly opened ledger service.
func withAccounts(ctx context.Context, fn func(*accounts.Service, *storage.SQLiteStorage) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(accounts.New(store), store)
}

func requireEditor() error {
	return config.RequireEditor(viper.GetViper())
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := model.ParsePositiveAmount(s)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", s), common.ErrInvalidInput)
	}
	return amount, nil
}

// parseCurrency accepts an empty string, meaning the base currency.
func parseCurrency(s string) (model.Currency, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	c, ok := model.ParseCurrency(s)
	if !ok {
		return "", common.NewUserError(fmt.Sprintf("unsupported currency %q (use USD, RUB, GEL or EUR)", s), common.ErrInvalidInput)
	}
	return c, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty means now.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s), common.ErrInvalidInput)
	}
	return t.UTC(), nil
}

// parseEndDate treats a bare date as the whole day.
func parseEndDate(s string) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil || t.IsZero() {
		return t, err
	}
	if _, dateOnly := time.Parse(dateLayout, strings.TrimSpace(s)); dateOnly == nil {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
