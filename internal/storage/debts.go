package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
)

const debtColumns = `id, type, amount, currency, status, wallet, counterpart, comment, existing, created_at`

func saveDebt(ctx context.Context, q queryer, debt *model.Debt) error {
	status := debt.Status
	if status == "" {
		status = model.DebtOpen
	}
	createdAt := debt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO debts (`+debtColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		debt.ID,
		string(debt.Type),
		debt.Amount.String(),
		string(debt.Currency),
		string(status),
		strings.TrimSpace(debt.Wallet),
		debt.Counterpart,
		debt.Comment,
		debt.Existing,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save debt %s: %w", debt.ID, err)
	}
	return nil
}

func getDebts(ctx context.Context, q queryer) ([]model.Debt, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var debts []model.Debt
	for rows.Next() {
		debt, scanErr := scanDebt(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}
	return debts, nil
}

func getDebtByID(ctx context.Context, q queryer, id string) (*model.Debt, error) {
	row := q.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = ?`, id)
	debt, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debt %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func updateDebtStatus(ctx context.Context, q queryer, id string, status model.DebtStatus) error {
	result, err := q.ExecContext(ctx, `UPDATE debts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update debt status: %w", err)
	}
	return requireAffected(result, "debt", id)
}

func updateDebtAmount(ctx context.Context, q queryer, id string, amount decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE debts SET amount = ? WHERE id = ?`, amount.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update debt amount: %w", err)
	}
	return requireAffected(result, "debt", id)
}

func scanDebt(row rowScanner) (model.Debt, error) {
	var (
		debt     model.Debt
		debtType string
		currency string
		status   string
	)
	err := row.Scan(
		&debt.ID,
		&debtType,
		&debt.Amount,
		&currency,
		&status,
		&debt.Wallet,
		&debt.Counterpart,
		&debt.Comment,
		&debt.Existing,
		&debt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return debt, err
		}
		return debt, fmt.Errorf("failed to scan debt: %w", err)
	}
	debt.Type = model.DebtType(debtType)
	debt.Currency = model.Currency(currency)
	debt.Status = model.DebtStatus(status)
	return debt, nil
}
