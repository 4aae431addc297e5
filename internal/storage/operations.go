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
	"github.com/Veraticus/kassa/internal/service"
)

const operationColumns = `id, type, amount, currency, category, wallet, comment, source, occurred_at, created_at`

func saveOperations(ctx context.Context, q queryer, operations []model.Operation) error {
	now := time.Now().UTC()
	for _, op := range operations {
		createdAt := op.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO operations (`+operationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			op.ID,
			string(op.Type),
			op.Amount.String(),
			string(op.Currency),
			strings.TrimSpace(op.Category),
			strings.TrimSpace(op.Wallet),
			op.Comment,
			op.Source.String(),
			op.OccurredAt.UTC(),
			createdAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to save operation %s: %w", op.ID, err)
		}
	}
	return nil
}

func getOperations(ctx context.Context, q queryer, filter service.OperationFilter) ([]model.Operation, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, ErrInvalidDateRange
	}

	query := `SELECT ` + operationColumns + ` FROM operations WHERE 1=1`
	var args []any

	if filter.StartDate != nil {
		query += ` AND occurred_at >= ?`
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query += ` AND occurred_at <= ?`
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY occurred_at, created_at, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var operations []model.Operation
	for rows.Next() {
		op, scanErr := scanOperation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		// Wallet names match case-insensitively, which SQL collation
		// cannot express for every script, so the filter runs here.
		if filter.Wallet != "" && !model.SameWallet(op.Wallet, filter.Wallet) {
			continue
		}
		operations = append(operations, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return paginate(operations, filter.Offset, filter.Limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func getOperationByID(ctx context.Context, q queryer, id string) (*model.Operation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = ?`, id)
	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("operation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func deleteOperation(ctx context.Context, q queryer, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	return requireAffected(result, "operation", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (model.Operation, error) {
	var (
		op       model.Operation
		opType   string
		currency string
		source   string
	)
	err := row.Scan(
		&op.ID,
		&opType,
		&op.Amount,
		&currency,
		&op.Category,
		&op.Wallet,
		&op.Comment,
		&source,
		&op.OccurredAt,
		&op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return op, err
		}
		return op, fmt.Errorf("failed to scan operation: %w", err)
	}
	op.Type = model.OperationType(opType)
	op.Currency = model.Currency(currency)
	op.Source = model.ParseSource(source)
	return op, nil
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, common.ErrNotFound)
	}
	return nil
}
