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

const goalColumns = `id, title, target_amount, current_amount, status, currency, created_at`

func saveGoal(ctx context.Context, q queryer, goal *model.Goal) error {
	status := goal.Status
	if status == "" {
		status = model.GoalActive
	}
	createdAt := goal.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		goal.ID,
		strings.TrimSpace(goal.Title),
		goal.TargetAmount.String(),
		goal.CurrentAmount.String(),
		string(status),
		string(goal.Currency),
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save goal %s: %w", goal.ID, err)
	}
	return nil
}

func getGoals(ctx context.Context, q queryer) ([]model.Goal, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

func getGoalByID(ctx context.Context, q queryer, id string) (*model.Goal, error) {
	row := q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// addGoalContribution adds amount to the goal's current amount and marks the
// goal done once the target is reached.
func addGoalContribution(ctx context.Context, q queryer, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: contribution must be positive", ErrInvalidGoal)
	}

	goal, err := getGoalByID(ctx, q, id)
	if err != nil {
		return err
	}

	current := goal.CurrentAmount.Add(amount)
	status := goal.Status
	if goal.TargetAmount.IsPositive() && current.GreaterThanOrEqual(goal.TargetAmount) {
		status = model.GoalDone
	}

	result, err := q.ExecContext(ctx,
		`UPDATE goals SET current_amount = ?, status = ? WHERE id = ?`,
		current.String(), string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireAffected(result, "goal", id)
}

func scanGoal(row rowScanner) (model.Goal, error) {
	var (
		goal     model.Goal
		status   string
		currency string
	)
	err := row.Scan(
		&goal.ID,
		&goal.Title,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&status,
		&currency,
		&goal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal, err
		}
		return goal, fmt.Errorf("failed to scan goal: %w", err)
	}
	goal.Status = model.GoalStatus(status)
	goal.Currency = model.Currency(currency)
	return goal, nil
}
