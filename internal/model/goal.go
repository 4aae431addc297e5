package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

// Goal statuses.
const (
	GoalActive GoalStatus = "active"
	GoalDone   GoalStatus = "done"
)

// Goal is a savings target. Its Title doubles as the expense category that
// moves money into the goal.
type Goal struct {
	CreatedAt     time.Time
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	ID            string
	Title         string
	Status        GoalStatus
	Currency      Currency
}
