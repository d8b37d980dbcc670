// Package services provides business logic and orchestration over the store.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GoalStore is the slice of the repository the allocator needs.
type GoalStore interface {
	ListAutoAllocateGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	SaveGoalProgress(ctx context.Context, g core.Goal) error
}

// SavingsAllocator spreads a share of incoming income across a user's
// auto-allocate goals.
type SavingsAllocator struct {
	store GoalStore
}

func NewSavingsAllocator(store GoalStore) *SavingsAllocator {
	return &SavingsAllocator{store: store}
}

// Allocate applies each goal's percentage of the income to its current
// amount and flags goals that reach their target. It is pure: callers persist
// the returned goals. Achieved is monotonic here; allocation never clears it.
func (a *SavingsAllocator) Allocate(goals []core.Goal, income decimal.Decimal) []core.Goal {
	updated := make([]core.Goal, len(goals))
	for i, g := range goals {
		share := income.Mul(g.AutoAllocatePercentage).Div(hundred)
		g.CurrentAmount = g.CurrentAmount.Add(share)
		if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
			g.Achieved = true
		}
		updated[i] = g
	}
	return updated
}

// AllocateForUser loads the user's eligible goals, allocates the income
// across them and persists each goal in turn. The first save failure aborts
// the remainder and propagates; goals saved before the failure stay saved.
func (a *SavingsAllocator) AllocateForUser(ctx context.Context, userID int64, income decimal.Decimal) error {
	if !income.IsPositive() {
		return nil
	}

	goals, err := a.store.ListAutoAllocateGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("load auto-allocate goals: %w", err)
	}
	if len(goals) == 0 {
		return nil
	}

	for _, g := range a.Allocate(goals, income) {
		if err := a.store.SaveGoalProgress(ctx, g); err != nil {
			return fmt.Errorf("save goal %d: %w", g.ID, err)
		}
		if g.Achieved {
			slog.InfoContext(ctx, "Savings goal achieved",
				"goal_id", g.ID,
				"user_id", userID,
				"target_amount", g.TargetAmount)
		}
	}
	return nil
}
