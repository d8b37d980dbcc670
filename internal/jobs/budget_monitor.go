package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	warnThreshold  = decimal.RequireFromString("90")
	limitThreshold = decimal.RequireFromString("100")
)

type BudgetStore interface {
	ListAllBudgets(ctx context.Context) ([]core.Budget, error)
	SumExpenses(ctx context.Context, userID int64, category string, from, to time.Time) (decimal.Decimal, error)
}

// BudgetMonitor alerts users approaching or exceeding their monthly budgets.
type BudgetMonitor struct {
	store  BudgetStore
	notify NotificationSink
}

func NewBudgetMonitor(store BudgetStore, notify NotificationSink) *BudgetMonitor {
	return &BudgetMonitor{store: store, notify: notify}
}

func (m *BudgetMonitor) Name() string { return "budget-monitor" }

// Run checks every budget against the expenses of its own calendar month.
// One broken budget never blocks the rest.
func (m *BudgetMonitor) Run(ctx context.Context, now time.Time) error {
	budgets, err := m.store.ListAllBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}

	for _, b := range budgets {
		if err := m.check(ctx, b); err != nil {
			slog.ErrorContext(ctx, "Budget check failed",
				"budget_id", b.ID,
				"user_id", b.UserID,
				"error", err)
		}
	}
	return nil
}

func (m *BudgetMonitor) check(ctx context.Context, b core.Budget) error {
	if !b.Amount.IsPositive() {
		return nil
	}

	period := b.Period.UTC()
	from := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	spent, err := m.store.SumExpenses(ctx, b.UserID, b.Category, from, to)
	if err != nil {
		return fmt.Errorf("sum expenses: %w", err)
	}

	used := spent.Div(b.Amount).Mul(hundred)
	scope := b.Category
	if scope == "" {
		scope = "overall"
	}

	switch {
	case used.GreaterThanOrEqual(limitThreshold):
		msg := fmt.Sprintf("Budget exceeded: you have spent %s%% of your %s budget for %s.",
			used.Round(2), scope, from.Format("January 2006"))
		return m.notify.Notify(ctx, b.UserID, msg, core.NotifyMissed)
	case used.GreaterThanOrEqual(warnThreshold):
		msg := fmt.Sprintf("Budget warning: you have spent %s%% of your %s budget for %s.",
			used.Round(2), scope, from.Format("January 2006"))
		return m.notify.Notify(ctx, b.UserID, msg, core.NotifyUpcoming)
	}
	return nil
}
