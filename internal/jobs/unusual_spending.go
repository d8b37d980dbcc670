package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

var spikeFactor = decimal.RequireFromString("1.5")

type SpendingStore interface {
	ListExpenseUserIDs(ctx context.Context) ([]int64, error)
	SumExpenses(ctx context.Context, userID int64, category string, from, to time.Time) (decimal.Decimal, error)
}

// UnusualSpendingDetector flags users whose current-month spending runs well
// above their recent average.
type UnusualSpendingDetector struct {
	store  SpendingStore
	notify NotificationSink
}

func NewUnusualSpendingDetector(store SpendingStore, notify NotificationSink) *UnusualSpendingDetector {
	return &UnusualSpendingDetector{store: store, notify: notify}
}

func (d *UnusualSpendingDetector) Name() string { return "unusual-spending" }

func (d *UnusualSpendingDetector) Run(ctx context.Context, now time.Time) error {
	users, err := d.store.ListExpenseUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, userID := range users {
		if err := d.check(ctx, userID, now); err != nil {
			slog.ErrorContext(ctx, "Unusual spending check failed",
				"user_id", userID,
				"error", err)
		}
	}
	return nil
}

// check compares the current calendar month against the average of the three
// months before it. No history means no baseline and no alert.
func (d *UnusualSpendingDetector) check(ctx context.Context, userID int64, now time.Time) error {
	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	current, err := d.store.SumExpenses(ctx, userID, "", monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return fmt.Errorf("current month: %w", err)
	}

	previous, err := d.store.SumExpenses(ctx, userID, "", monthStart.AddDate(0, -3, 0), monthStart)
	if err != nil {
		return fmt.Errorf("previous months: %w", err)
	}

	average := previous.Div(decimal.NewFromInt(3))
	if !average.IsPositive() {
		return nil
	}
	if current.LessThanOrEqual(average.Mul(spikeFactor)) {
		return nil
	}

	msg := fmt.Sprintf("Unusual spending detected: %s this month versus a recent monthly average of %s.",
		current.Round(2), average.Round(2))
	return d.notify.Notify(ctx, userID, msg, core.NotifyUnusual)
}
