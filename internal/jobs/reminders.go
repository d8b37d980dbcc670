package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"
)

const (
	paymentReminderWindow = 3 * 24 * time.Hour
	goalReminderWindow    = 7 * 24 * time.Hour
)

type ReminderStore interface {
	ListPaymentsDueBetween(ctx context.Context, from, to time.Time) ([]core.Payment, error)
	ListGoalsDueBetween(ctx context.Context, from, to time.Time) ([]core.Goal, error)
}

// PaymentGoalReminder reminds users of unpaid payments due within three days
// and unachieved goals with deadlines within seven days. The windows start at
// now, so items already overdue are not re-notified on every run.
type PaymentGoalReminder struct {
	store  ReminderStore
	notify NotificationSink
}

func NewPaymentGoalReminder(store ReminderStore, notify NotificationSink) *PaymentGoalReminder {
	return &PaymentGoalReminder{store: store, notify: notify}
}

func (r *PaymentGoalReminder) Name() string { return "payment-goal-reminder" }

func (r *PaymentGoalReminder) Run(ctx context.Context, now time.Time) error {
	payments, err := r.store.ListPaymentsDueBetween(ctx, now, now.Add(paymentReminderWindow))
	if err != nil {
		return fmt.Errorf("list due payments: %w", err)
	}
	for _, p := range payments {
		msg := fmt.Sprintf("Payment reminder: %q (%s) is due on %s.",
			p.Title, p.Amount.Round(2), p.DueDate.Format("2006-01-02"))
		if err := r.notify.Notify(ctx, p.UserID, msg, core.NotifyPayment); err != nil {
			slog.ErrorContext(ctx, "Payment reminder failed",
				"payment_id", p.ID,
				"user_id", p.UserID,
				"error", err)
		}
	}

	goals, err := r.store.ListGoalsDueBetween(ctx, now, now.Add(goalReminderWindow))
	if err != nil {
		return fmt.Errorf("list due goals: %w", err)
	}
	for _, g := range goals {
		msg := fmt.Sprintf("Goal deadline approaching: %q is at %s%% with deadline %s.",
			g.Description, g.Progress(), g.Deadline.Format("2006-01-02"))
		if err := r.notify.Notify(ctx, g.UserID, msg, core.NotifyGoal); err != nil {
			slog.ErrorContext(ctx, "Goal reminder failed",
				"goal_id", g.ID,
				"user_id", g.UserID,
				"error", err)
		}
	}

	return nil
}
