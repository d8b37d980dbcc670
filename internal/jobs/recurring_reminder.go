package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"
)

type RecurringStore interface {
	ListActiveRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error)
}

// RecurringReminder nudges users about recurring transactions whose next
// occurrence is imminent or already skipped.
type RecurringReminder struct {
	store  RecurringStore
	notify NotificationSink
}

func NewRecurringReminder(store RecurringStore, notify NotificationSink) *RecurringReminder {
	return &RecurringReminder{store: store, notify: notify}
}

func (r *RecurringReminder) Name() string { return "recurring-reminder" }

func (r *RecurringReminder) Run(ctx context.Context, now time.Time) error {
	txs, err := r.store.ListActiveRecurring(ctx, now)
	if err != nil {
		return fmt.Errorf("list recurring: %w", err)
	}

	for _, tx := range txs {
		next, ok := nextOccurrence(tx.Date, tx.RecurrencePattern)
		if !ok {
			slog.WarnContext(ctx, "Recurring transaction with unknown pattern",
				"transaction_id", tx.ID,
				"pattern", tx.RecurrencePattern)
			continue
		}

		var msg string
		var typ core.NotificationType
		switch {
		case next.Before(now):
			msg = fmt.Sprintf("Missed recurring %s: %q was due on %s.",
				tx.Type, tx.Description, next.Format("2006-01-02"))
			typ = core.NotifyMissed
		case next.Sub(now) <= 24*time.Hour:
			msg = fmt.Sprintf("Upcoming recurring %s: %q is due on %s.",
				tx.Type, tx.Description, next.Format("2006-01-02"))
			typ = core.NotifyUpcoming
		default:
			continue
		}

		if err := r.notify.Notify(ctx, tx.UserID, msg, typ); err != nil {
			slog.ErrorContext(ctx, "Recurring reminder notification failed",
				"transaction_id", tx.ID,
				"user_id", tx.UserID,
				"error", err)
		}
	}
	return nil
}

// nextOccurrence is one pattern step after the last recorded date, in UTC.
func nextOccurrence(last time.Time, pattern core.RecurrencePattern) (time.Time, bool) {
	last = last.UTC()
	switch pattern {
	case core.RecurDaily:
		return last.AddDate(0, 0, 1), true
	case core.RecurWeekly:
		return last.AddDate(0, 0, 7), true
	case core.RecurMonthly:
		return last.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}
