// Package notify records user notifications and fans them out to the broker.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"finwise/internal/amqp"
	"finwise/internal/core"
)

type Store interface {
	CreateNotification(ctx context.Context, n core.Notification) (core.Notification, error)
}

type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// Notifier persists notifications and publishes them to the broker. The
// database row is the source of truth; broker delivery is best effort and a
// publish failure never fails the caller.
type Notifier struct {
	store     Store
	publisher Publisher
}

// NewNotifier builds a notifier. A nil publisher disables broker fan-out,
// which is how the service runs without a broker configured.
func NewNotifier(store Store, publisher Publisher) *Notifier {
	return &Notifier{store: store, publisher: publisher}
}

func (n *Notifier) Notify(ctx context.Context, userID int64, message string, typ core.NotificationType) error {
	saved, err := n.store.CreateNotification(ctx, core.Notification{
		UserID:  userID,
		Message: message,
		Type:    typ,
	})
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	if n.publisher == nil {
		return nil
	}

	msg := amqp.NewNotificationMessage(saved.UserID, saved.Message, string(saved.Type))
	if err := n.publisher.PublishNotification(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Notification publish failed, stored copy remains",
			"user_id", userID,
			"type", typ,
			"error", err)
	}
	return nil
}
