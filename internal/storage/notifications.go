package storage

import (
	"context"
	"fmt"
	"log/slog"

	"finwise/internal/core"
)

func (r *Repository) CreateNotification(ctx context.Context, n core.Notification) (core.Notification, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, message, type)
		VALUES (?, ?, ?)`,
		n.UserID, n.Message, string(n.Type))
	if err != nil {
		return core.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Notification{}, fmt.Errorf("notification id: %w", err)
	}

	slog.InfoContext(ctx, "Notification saved",
		"id", id,
		"user_id", n.UserID,
		"type", n.Type)

	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, message, type, created_at
		FROM notifications WHERE id = ?`, id)

	var saved core.Notification
	var typ string
	if err := row.Scan(&saved.ID, &saved.UserID, &saved.Message, &typ, &saved.CreatedAt); err != nil {
		return core.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	saved.Type = core.NotificationType(typ)
	return saved, nil
}

func (r *Repository) ListNotifications(ctx context.Context, userID int64) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, message, type, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]core.Notification, 0)
	for rows.Next() {
		var n core.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &typ, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(typ)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
