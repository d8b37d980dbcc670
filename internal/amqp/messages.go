package amqp

import (
	"encoding/json"
	"time"
)

// NotificationMessage is the broker payload for one user notification. It
// carries the full message text so consumers never need a database read.
type NotificationMessage struct {
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNotificationMessage(userID int64, message, notificationType string) *NotificationMessage {
	return &NotificationMessage{
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		Timestamp: time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
