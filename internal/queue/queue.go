// Package queue — асинхронный конвейер уведомлений поверх asynq (Redis).
// Продьюсер и консьюмер не знают друг о друге: их связывает только имя
// очереди и формат полезной нагрузки, доставка — at-least-once с ретраями
// брокера.
package queue

import (
	"github.com/google/uuid"
)

const (
	// QueueNotifications — имя очереди уведомлений.
	QueueNotifications = "notifications"
	// TaskSendNotification — единственный тип джобы конвейера.
	TaskSendNotification = "send-notification"
)

// SendNotificationPayload — полезная нагрузка джобы send-notification.
type SendNotificationPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	CommentID   uuid.UUID `json:"comment_id"`
	ParentID    uuid.UUID `json:"parent_id"`
}
