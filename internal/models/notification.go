package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification — уведомление о новом ответе на чужой комментарий.
// Создаётся только консьюмером очереди; единственная мутация — MarkRead
// в пределах получателя. Жёстко не удаляется.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	SenderID    uuid.UUID
	CommentID   uuid.UUID
	IsRead      bool
	CreatedAt   time.Time
}
