// Package models содержит доменные сущности движка комментариев.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment — внутренняя доменная модель комментария.
// Важно:
//   - AuthorID — непрозрачный идентификатор из внешнего identity-сервиса;
//     движок не валидирует учётные данные.
//   - ParentID — nil для корневого комментария; после создания не меняется,
//     поэтому дерево ацикличное по построению.
//   - IsDeleted/DeletedAt — мягкое удаление; инвариант: DeletedAt != nil
//     тогда и только тогда, когда IsDeleted == true (закреплён CHECK-ограничением).
//   - IsEdited выставляется при первой успешной правке и не сбрасывается.
//   - UpdatedAt меняется только при правке содержимого; каскад его не трогает.
type Comment struct {
	ID        uuid.UUID
	Content   string
	AuthorID  uuid.UUID
	ParentID  *uuid.UUID
	IsEdited  bool
	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentView — комментарий, дополненный данными для выдачи:
// отображаемое имя автора и число живых (неудалённых) прямых ответов.
// Вычисляется на чтении, не хранится.
type CommentView struct {
	Comment
	AuthorName   string
	RepliesCount int64
}
