// Package policy — чистые решающие функции авторизации операций над
// комментариями: владение и временные окна. Никаких побочных эффектов:
// все проверки идут относительно переданного момента времени now,
// что делает правила полностью детерминированными в тестах.
package policy

import (
	"errors"
	"time"

	"github.com/savina-m/comments-engine/internal/models"

	"github.com/google/uuid"
)

const (
	// EditWindow — окно, в течение которого автор может править комментарий.
	EditWindow = 15 * time.Minute
	// RestoreWindow — окно восстановления после мягкого удаления.
	RestoreWindow = 15 * time.Minute
)

var (
	// ErrNotOwner — операция доступна только автору комментария.
	ErrNotOwner = errors.New("not owner")
	// ErrWindowExpired — истекло временное окно операции.
	ErrWindowExpired = errors.New("window expired")
	// ErrNotDeleted — восстановление неудалённого комментария.
	ErrNotDeleted = errors.New("not deleted")
	// ErrParentStillDeleted — нельзя восстановить ответ, пока удалён родитель.
	ErrParentStillDeleted = errors.New("parent still deleted")
)

// CanEdit разрешает правку, если userID — автор и с момента создания
// прошло не более EditWindow. nil — разрешено.
func CanEdit(c *models.Comment, userID uuid.UUID, now time.Time) error {
	if c.AuthorID != userID {
		return ErrNotOwner
	}

	if now.Sub(c.CreatedAt) > EditWindow {
		return ErrWindowExpired
	}

	return nil
}

// CanDelete разрешает удаление автору без ограничения по времени.
func CanDelete(c *models.Comment, userID uuid.UUID) error {
	if c.AuthorID != userID {
		return ErrNotOwner
	}

	return nil
}

// CanRestore разрешает восстановление, если комментарий сейчас удалён,
// userID — автор, с момента удаления прошло не более RestoreWindow и
// непосредственный родитель (если он есть) сам не удалён.
//
// parent может быть nil и для корневого комментария, и для ответа, чей
// родитель физически отсутствует — в обоих случаях проверка родителя
// пропускается.
func CanRestore(c *models.Comment, parent *models.Comment, userID uuid.UUID, now time.Time) error {
	if !c.IsDeleted || c.DeletedAt == nil {
		return ErrNotDeleted
	}

	if c.AuthorID != userID {
		return ErrNotOwner
	}

	if now.Sub(*c.DeletedAt) > RestoreWindow {
		return ErrWindowExpired
	}

	if parent != nil && parent.IsDeleted {
		return ErrParentStillDeleted
	}

	return nil
}

// ShouldNotify — уведомление положено, когда ответ оставлен под живым
// чужим комментарием: parent существует, не удалён и его автор — не автор ответа.
func ShouldNotify(c *models.Comment, parent *models.Comment) bool {
	if parent == nil || parent.IsDeleted {
		return false
	}

	return parent.AuthorID != c.AuthorID
}
