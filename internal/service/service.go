// service содержит бизнес-логику движка комментариев.
package service

import (
	"errors"

	"github.com/savina-m/comments-engine/internal/config"
	"github.com/savina-m/comments-engine/internal/queue"
	"github.com/savina-m/comments-engine/internal/storage"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует или не видна.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но живой родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrNotOwner — операция доступна только автору.
	ErrNotOwner = errors.New("not owner")
	// ErrWindowExpired — истекло временное окно правки/восстановления.
	ErrWindowExpired = errors.New("window expired")
	// ErrNotDeleted — восстановление неудалённого комментария.
	ErrNotDeleted = errors.New("not deleted")
	// ErrParentStillDeleted — родитель восстанавливаемого ответа сам удалён.
	ErrParentStillDeleted = errors.New("parent still deleted")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrInternal — внутренняя ошибка (сторадж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-операции над деревом комментариев и уведомлениями.
type Service struct {
	storage  storage.Storage
	enqueuer queue.Enqueuer
	cfg      config.Config
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, enqueuer queue.Enqueuer, cfg config.Config) *Service {
	return &Service{
		storage:  storage,
		enqueuer: enqueuer,
		cfg:      cfg,
	}
}
