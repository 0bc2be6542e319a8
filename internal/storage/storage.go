package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/savina-m/comments-engine/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но живой родитель не найден
	// (отсутствует физически либо мягко удалён).
	ErrParentNotFound = errors.New("parent not found")
	// ErrConflict — конфликт уникальности (дубликат уведомления).
	ErrConflict = errors.New("conflict")
)

// CommentStorage выполняет операции над деревом комментариев.
// Хранилище — единственный владелец записей comments и структуры дерева.
type CommentStorage interface {
	// CreateComment создаёт корневой комментарий или ответ.
	// Входной Comment должен содержать AuthorID и Content; ParentID — опционально.
	// ID и таймстемпы выставляет хранилище.
	// Если ParentID указан, но родитель отсутствует или удалён — ErrParentNotFound.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий по идентификатору, включая удалённые.
	// Если записи нет — ErrNotFound.
	CommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// ListTopLevel возвращает неудалённые корневые комментарии (parent_id IS NULL)
	// с именем автора и числом живых прямых ответов, created_at DESC.
	ListTopLevel(ctx context.Context) ([]models.CommentView, error)

	// ListReplies — то же для прямых ответов на parentID.
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]models.CommentView, error)

	// UpdateContent меняет текст неудалённого комментария, выставляет
	// is_edited=true и updated_at=now. Если живой записи нет — ErrNotFound.
	UpdateContent(ctx context.Context, id uuid.UUID, content string, now time.Time) (*models.Comment, error)

	// DeleteTree мягко удаляет комментарий и всё его поддерево одним
	// атомарным стейтментом: is_deleted=true, deleted_at=now для каждого
	// узла замыкания, независимо от его текущего состояния.
	// Если корня нет — ErrNotFound.
	DeleteTree(ctx context.Context, id uuid.UUID, now time.Time) error

	// RestoreTree симметрично снимает мягкое удаление со всего поддерева
	// (is_deleted=false, deleted_at=NULL) и возвращает восстановленный корень.
	// Если корня нет — ErrNotFound.
	RestoreTree(ctx context.Context, id uuid.UUID) (*models.Comment, error)
}

// NotificationStorage выполняет операции над уведомлениями.
// Записи notifications создаёт только консьюмер очереди.
type NotificationStorage interface {
	// SaveNotification сохраняет уведомление, заполняя ID и CreatedAt.
	// Повтор по паре (recipient_id, comment_id) — ErrConflict: так очередь
	// с at-least-once доставкой не плодит дубликаты при ретраях.
	SaveNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications возвращает уведомления получателя, новые первыми.
	ListNotifications(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error)

	// MarkNotificationRead помечает уведомление прочитанным в пределах
	// получателя; повторный вызов — идемпотентный no-op.
	// Если уведомление не принадлежит recipientID или его нет — ErrNotFound.
	MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Notification, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	CommentStorage
	NotificationStorage
	Close()
}
