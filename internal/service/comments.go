package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/pkg/log"
	"github.com/savina-m/comments-engine/internal/policy"
	"github.com/savina-m/comments-engine/internal/queue"
	"github.com/savina-m/comments-engine/internal/storage"
)

// Входные структуры сервисного слоя.

// CreateCommentInput — создание корневого комментария или ответа.
// Правила:
//   - AuthorID обязателен (приходит из внешнего identity-сервиса);
//   - Content нормализуется (TrimSpace) и не должен быть пустым;
//   - ParentID nil — корень; иначе родитель должен существовать и быть живым.
type CreateCommentInput struct {
	AuthorID uuid.UUID
	ParentID *uuid.UUID
	Content  string
}

// EditCommentInput — правка содержимого своим автором в пределах окна.
type EditCommentInput struct {
	CommentID uuid.UUID
	UserID    uuid.UUID
	Content   string
}

// CreateComment — бизнес-операция создания комментария.
//
// Валидация:
//   - AuthorID обязателен (uuid.Nil -> ErrInvalidArgument);
//   - Content после TrimSpace не должен быть пустым.
//
// Поведение/ошибки:
//   - ErrParentNotFound — родитель отсутствует либо мягко удалён
//     (отвечать на скрытый комментарий нельзя);
//   - ErrInternal — прочие ошибки стораджа/БД/контекста.
//
// После успешного коммита, если ответ оставлен под живым чужим комментарием,
// в очередь ставится джоба send-notification. Отказ брокера не откатывает
// создание: это warning, комментарий уже существует.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"author_id", in.AuthorID.String(),
	)

	if in.AuthorID == uuid.Nil {
		lg.Warn("invalid argument: empty author_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	// Родителя читаем заранее: он нужен и для решения об уведомлении.
	var parent *models.Comment
	if in.ParentID != nil {
		p, err := s.storage.CommentByID(ctx, *in.ParentID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				lg.Warn("parent not found", "parent_id", in.ParentID.String())
				return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
			default:
				lg.Error("storage error on CommentByID", "err", err)
				return nil, fmt.Errorf("%s: %w", op, ErrInternal)
			}
		}

		if p.IsDeleted {
			lg.Warn("parent is deleted", "parent_id", in.ParentID.String())
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		}

		parent = p
	}

	result, err := s.storage.CreateComment(ctx, models.Comment{
		Content:  in.Content,
		AuthorID: in.AuthorID,
		ParentID: in.ParentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			// Родитель исчез между проверкой и вставкой.
			lg.Warn("parent not found on insert")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		default:
			lg.Error("storage error on CreateComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	s.notifyReplyCreated(ctx, result, parent)

	return result, nil
}

// notifyReplyCreated — продьюсер уведомлений: решает, положено ли
// уведомление, и ставит джобу. Fire-and-forget: любая ошибка — warning.
func (s *Service) notifyReplyCreated(ctx context.Context, c *models.Comment, parent *models.Comment) {
	const op = "service/comments/notifyReplyCreated"

	if !policy.ShouldNotify(c, parent) {
		return
	}

	payload := queue.SendNotificationPayload{
		RecipientID: parent.AuthorID,
		SenderID:    c.AuthorID,
		CommentID:   c.ID,
		ParentID:    parent.ID,
	}

	if err := s.enqueuer.EnqueueSendNotification(ctx, payload); err != nil {
		log.From(ctx).Warn("notification enqueue failed",
			"op", op,
			"comment_id", c.ID.String(),
			"err", err,
		)
	}
}

// ListTopLevel — неудалённые корневые комментарии с именем автора и числом
// живых прямых ответов, новые первыми.
func (s *Service) ListTopLevel(ctx context.Context) ([]models.CommentView, error) {
	const op = "service/comments/ListTopLevel"

	views, err := s.storage.ListTopLevel(ctx)
	if err != nil {
		log.From(ctx).Error("storage error on ListTopLevel", "op", op, "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return views, nil
}

// ListReplies — прямые ответы на parentID в той же форме.
//
// Валидация:
//   - parentID обязателен (uuid.Nil -> ErrInvalidArgument).
func (s *Service) ListReplies(ctx context.Context, parentID uuid.UUID) ([]models.CommentView, error) {
	const op = "service/comments/ListReplies"

	lg := log.From(ctx).With("op", op, "parent_id", parentID.String())

	if parentID == uuid.Nil {
		lg.Warn("invalid argument: empty parent_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	views, err := s.storage.ListReplies(ctx, parentID)
	if err != nil {
		lg.Error("storage error on ListReplies", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return views, nil
}

// CommentByID — получить комментарий по ID (включая удалённый).
func (s *Service) CommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	lg := log.From(ctx).With("op", op, "id", id.String())

	if id == uuid.Nil {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// EditComment — правка содержимого.
//
// Валидация:
//   - CommentID/UserID обязательны; Content после TrimSpace не пуст.
//
// Поведение/ошибки:
//   - ErrNotFound — комментария нет или он удалён (удалённые не правят);
//   - ErrNotOwner — правит не автор;
//   - ErrWindowExpired — с момента создания прошло больше policy.EditWindow;
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	const op = "service/comments/EditComment"

	lg := log.From(ctx).With(
		"op", op,
		"comment_id", in.CommentID.String(),
		"user_id", in.UserID.String(),
	)

	if in.CommentID == uuid.Nil || in.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	comment, err := s.storage.CommentByID(ctx, in.CommentID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if comment.IsDeleted {
		lg.Warn("comment is deleted")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	now := time.Now().UTC()
	if err := policy.CanEdit(comment, in.UserID, now); err != nil {
		return nil, s.denied(ctx, op, err)
	}

	result, err := s.storage.UpdateContent(ctx, in.CommentID, in.Content, now)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Удалён конкурентным каскадом после проверки.
			lg.Warn("comment gone on update")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateContent", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// DeleteComment — мягкое удаление комментария вместе со всем поддеревом.
//
// Поведение/ошибки:
//   - ErrNotFound — комментария нет или он уже удалён;
//   - ErrNotOwner — удаляет не автор (ограничения по времени нет);
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) error {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With(
		"op", op,
		"comment_id", commentID.String(),
		"user_id", userID.String(),
	)

	if commentID == uuid.Nil || userID == uuid.Nil {
		lg.Warn("invalid argument: empty id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	comment, err := s.storage.CommentByID(ctx, commentID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if comment.IsDeleted {
		lg.Warn("comment already deleted")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if err := policy.CanDelete(comment, userID); err != nil {
		return s.denied(ctx, op, err)
	}

	if err := s.storage.DeleteTree(ctx, commentID, time.Now().UTC()); err != nil {
		lg.Error("storage error on DeleteTree", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// RestoreComment — восстановление ранее удалённого поддерева.
//
// Поведение/ошибки:
//   - ErrNotFound — комментария нет;
//   - ErrNotDeleted — комментарий не удалён (восстанавливать нечего);
//   - ErrNotOwner — восстанавливает не автор;
//   - ErrWindowExpired — прошло больше policy.RestoreWindow с удаления;
//   - ErrParentStillDeleted — непосредственный родитель всё ещё удалён;
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) RestoreComment(ctx context.Context, commentID, userID uuid.UUID) (*models.Comment, error) {
	const op = "service/comments/RestoreComment"

	lg := log.From(ctx).With(
		"op", op,
		"comment_id", commentID.String(),
		"user_id", userID.String(),
	)

	if commentID == uuid.Nil || userID == uuid.Nil {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	comment, err := s.storage.CommentByID(ctx, commentID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	// Родитель нужен политике; физически отсутствующий родитель
	// восстановлению не мешает.
	var parent *models.Comment
	if comment.ParentID != nil {
		p, err := s.storage.CommentByID(ctx, *comment.ParentID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			lg.Error("storage error on parent CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
		parent = p
	}

	if err := policy.CanRestore(comment, parent, userID, time.Now().UTC()); err != nil {
		return nil, s.denied(ctx, op, err)
	}

	result, err := s.storage.RestoreTree(ctx, commentID)
	if err != nil {
		lg.Error("storage error on RestoreTree", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return result, nil
}

// denied переводит отказ политики в сервисную ошибку; причина отказа
// никогда не глотается и доходит до вызывающего как есть.
func (s *Service) denied(ctx context.Context, op string, err error) error {
	log.From(ctx).Warn("policy denied", "op", op, "reason", err.Error())

	switch {
	case errors.Is(err, policy.ErrNotOwner):
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	case errors.Is(err, policy.ErrWindowExpired):
		return fmt.Errorf("%s: %w", op, ErrWindowExpired)
	case errors.Is(err, policy.ErrNotDeleted):
		return fmt.Errorf("%s: %w", op, ErrNotDeleted)
	case errors.Is(err, policy.ErrParentStillDeleted):
		return fmt.Errorf("%s: %w", op, ErrParentStillDeleted)
	default:
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}
