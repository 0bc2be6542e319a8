package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/pkg/log"
	"github.com/savina-m/comments-engine/internal/storage"
)

// ListNotifications — уведомления пользователя, новые первыми.
//
// Валидация:
//   - userID обязателен (uuid.Nil -> ErrInvalidArgument).
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	const op = "service/notifications/ListNotifications"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	list, err := s.storage.ListNotifications(ctx, userID)
	if err != nil {
		lg.Error("storage error on ListNotifications", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return list, nil
}

// MarkNotificationRead — пометить уведомление прочитанным.
//
// Поведение/ошибки:
//   - ErrNotFound — уведомления нет или оно принадлежит другому получателю;
//   - повторная пометка уже прочитанного — идемпотентный успех;
//   - ErrInternal — прочие ошибки стораджа.
func (s *Service) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	const op = "service/notifications/MarkNotificationRead"

	lg := log.From(ctx).With("op", op, "id", id.String(), "user_id", userID.String())

	if id == uuid.Nil || userID == uuid.Nil {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.storage.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("notification not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on MarkNotificationRead", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}
