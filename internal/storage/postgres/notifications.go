package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

// SaveNotification сохраняет уведомление.
// Уникальный индекс (recipient_id, comment_id) — ключ идемпотентности
// консьюмера: повторная доставка того же ответа даёт ErrConflict.
func (s *Storage) SaveNotification(ctx context.Context, n *models.Notification) error {
	const op = "storage.postgres.SaveNotification"

	query := `
        INSERT INTO notifications(recipient_id, sender_id, comment_id)
        VALUES ($1, $2, $3)
        RETURNING id, is_read, created_at
    `

	err := s.db.QueryRow(ctx, query,
		n.RecipientID,
		n.SenderID,
		n.CommentID,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListNotifications возвращает уведомления получателя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error) {
	const op = "storage.postgres.ListNotifications"

	query := `
        SELECT id, recipient_id, sender_id, comment_id, is_read, created_at
        FROM notifications
        WHERE recipient_id = $1
        ORDER BY created_at DESC
    `

	rows, err := s.db.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.SenderID,
			&n.CommentID,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		list = append(list, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// MarkNotificationRead помечает уведомление прочитанным в пределах получателя.
// Условие по recipient_id — граница владения: чужой id неотличим от
// несуществующего. Повтор по уже прочитанному просто возвращает is_read=true.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Notification, error) {
	const op = "storage.postgres.MarkNotificationRead"

	query := `
        UPDATE notifications
        SET is_read = TRUE
        WHERE id = $1 AND recipient_id = $2
        RETURNING id, recipient_id, sender_id, comment_id, is_read, created_at
    `

	var n models.Notification
	err := s.db.QueryRow(ctx, query, id, recipientID).Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.CommentID,
		&n.IsRead,
		&n.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &n, nil
}
