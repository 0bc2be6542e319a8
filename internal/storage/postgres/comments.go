package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

// CreateComment создаёт корневой комментарий или ответ.
// Проверка живого родителя и вставка — один стейтмент: INSERT ... SELECT
// с EXISTS по родителю, так что между проверкой и записью нет зазора.
func (s *Storage) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage.postgres.CreateComment"

	query := `
        INSERT INTO comments(content, author_id, parent_id)
        SELECT $1, $2, $3
        WHERE $3::uuid IS NULL OR EXISTS (
            SELECT 1 FROM comments p
            WHERE p.id = $3 AND p.is_deleted = FALSE
        )
        RETURNING id, created_at, updated_at
    `

	err := s.db.QueryRow(ctx, query,
		comment.Content,
		comment.AuthorID,
		comment.ParentID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment.IsEdited = false
	comment.IsDeleted = false
	comment.DeletedAt = nil

	return &comment, nil
}

// CommentByID возвращает комментарий по идентификатору, включая удалённые.
func (s *Storage) CommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	const op = "storage.postgres.CommentByID"

	query := `
        SELECT id, content, author_id, parent_id, is_edited, is_deleted,
               deleted_at, created_at, updated_at
        FROM comments
        WHERE id = $1
    `

	var c models.Comment
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Content,
		&c.AuthorID,
		&c.ParentID,
		&c.IsEdited,
		&c.IsDeleted,
		&c.DeletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// viewQuery — общая форма выдачи: комментарий + имя автора + число живых
// прямых ответов (подзапрос, считается на чтении).
const viewQuery = `
    SELECT c.id, c.content, c.author_id, c.parent_id, c.is_edited, c.is_deleted,
           c.deleted_at, c.created_at, c.updated_at, u.username,
           (SELECT COUNT(*) FROM comments r
             WHERE r.parent_id = c.id AND r.is_deleted = FALSE) AS replies_count
    FROM comments c
    JOIN users u ON u.id = c.author_id
`

// ListTopLevel возвращает неудалённые корневые комментарии, новые первыми.
func (s *Storage) ListTopLevel(ctx context.Context) ([]models.CommentView, error) {
	const op = "storage.postgres.ListTopLevel"

	query := viewQuery + `
        WHERE c.is_deleted = FALSE AND c.parent_id IS NULL
        ORDER BY c.created_at DESC
    `

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanViews(op, rows)
}

// ListReplies возвращает неудалённые прямые ответы на parentID, новые первыми.
func (s *Storage) ListReplies(ctx context.Context, parentID uuid.UUID) ([]models.CommentView, error) {
	const op = "storage.postgres.ListReplies"

	query := viewQuery + `
        WHERE c.is_deleted = FALSE AND c.parent_id = $1
        ORDER BY c.created_at DESC
    `

	rows, err := s.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanViews(op, rows)
}

func scanViews(op string, rows pgx.Rows) ([]models.CommentView, error) {
	views := make([]models.CommentView, 0)

	for rows.Next() {
		var v models.CommentView
		if err := rows.Scan(
			&v.ID,
			&v.Content,
			&v.AuthorID,
			&v.ParentID,
			&v.IsEdited,
			&v.IsDeleted,
			&v.DeletedAt,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.AuthorName,
			&v.RepliesCount,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// UpdateContent меняет текст живого комментария.
// Условный UPDATE с RETURNING: удалённый или отсутствующий — ErrNotFound.
func (s *Storage) UpdateContent(ctx context.Context, id uuid.UUID, content string, now time.Time) (*models.Comment, error) {
	const op = "storage.postgres.UpdateContent"

	query := `
        UPDATE comments
        SET content = $2, is_edited = TRUE, updated_at = $3
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING id, content, author_id, parent_id, is_edited, is_deleted,
                  deleted_at, created_at, updated_at
    `

	var c models.Comment
	err := s.db.QueryRow(ctx, query, id, content, now).Scan(
		&c.ID,
		&c.Content,
		&c.AuthorID,
		&c.ParentID,
		&c.IsEdited,
		&c.IsDeleted,
		&c.DeletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// DeleteTree мягко удаляет поддерево целиком.
// Замыкание и массовое обновление — один атомарный стейтмент: конкурентные
// читатели видят либо всё поддерево живым, либо всё удалённым.
// Уже удалённые узлы перештамповываются новым deleted_at.
func (s *Storage) DeleteTree(ctx context.Context, id uuid.UUID, now time.Time) error {
	const op = "storage.postgres.DeleteTree"

	query := `
        WITH RECURSIVE comment_tree AS (
            SELECT id FROM comments WHERE id = $1
            UNION ALL
            SELECT c.id
            FROM comments c
            INNER JOIN comment_tree ct ON c.parent_id = ct.id
        )
        UPDATE comments
        SET is_deleted = TRUE, deleted_at = $2
        WHERE id IN (SELECT id FROM comment_tree)
    `

	cmdTag, err := s.db.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RestoreTree симметрично восстанавливает поддерево и возвращает корень.
func (s *Storage) RestoreTree(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	const op = "storage.postgres.RestoreTree"

	query := `
        WITH RECURSIVE comment_tree AS (
            SELECT id FROM comments WHERE id = $1
            UNION ALL
            SELECT c.id
            FROM comments c
            INNER JOIN comment_tree ct ON c.parent_id = ct.id
        )
        UPDATE comments
        SET is_deleted = FALSE, deleted_at = NULL
        WHERE id IN (SELECT id FROM comment_tree)
    `

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	restored, err := s.CommentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return restored, nil
}
