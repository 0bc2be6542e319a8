package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

// Consumer — обработчик джоб очереди уведомлений; реализует asynq.Handler.
//
// Семантика ошибок:
//   - неизвестный тип джобы или битый payload — терминальная ошибка
//     (asynq.SkipRetry), ретраи бессмысленны;
//   - дубликат по ключу идемпотентности — уже доставлено, успех;
//   - прочие ошибки стораджа считаются транзиентными и возвращаются как
//     есть: ретраи с бэкоффом делает сам брокер.
type Consumer struct {
	storage storage.NotificationStorage
	log     *slog.Logger
}

// NewConsumer создаёт обработчик.
func NewConsumer(st storage.NotificationStorage, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}

	return &Consumer{storage: st, log: log}
}

// ProcessTask диспетчеризует джобу по типу.
func (c *Consumer) ProcessTask(ctx context.Context, t *asynq.Task) error {
	const op = "queue.consumer.ProcessTask"

	switch t.Type() {
	case TaskSendNotification:
		return c.handleSendNotification(ctx, t)
	default:
		c.log.Error("unrecognized_task",
			slog.String("op", op),
			slog.String("type", t.Type()),
		)
		return fmt.Errorf("%s: unrecognized task %q: %w", op, t.Type(), asynq.SkipRetry)
	}
}

func (c *Consumer) handleSendNotification(ctx context.Context, t *asynq.Task) error {
	const op = "queue.consumer.handleSendNotification"

	var p SendNotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		c.log.Error("bad_payload",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: bad payload: %v: %w", op, err, asynq.SkipRetry)
	}

	n := models.Notification{
		RecipientID: p.RecipientID,
		SenderID:    p.SenderID,
		CommentID:   p.CommentID,
	}

	if err := c.storage.SaveNotification(ctx, &n); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Повторная доставка того же ответа: уведомление уже есть.
			c.log.Debug("duplicate_notification",
				slog.String("op", op),
				slog.String("comment_id", p.CommentID.String()),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("notification_persisted",
		slog.String("op", op),
		slog.String("notification_id", n.ID.String()),
		slog.String("recipient_id", p.RecipientID.String()),
	)

	return nil
}

var _ asynq.Handler = (*Consumer)(nil)
