package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Enqueuer — контракт постановки джоб для сервисного слоя.
// Отдельный интерфейс, чтобы тесты подставляли мок вместо живого брокера.
type Enqueuer interface {
	// EnqueueSendNotification ставит джобу send-notification в очередь
	// уведомлений. Ошибка означает недоступность брокера; комментарий к
	// этому моменту уже закоммичен, так что вызывающий только логирует.
	EnqueueSendNotification(ctx context.Context, p SendNotificationPayload) error
}

// Producer — продьюсер поверх клиента asynq.
type Producer struct {
	client   *asynq.Client
	maxRetry int
}

// NewProducer создаёт продьюсер. maxRetry — лимит ретраев на джобу
// (дальше брокер отдаёт её в архив как permanently failed).
func NewProducer(client *asynq.Client, maxRetry int) *Producer {
	return &Producer{client: client, maxRetry: maxRetry}
}

// EnqueueSendNotification сериализует payload и ставит джобу.
func (p *Producer) EnqueueSendNotification(ctx context.Context, payload SendNotificationPayload) error {
	const op = "queue.producer.EnqueueSendNotification"

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	task := asynq.NewTask(TaskSendNotification, raw)

	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(p.maxRetry),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var _ Enqueuer = (*Producer)(nil)
