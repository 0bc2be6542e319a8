package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/queue"
	"github.com/savina-m/comments-engine/internal/storage"
	"github.com/savina-m/comments-engine/mocks"
)

// mustTask — джоба send-notification с валидным JSON-пейлоадом.
func mustTask(t *testing.T, p queue.SendNotificationPayload) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(queue.TaskSendNotification, raw)
}

func TestConsumer_ProcessTask_Persists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockNotificationStorage(ctrl)
	c := queue.NewConsumer(ms, nil)

	p := queue.SendNotificationPayload{
		RecipientID: uuid.New(),
		SenderID:    uuid.New(),
		CommentID:   uuid.New(),
		ParentID:    uuid.New(),
	}

	ms.EXPECT().
		SaveNotification(gomock.Any(), &models.Notification{
			RecipientID: p.RecipientID,
			SenderID:    p.SenderID,
			CommentID:   p.CommentID,
		}).
		Return(nil)

	require.NoError(t, c.ProcessTask(context.Background(), mustTask(t, p)))
}

// Дубликат по ключу идемпотентности — не ошибка: джоба уже доставлена.
func TestConsumer_ProcessTask_DuplicateIsSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockNotificationStorage(ctrl)
	c := queue.NewConsumer(ms, nil)

	ms.EXPECT().SaveNotification(gomock.Any(), gomock.Any()).Return(storage.ErrConflict)

	p := queue.SendNotificationPayload{RecipientID: uuid.New(), SenderID: uuid.New(), CommentID: uuid.New()}
	require.NoError(t, c.ProcessTask(context.Background(), mustTask(t, p)))
}

// Транзиентная ошибка стораджа возвращается как есть — брокер ретраит.
func TestConsumer_ProcessTask_TransientErrorRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockNotificationStorage(ctrl)
	c := queue.NewConsumer(ms, nil)

	dbErr := errors.New("connection reset")
	ms.EXPECT().SaveNotification(gomock.Any(), gomock.Any()).Return(dbErr)

	p := queue.SendNotificationPayload{RecipientID: uuid.New(), SenderID: uuid.New(), CommentID: uuid.New()}
	err := c.ProcessTask(context.Background(), mustTask(t, p))
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

// Битый payload терминален — ретраи его не починят.
func TestConsumer_ProcessTask_BadPayloadSkipsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := queue.NewConsumer(mocks.NewMockNotificationStorage(ctrl), nil)

	task := asynq.NewTask(queue.TaskSendNotification, []byte("{not json"))
	err := c.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestConsumer_ProcessTask_UnknownTypeSkipsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := queue.NewConsumer(mocks.NewMockNotificationStorage(ctrl), nil)

	task := asynq.NewTask("no-such-task", nil)
	err := c.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
