package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

func TestService_ListNotifications(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.ListNotifications(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	user := uuid.New()
	items := []models.Notification{
		{
			ID:          uuid.New(),
			RecipientID: user,
			SenderID:    uuid.New(),
			CommentID:   uuid.New(),
			CreatedAt:   time.Now().UTC(),
		},
	}
	ms.EXPECT().ListNotifications(gomock.Any(), user).Return(items, nil)

	got, err := s.ListNotifications(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, items, got)

	ms.EXPECT().ListNotifications(gomock.Any(), user).Return(nil, errors.New("db down"))
	_, err = s.ListNotifications(context.Background(), user)
	require.ErrorIs(t, err, ErrInternal)
}

func TestService_MarkNotificationRead(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	user := uuid.New()
	id := uuid.New()

	_, err := s.MarkNotificationRead(context.Background(), uuid.Nil, user)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.MarkNotificationRead(context.Background(), id, uuid.Nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	read := &models.Notification{
		ID:          id,
		RecipientID: user,
		SenderID:    uuid.New(),
		CommentID:   uuid.New(),
		IsRead:      true,
		CreatedAt:   time.Now().UTC(),
	}
	ms.EXPECT().MarkNotificationRead(gomock.Any(), id, user).Return(read, nil)

	got, err := s.MarkNotificationRead(context.Background(), id, user)
	require.NoError(t, err)
	require.True(t, got.IsRead)

	// Чужое или несуществующее уведомление неотличимы: оба — ErrNotFound.
	ms.EXPECT().MarkNotificationRead(gomock.Any(), id, user).Return(nil, storage.ErrNotFound)
	_, err = s.MarkNotificationRead(context.Background(), id, user)
	require.ErrorIs(t, err, ErrNotFound)
}
