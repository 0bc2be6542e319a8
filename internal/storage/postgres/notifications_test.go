package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

func TestIntegration_SaveNotification_And_Dedup(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	root := mustCreate(t, st, alice, nil, "root")
	reply := mustCreate(t, st, bob, &root.ID, "reply")

	n := models.Notification{
		RecipientID: alice,
		SenderID:    bob,
		CommentID:   reply.ID,
	}
	require.NoError(t, st.SaveNotification(context.Background(), &n))
	require.NotEqual(t, uuid.Nil, n.ID)
	require.False(t, n.IsRead)
	require.False(t, n.CreatedAt.IsZero())

	// Повторная доставка той же джобы упирается в ключ идемпотентности.
	dup := models.Notification{
		RecipientID: alice,
		SenderID:    bob,
		CommentID:   reply.ID,
	}
	require.ErrorIs(t, st.SaveNotification(context.Background(), &dup), storage.ErrConflict)
}

func TestIntegration_ListNotifications(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	root := mustCreate(t, st, alice, nil, "root")
	replyA := mustCreate(t, st, bob, &root.ID, "reply a")
	replyB := mustCreate(t, st, carol, &root.ID, "reply b")

	for _, n := range []models.Notification{
		{RecipientID: alice, SenderID: bob, CommentID: replyA.ID},
		{RecipientID: alice, SenderID: carol, CommentID: replyB.ID},
	} {
		n := n
		require.NoError(t, st.SaveNotification(context.Background(), &n))
	}

	got, err := st.ListNotifications(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Новые первыми.
	require.False(t, got[0].CreatedAt.Before(got[1].CreatedAt))

	// Чужой ящик пуст.
	other, err := st.ListNotifications(context.Background(), bob)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestIntegration_MarkNotificationRead(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	root := mustCreate(t, st, alice, nil, "root")
	reply := mustCreate(t, st, bob, &root.ID, "reply")

	n := models.Notification{RecipientID: alice, SenderID: bob, CommentID: reply.ID}
	require.NoError(t, st.SaveNotification(context.Background(), &n))

	read, err := st.MarkNotificationRead(context.Background(), n.ID, alice)
	require.NoError(t, err)
	require.True(t, read.IsRead)

	// Идемпотентно.
	again, err := st.MarkNotificationRead(context.Background(), n.ID, alice)
	require.NoError(t, err)
	require.True(t, again.IsRead)

	// Чужим recipient_id уведомление недоступно.
	_, err = st.MarkNotificationRead(context.Background(), n.ID, bob)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Несуществующее.
	_, err = st.MarkNotificationRead(context.Background(), uuid.New(), alice)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
