package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/storage"
)

// Интеграционные тесты для пакета postgres (comments.go):
// — поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// — применяют миграции из ./migrations;
// — проверяют:
//    CreateComment: корень, ответ, ответ на отсутствующего/удалённого родителя;
//    ListTopLevel/ListReplies: фильтрацию удалённых, порядок, username и
//      счётчик живых прямых ответов;
//    UpdateContent: is_edited/updated_at, ErrNotFound на удалённом;
//    DeleteTree/RestoreTree: каскад по замыканию поддерева, нетронутость
//      соседних веток, идемпотентность восстановления.

// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — определяет корень репозитория относительно текущего файла тестов.
// Используется для поиска SQL-миграций в каталоге ./migrations независимо от текущего рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

// readMigration — читает содержимое SQL-миграции из подкаталога ./migrations.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	root := repoRootFromThisFile()
	path := filepath.Join(root, "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres — поднимает PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// применяем миграции.
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	for _, name := range []string{"1_init_users.sql", "2_init_comments.sql", "3_init_notifications.sql"} {
		_, err = pool.Exec(ctx, readMigration(t, name))
		require.NoError(t, err, "apply migration %s", name)
	}

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// seedUser — вставляет пользователя и возвращает его ID.
func seedUser(t *testing.T, st *Storage, username string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := st.db.Exec(context.Background(),
		`INSERT INTO users (id, username) VALUES ($1, $2)`, id, username)
	require.NoError(t, err)
	return id
}

// mustCreate — создаёт комментарий и падает, если не вышло.
func mustCreate(t *testing.T, st *Storage, author uuid.UUID, parentID *uuid.UUID, content string) *models.Comment {
	t.Helper()
	c, err := st.CreateComment(context.Background(), models.Comment{
		Content:  content,
		AuthorID: author,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return c
}

func TestIntegration_CreateComment_RootAndReply(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	root := mustCreate(t, st, alice, nil, "root")
	require.NotEqual(t, uuid.Nil, root.ID)
	require.Nil(t, root.ParentID)
	require.False(t, root.IsEdited)
	require.False(t, root.IsDeleted)
	require.False(t, root.CreatedAt.IsZero())

	reply := mustCreate(t, st, bob, &root.ID, "reply")
	require.NotNil(t, reply.ParentID)
	require.Equal(t, root.ID, *reply.ParentID)

	got, err := st.CommentByID(context.Background(), reply.ID)
	require.NoError(t, err)
	require.Equal(t, "reply", got.Content)
	require.Equal(t, bob, got.AuthorID)
}

func TestIntegration_CreateComment_ParentMissingOrDeleted(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")

	// Несуществующий родитель.
	missing := uuid.New()
	_, err := st.CreateComment(context.Background(), models.Comment{
		Content: "orphan", AuthorID: alice, ParentID: &missing,
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)

	// Удалённый родитель.
	root := mustCreate(t, st, alice, nil, "root")
	require.NoError(t, st.DeleteTree(context.Background(), root.ID, time.Now().UTC()))

	_, err = st.CreateComment(context.Background(), models.Comment{
		Content: "late reply", AuthorID: alice, ParentID: &root.ID,
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)
}

func TestIntegration_ListTopLevel_And_Replies(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	first := mustCreate(t, st, alice, nil, "first root")
	second := mustCreate(t, st, bob, nil, "second root")

	// Два живых ответа и один удалённый: счётчик должен показать 2.
	mustCreate(t, st, bob, &first.ID, "reply one")
	mustCreate(t, st, alice, &first.ID, "reply two")
	dead := mustCreate(t, st, bob, &first.ID, "reply three")
	require.NoError(t, st.DeleteTree(context.Background(), dead.ID, time.Now().UTC()))

	tops, err := st.ListTopLevel(context.Background())
	require.NoError(t, err)
	require.Len(t, tops, 2)

	// Новые первыми.
	require.Equal(t, second.ID, tops[0].ID)
	require.Equal(t, first.ID, tops[1].ID)
	require.Equal(t, "alice", tops[1].AuthorName)
	require.EqualValues(t, 2, tops[1].RepliesCount)
	require.EqualValues(t, 0, tops[0].RepliesCount)

	replies, err := st.ListReplies(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	for _, r := range replies {
		require.NotEqual(t, dead.ID, r.ID)
		require.False(t, r.IsDeleted)
	}
}

func TestIntegration_UpdateContent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	c := mustCreate(t, st, alice, nil, "before")

	now := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := st.UpdateContent(context.Background(), c.ID, "after", now)
	require.NoError(t, err)
	require.Equal(t, "after", updated.Content)
	require.True(t, updated.IsEdited)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(now))

	// Удалённый комментарий не правится.
	require.NoError(t, st.DeleteTree(context.Background(), c.ID, time.Now().UTC()))
	_, err = st.UpdateContent(context.Background(), c.ID, "too late", time.Now().UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Несуществующий.
	_, err = st.UpdateContent(context.Background(), uuid.New(), "x", time.Now().UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Каскад: удаление корня прячет всё поддерево, соседняя ветка не тронута;
// восстановление возвращает поддерево целиком.
func TestIntegration_DeleteTree_RestoreTree_Cascade(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	// root -> child -> grandchild; other — отдельное дерево.
	root := mustCreate(t, st, alice, nil, "root")
	child := mustCreate(t, st, bob, &root.ID, "child")
	grandchild := mustCreate(t, st, alice, &child.ID, "grandchild")
	other := mustCreate(t, st, bob, nil, "other tree")

	deletedAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, st.DeleteTree(context.Background(), root.ID, deletedAt))

	for _, id := range []uuid.UUID{root.ID, child.ID, grandchild.ID} {
		got, err := st.CommentByID(context.Background(), id)
		require.NoError(t, err)
		require.True(t, got.IsDeleted)
		require.NotNil(t, got.DeletedAt)
	}

	// Соседнее дерево не задето.
	untouched, err := st.CommentByID(context.Background(), other.ID)
	require.NoError(t, err)
	require.False(t, untouched.IsDeleted)

	// Из выдачи поддерево пропало.
	tops, err := st.ListTopLevel(context.Background())
	require.NoError(t, err)
	require.Len(t, tops, 1)
	require.Equal(t, other.ID, tops[0].ID)

	// Восстановление возвращает всё поддерево.
	restored, err := st.RestoreTree(context.Background(), root.ID)
	require.NoError(t, err)
	require.False(t, restored.IsDeleted)
	require.Nil(t, restored.DeletedAt)

	for _, id := range []uuid.UUID{child.ID, grandchild.ID} {
		got, err := st.CommentByID(context.Background(), id)
		require.NoError(t, err)
		require.False(t, got.IsDeleted)
		require.Nil(t, got.DeletedAt)
	}
}

func TestIntegration_DeleteTree_NotFound_And_RestoreIdempotence(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	alice := seedUser(t, st, "alice")

	require.ErrorIs(t, st.DeleteTree(context.Background(), uuid.New(), time.Now().UTC()), storage.ErrNotFound)

	_, err := st.RestoreTree(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Повторное восстановление живого поддерева — no-op без ошибки.
	c := mustCreate(t, st, alice, nil, "root")
	require.NoError(t, st.DeleteTree(context.Background(), c.ID, time.Now().UTC()))

	_, err = st.RestoreTree(context.Background(), c.ID)
	require.NoError(t, err)
	again, err := st.RestoreTree(context.Background(), c.ID)
	require.NoError(t, err)
	require.False(t, again.IsDeleted)
}
