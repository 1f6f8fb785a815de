package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ruslat/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	u := &models.User{ID: "1", Name: "Иван Петров", Page: "ivanov"}
	require.NoError(t, store.UpsertUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	got, err := store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", got.Name)
	assert.Equal(t, "ivanov", got.Page)

	u.Name = "Иван Петрович Петров"
	require.NoError(t, store.UpsertUser(ctx, u))
	got, err = store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петрович Петров", got.Name)

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.DeleteUser(ctx, "1"))
	_, err = store.GetUser(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_ListKeepsOrder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, store.UpsertUser(ctx, &models.User{ID: id, Name: "user " + id}))
	}
	// updating must not move the user
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "b", Name: "renamed"}))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "renamed", users[0].Name)
}

func TestSQLiteStorage_ReplaceUsers(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "old", Name: "Old"}))
	require.NoError(t, store.ReplaceUsers(ctx, []*models.User{
		{ID: "2", Name: "Second"},
		{ID: "1", Name: "First", Page: "first"},
	}))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "2", users[0].ID)
	assert.Equal(t, "first", users[1].Page)

	_, err = store.GetUser(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_ReplaceUsersRollsBack(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "keep", Name: "Keep"}))
	err := store.ReplaceUsers(ctx, []*models.User{
		{ID: "dup", Name: "A"},
		{ID: "dup", Name: "B"},
	})
	require.Error(t, err)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "keep", users[0].ID)
}

func TestSQLiteStorage_SizeBytes(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.UpsertUser(context.Background(), &models.User{ID: "1", Name: "x"}))
	size, err := store.SizeBytes()
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
}
