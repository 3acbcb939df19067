package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

// runStoreSuite checks the behaviour every Store implementation has to share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) {
		testUsers(t, newStore(t))
	})
	t.Run("task crud", func(t *testing.T) {
		testTaskCRUD(t, newStore(t))
	})
	t.Run("list by owner", func(t *testing.T) {
		testListByOwner(t, newStore(t))
	})
	t.Run("stats", func(t *testing.T) {
		testStats(t, newStore(t))
	})
}

func mustCreateUser(t *testing.T, s Store, email string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{Email: email, HashedPassword: "hash", IsActive: true})
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()

	a := mustCreateUser(t, s, "a@x.com")
	assert.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	b := mustCreateUser(t, s, "b@x.com")
	assert.Greater(t, b.ID, a.ID)

	_, err := s.CreateUser(ctx, model.User{Email: "a@x.com", HashedPassword: "other", IsActive: true})
	assert.ErrorIs(t, err, ErrorConflict)

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "hash", got.HashedPassword)
	assert.True(t, got.IsActive)

	got, err = s.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", got.Email)

	_, err = s.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrorNotFound)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrorNotFound)
}

func testTaskCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	owner := mustCreateUser(t, s, "a@x.com")

	desc := "first draft"
	created, err := s.CreateTask(ctx, model.Task{OwnerID: owner.ID, Title: "Write", Description: &desc, Priority: 3, Completed: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, owner.ID, created.OwnerID)
	assert.False(t, created.Completed, "new tasks start pending")
	assert.False(t, created.CreatedAt.IsZero())
	assert.WithinDuration(t, created.CreatedAt, created.UpdatedAt, time.Millisecond)

	got, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "first draft", *got.Description)
	assert.Equal(t, 3, got.Priority)

	title := "Write more"
	done := true
	updated, err := s.UpdateTask(ctx, created.ID, model.TaskPatch{Title: &title, Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "Write more", updated.Title)
	assert.True(t, updated.Completed)
	assert.Equal(t, 3, updated.Priority)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "first draft", *updated.Description)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	cleared, err := s.UpdateTask(ctx, created.ID, model.TaskPatch{ClearDescription: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "Write more", cleared.Title)

	got, err = s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	_, err = s.UpdateTask(ctx, 9999, model.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrorNotFound)

	require.NoError(t, s.DeleteTask(ctx, created.ID))
	_, err = s.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, ErrorNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, created.ID), ErrorNotFound)
}

func testListByOwner(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustCreateUser(t, s, "a@x.com")
	b := mustCreateUser(t, s, "b@x.com")

	for i := 1; i <= 5; i++ {
		_, err := s.CreateTask(ctx, model.Task{OwnerID: a.ID, Title: fmt.Sprintf("a%d", i), Priority: 1})
		require.NoError(t, err)
		_, err = s.CreateTask(ctx, model.Task{OwnerID: b.ID, Title: fmt.Sprintf("b%d", i), Priority: 1})
		require.NoError(t, err)
	}

	all, err := s.ListTasksByOwner(ctx, a.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, task := range all {
		assert.Equal(t, a.ID, task.OwnerID)
		assert.Equal(t, fmt.Sprintf("a%d", i+1), task.Title)
	}

	page, err := s.ListTasksByOwner(ctx, a.ID, 3, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a4", page[0].Title)

	page, err = s.ListTasksByOwner(ctx, a.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a2", page[0].Title)
	assert.Equal(t, "a3", page[1].Title)

	empty, err := s.ListTasksByOwner(ctx, a.ID, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	none, err := s.ListTasksByOwner(ctx, 9999, 0, 100)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testStats(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustCreateUser(t, s, "a@x.com")
	b := mustCreateUser(t, s, "b@x.com")

	done := true
	for i, p := range []int{1, 5, 5, 10} {
		task, err := s.CreateTask(ctx, model.Task{OwnerID: a.ID, Title: fmt.Sprintf("t%d", i), Priority: p})
		require.NoError(t, err)
		if i == 0 {
			_, err = s.UpdateTask(ctx, task.ID, model.TaskPatch{Completed: &done})
			require.NoError(t, err)
		}
	}
	_, err := s.CreateTask(ctx, model.Task{OwnerID: b.ID, Title: "other", Priority: 5})
	require.NoError(t, err)

	stats, err := s.TaskStats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 1, stats.ByStatus[model.StatusCompleted])
	assert.Equal(t, 3, stats.ByStatus[model.StatusPending])
	assert.Equal(t, map[int]int{1: 1, 5: 2, 10: 1}, stats.ByPriority)

	empty, err := s.TaskStats(ctx, 9999)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTasks)
	assert.Equal(t, 0, empty.ByStatus[model.StatusPending])
}
