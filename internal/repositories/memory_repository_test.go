package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
)

func TestMemoryUsersEmailUnique(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Email: "ann@example.com", Role: models.RoleUser}))
	err := users.Create(ctx, &models.User{ID: "u2", Email: "ANN@example.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	u, err := users.GetByEmail(ctx, "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	ok, err := users.Exists(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTasksFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, a := range []string{"u1", "u2", "u1"} {
		require.NoError(t, tasks.Store(ctx, &models.Task{
			ID: string(rune('a' + i)), AssignedTo: a, Status: models.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	u1 := "u1"
	got, err := tasks.FindAll(ctx, models.TaskFilter{AssignedTo: &u1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	require.NoError(t, tasks.UpdateStatus(ctx, "a", models.StatusCompleted, base))
	done := models.StatusCompleted
	got, err = tasks.FindAll(ctx, models.TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, tasks.Delete(ctx, "a"))
	assert.ErrorIs(t, tasks.Delete(ctx, "a"), ErrNotFound)
	_, err = tasks.FindByID(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTaskUpdateKeepsCreator(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tasks.Store(ctx, &models.Task{ID: "t", AssignedBy: "admin", CreatedAt: created}))

	require.NoError(t, tasks.Update(ctx, &models.Task{ID: "t", Title: "new", AssignedBy: "someone"}))
	got, err := tasks.FindByID(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "admin", got.AssignedBy)
	assert.True(t, created.Equal(got.CreatedAt))

	assert.ErrorIs(t, tasks.Update(ctx, &models.Task{ID: "missing"}), ErrNotFound)
}

func TestMemoryTasksSameTimestampOrderedByID(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, tasks.Store(ctx, &models.Task{ID: id, AssignedTo: "u1", Status: models.StatusPending, CreatedAt: at}))
	}

	got, err := tasks.FindAll(ctx, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
