package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

func TestPostgresHabitRepository_Integration(t *testing.T) {
	db := setupTestDB(t)

	repo := NewPostgresHabitRepository(db)
	ctx := context.Background()

	userID := "habit-owner-1"
	insertUser(t, db, userID, "habit-test@kanso.app")

	newHabit, err := domain.NewHabit(userID, "Read", "Ten pages", "learning", "08:00", false)
	require.NoError(t, err)
	habitID := newHabit.ID

	t.Run("Create Habit", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newHabit))
		assert.Equal(t, 1, newHabit.Version)
	})

	t.Run("Get By ID", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, habitID)
		require.NoError(t, err)
		assert.Equal(t, newHabit.ID, fetched.ID)
		assert.Equal(t, "learning", fetched.Category)
		require.NotNil(t, fetched.ReminderTime)
		assert.Equal(t, "08:00", *fetched.ReminderTime)
		assert.Equal(t, 1, fetched.Version)
		assert.Nil(t, fetched.DeletedAt)
	})

	t.Run("Update Habit", func(t *testing.T) {
		oldUpdatedAt := newHabit.UpdatedAt
		title := "Read more"
		require.NoError(t, newHabit.ApplyPatch(domain.HabitPatch{Title: &title}))

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, repo.Update(ctx, newHabit))
		assert.Equal(t, 2, newHabit.Version)

		updated, err := repo.GetByID(ctx, habitID)
		require.NoError(t, err)
		assert.Equal(t, "Read more", updated.Title)
		assert.True(t, updated.UpdatedAt.After(oldUpdatedAt))
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("List By UserID", func(t *testing.T) {
		list, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, habitID, list[0].ID)
	})

	t.Run("List Public newest first", func(t *testing.T) {
		older, err := domain.NewHabit(userID, "Walk", "", "fitness", "", true)
		require.NoError(t, err)
		older.CreatedAt = older.CreatedAt.Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, older))

		newer, err := domain.NewHabit(userID, "Stretch", "", "fitness", "", true)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, newer))

		feed, err := repo.ListPublic(ctx, 10)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, newer.ID, feed[0].ID)
		assert.Equal(t, older.ID, feed[1].ID)

		limited, err := repo.ListPublic(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Delete Habit (Soft Delete Check)", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, habitID))

		_, err := repo.GetByID(ctx, habitID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		var count int
		err = db.QueryRow("SELECT count(*) FROM habits WHERE id=$1 AND deleted_at IS NOT NULL", habitID).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "row must survive a soft delete")
	})

	t.Run("Handle Null Fields", func(t *testing.T) {
		h, err := domain.NewHabit(userID, "No reminder", "", "", "", false)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		fetched, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Nil(t, fetched.ReminderTime)
		assert.Equal(t, domain.CategoryOther, fetched.Category)
	})

	t.Run("Update/Delete Non-Existent ID", func(t *testing.T) {
		ghost := &domain.Habit{ID: uuid.NewString(), UserID: userID, Title: "Ghost", Category: "other", Version: 1}

		assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, ghost.ID), domain.ErrHabitNotFound)
	})

	t.Run("Unknown owner", func(t *testing.T) {
		h, err := domain.NewHabit("no-such-user", "Orphan", "", "", "", false)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, h), domain.ErrHabitInvalidUserID)
	})

	t.Run("Optimistic Locking: Prevent Overwrite", func(t *testing.T) {
		h, err := domain.NewHabit(userID, "Conflict Base", "", "", "", false)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, h))

		copyA, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		copyB, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)

		copyB.Title = "B wins"
		require.NoError(t, repo.Update(ctx, copyB))

		copyA.Title = "A loses"
		assert.ErrorIs(t, repo.Update(ctx, copyA), domain.ErrHabitConflict)
	})
}
