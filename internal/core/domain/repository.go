package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitConflict      = errors.New("habit version conflict")
	ErrCompletionNotFound = errors.New("completion not found")
	ErrUnauthorized       = errors.New("unauthorized access")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all active habits owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListPublic returns public habits of every user, newest first.
	ListPublic(ctx context.Context, limit int) ([]*Habit, error)

	// Update modifies an existing habit.
	// Implementations must reject stale versions with ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error
}

type CompletionRepository interface {
	Create(ctx context.Context, c *Completion) error

	// CreateOnce inserts c unless the habit already has an active completion
	// in [dayStart, dayEnd), in which case it returns ErrAlreadyCompletedToday.
	// The check and the insert must be atomic per habit.
	CreateOnce(ctx context.Context, c *Completion, dayStart, dayEnd time.Time) error

	GetByID(ctx context.Context, id string) (*Completion, error)

	// Delete soft-deletes a completion owned by userID.
	Delete(ctx context.Context, id string, userID string) error

	// ListByHabitID returns active completions in [from, to], most recent first.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*Completion, error)

	// HistoryByHabitIDs returns the completion instants of every habit in
	// habitIDs, oldest first. Habits without completions are absent from the map.
	HistoryByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]time.Time, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
