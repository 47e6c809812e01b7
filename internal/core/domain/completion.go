package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCompletion     = errors.New("invalid completion data")
	ErrAlreadyCompletedToday = errors.New("habit already completed today")
)

// Completion is one "marked complete" event for a habit.
type Completion struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	CompletedAt time.Time  `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewCompletion(habitID, userID string, at time.Time) *Completion {
	return &Completion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		UserID:      userID,
		CompletedAt: at.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id is required")
	}
	if c.CompletedAt.IsZero() {
		return errors.New("completed_at is required")
	}
	return nil
}
