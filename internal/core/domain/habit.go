package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidCategory    = errors.New("invalid habit category")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
)

var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	CategoryHealth       = "health"
	CategoryFitness      = "fitness"
	CategoryLearning     = "learning"
	CategoryProductivity = "productivity"
	CategoryMindfulness  = "mindfulness"
	CategorySocial       = "social"
	CategoryFinance      = "finance"
	CategoryOther        = "other"
	MaxTitleLen          = 100
	MaxDescLen           = 500
)

var categories = map[string]bool{
	CategoryHealth:       true,
	CategoryFitness:      true,
	CategoryLearning:     true,
	CategoryProductivity: true,
	CategoryMindfulness:  true,
	CategorySocial:       true,
	CategoryFinance:      true,
	CategoryOther:        true,
}

type Habit struct {
	ID           string  `json:"id" db:"id"`
	UserID       string  `json:"user_id" db:"user_id"`
	Title        string  `json:"title" db:"title"`
	Description  string  `json:"description,omitempty" db:"description"`
	Category     string  `json:"category" db:"category"`
	ReminderTime *string `json:"reminder_time,omitempty" db:"reminder_time"`
	IsPublic     bool    `json:"is_public" db:"is_public"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	// Loaded from the completions table, oldest first.
	CompletionHistory []time.Time `json:"completion_history" db:"-"`
}

// HabitPatch carries a partial update; nil fields are left untouched.
// An empty ReminderTime clears the reminder.
type HabitPatch struct {
	Title        *string
	Description  *string
	Category     *string
	ReminderTime *string
	IsPublic     *bool
}

func normalizeCategory(category string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return CategoryOther, nil
	}
	if !categories[c] {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func validate(title, desc, reminder string) error {
	if title == "" {
		return ErrHabitTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}
	if utf8.RuneCountInString(desc) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	if reminder != "" && !reminderRegex.MatchString(reminder) {
		return ErrInvalidReminder
	}
	return nil
}

func reminderPtr(reminder string) *string {
	if reminder == "" {
		return nil
	}
	return &reminder
}

func NewHabit(userID, title, description, category, reminder string, isPublic bool) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	reminder = strings.TrimSpace(reminder)

	if err := validate(title, description, reminder); err != nil {
		return nil, err
	}

	cat, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:                uuid.New().String(),
		UserID:            userID,
		Title:             title,
		Description:       description,
		Category:          cat,
		ReminderTime:      reminderPtr(reminder),
		IsPublic:          isPublic,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		CompletionHistory: []time.Time{},
	}, nil
}

// ApplyPatch validates the merged result before touching h, so a rejected
// patch leaves the habit unchanged.
func (h *Habit) ApplyPatch(p HabitPatch) error {
	title := h.Title
	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
	}

	desc := h.Description
	if p.Description != nil {
		desc = strings.TrimSpace(*p.Description)
	}

	reminder := ""
	if h.ReminderTime != nil {
		reminder = *h.ReminderTime
	}
	if p.ReminderTime != nil {
		reminder = strings.TrimSpace(*p.ReminderTime)
	}

	if err := validate(title, desc, reminder); err != nil {
		return err
	}

	cat := h.Category
	if p.Category != nil {
		var err error
		if cat, err = normalizeCategory(*p.Category); err != nil {
			return err
		}
	}

	h.Title = title
	h.Description = desc
	h.Category = cat
	h.ReminderTime = reminderPtr(reminder)
	if p.IsPublic != nil {
		h.IsPublic = *p.IsPublic
	}
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) IsOwnedBy(userID string) bool {
	return userID != "" && h.UserID == userID
}

// CanView reports whether userID may read h: owners always, others only
// when the habit is public.
func (h *Habit) CanView(userID string) bool {
	return h.IsPublic || h.IsOwnedBy(userID)
}

func (h *Habit) RecordCompletion(at time.Time) {
	h.CompletionHistory = append(h.CompletionHistory, at.UTC())
}
