package domain

import (
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

// HabitView is a habit together with the statistics derived from its
// history. Stats are recomputed on every read and never stored.
type HabitView struct {
	*Habit
	Stats streak.Stats `json:"stats"`
}

type StatsSummary struct {
	Date              string      `json:"date"`
	TimeZone          string      `json:"time_zone"`
	TotalHabits       int         `json:"total_habits"`
	CompletedToday    int         `json:"completed_today"`
	BestCurrentStreak int         `json:"best_current_streak"`
	AverageLast30Days float64     `json:"average_last_30_days_percentage"`
	Habits            []HabitView `json:"habits"`
}

type RangeStats struct {
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	TotalHabits int              `json:"total_habits"`
	OverallRate float64          `json:"overall_completion_rate"`
	HabitStats  []HabitRangeStat `json:"habits"`
}

type HabitRangeStat struct {
	HabitID        string  `json:"habit_id"`
	HabitTitle     string  `json:"habit_title"`
	Category       string  `json:"category"`
	CompletionRate float64 `json:"completion_rate"`
	DaysCompleted  int     `json:"days_completed"`
	DailyProgress  []bool  `json:"daily_progress"`
}

type StatsInput struct {
	UserID    string
	StartDate streak.Day
	EndDate   streak.Day
	Location  *time.Location
}
