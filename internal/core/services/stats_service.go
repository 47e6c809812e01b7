package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type StatsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	now            func() time.Time
}

func NewStatsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository) *StatsService {
	return &StatsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		now:            time.Now,
	}
}

// WithClock replaces the wall clock used to decide "today".
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

func (s *StatsService) Now() time.Time {
	return s.now()
}

func (s *StatsService) Today(loc *time.Location) streak.Day {
	return streak.DayOf(s.now(), safeLocation(loc))
}

func (s *StatsService) ForHabit(h *domain.Habit, loc *time.Location) domain.HabitView {
	loc = safeLocation(loc)
	return domain.HabitView{
		Habit: h,
		Stats: streak.Compute(h.CompletionHistory, s.Today(loc), loc),
	}
}

func (s *StatsService) Views(habits []*domain.Habit, loc *time.Location) []domain.HabitView {
	views := make([]domain.HabitView, 0, len(habits))
	for _, h := range habits {
		views = append(views, s.ForHabit(h, loc))
	}
	return views
}

func (s *StatsService) Summary(ctx context.Context, userID string, loc *time.Location) (*domain.StatsSummary, error) {
	loc = safeLocation(loc)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := attachHistories(ctx, s.completionRepo, habits); err != nil {
		return nil, err
	}

	summary := &domain.StatsSummary{
		Date:        s.Today(loc).String(),
		TimeZone:    loc.String(),
		TotalHabits: len(habits),
		Habits:      s.Views(habits, loc),
	}

	percentSum := 0
	for _, v := range summary.Habits {
		if v.Stats.CompletedToday {
			summary.CompletedToday++
		}
		summary.BestCurrentStreak = max(summary.BestCurrentStreak, v.Stats.CurrentStreak)
		percentSum += v.Stats.Last30DaysPercentage
	}

	if len(summary.Habits) > 0 {
		summary.AverageLast30Days = float64(percentSum) / float64(len(summary.Habits))
	}

	return summary, nil
}

func (s *StatsService) Range(ctx context.Context, input domain.StatsInput) (*domain.RangeStats, error) {
	if input.StartDate > input.EndDate {
		return nil, fmt.Errorf("%w: start date after end date", ErrInvalidRange)
	}

	loc := safeLocation(input.Location)

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := attachHistories(ctx, s.completionRepo, habits); err != nil {
		return nil, err
	}

	stats := &domain.RangeStats{
		StartDate:   input.StartDate.String(),
		EndDate:     input.EndDate.String(),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitRangeStat, 0, len(habits)),
	}

	totalDaysPossible := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		days := streak.NormalizeDays(h.CompletionHistory, loc)

		hStat := domain.HabitRangeStat{
			HabitID:       h.ID,
			HabitTitle:    h.Title,
			Category:      h.Category,
			DailyProgress: make([]bool, 0, int(input.EndDate-input.StartDate)+1),
		}

		daysInPeriod := 0
		for d := input.StartDate; d <= input.EndDate; d = d.AddDays(1) {
			done := days.Has(d)
			hStat.DailyProgress = append(hStat.DailyProgress, done)

			if done {
				hStat.DaysCompleted++
				totalDaysCompleted++
			}

			daysInPeriod++
			totalDaysPossible++
		}

		hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(daysInPeriod) * 100

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysPossible > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysPossible) * 100
	}

	return stats, nil
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
