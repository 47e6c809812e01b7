package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

const DefaultPublicFeedLimit = 50

type HabitService struct {
	repo           domain.HabitRepository
	completionRepo domain.CompletionRepository
	stats          *StatsService
	publicLimit    int
}

func NewHabitService(repo domain.HabitRepository, completionRepo domain.CompletionRepository, stats *StatsService) *HabitService {
	return &HabitService{
		repo:           repo,
		completionRepo: completionRepo,
		stats:          stats,
		publicLimit:    DefaultPublicFeedLimit,
	}
}

func (s *HabitService) WithPublicFeedLimit(limit int) *HabitService {
	if limit > 0 {
		s.publicLimit = limit
	}
	return s
}

type CreateHabitInput struct {
	UserID       string
	Title        string
	Description  string
	Category     string
	ReminderTime string
	IsPublic     bool
}

type UpdateHabitInput struct {
	ID      string
	UserID  string
	Patch   domain.HabitPatch
	Version int
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput, loc *time.Location) (*domain.HabitView, error) {
	habit, err := domain.NewHabit(
		input.UserID,
		input.Title,
		input.Description,
		input.Category,
		input.ReminderTime,
		input.IsPublic,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	view := s.stats.ForHabit(habit, loc)
	return &view, nil
}

// Get returns a habit the caller owns, or any public habit.
func (s *HabitService) Get(ctx context.Context, id, userID string, loc *time.Location) (*domain.HabitView, error) {
	habit, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	view := s.stats.ForHabit(habit, loc)
	return &view, nil
}

func (s *HabitService) ListMine(ctx context.Context, userID string, loc *time.Location) ([]domain.HabitView, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := attachHistories(ctx, s.completionRepo, habits); err != nil {
		return nil, err
	}

	return s.stats.Views(habits, loc), nil
}

func (s *HabitService) ListPublic(ctx context.Context, loc *time.Location) ([]domain.HabitView, error) {
	habits, err := s.repo.ListPublic(ctx, s.publicLimit)
	if err != nil {
		return nil, err
	}

	if err := attachHistories(ctx, s.completionRepo, habits); err != nil {
		return nil, err
	}

	return s.stats.Views(habits, loc), nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput, loc *time.Location) (*domain.HabitView, error) {
	habit, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if !habit.IsOwnedBy(input.UserID) {
		return nil, domain.ErrHabitNotFound
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	if err := habit.ApplyPatch(input.Patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if err := attachHistories(ctx, s.completionRepo, []*domain.Habit{habit}); err != nil {
		return nil, err
	}

	view := s.stats.ForHabit(habit, loc)
	return &view, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !habit.IsOwnedBy(userID) {
		return domain.ErrHabitNotFound
	}

	return s.repo.Delete(ctx, id)
}

// MarkComplete stores a completion at the current instant and returns the
// habit with its history already extended, so the caller does not need a
// second read to see the new streak. At most one completion is stored per
// habit and local day, even under concurrent calls.
func (s *HabitService) MarkComplete(ctx context.Context, id, userID string, loc *time.Location) (*domain.HabitView, error) {
	habit, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !habit.IsOwnedBy(userID) {
		return nil, domain.ErrUnauthorized
	}

	if s.stats.ForHabit(habit, loc).Stats.CompletedToday {
		return nil, domain.ErrAlreadyCompletedToday
	}

	now := s.stats.Now()
	completion := domain.NewCompletion(habit.ID, userID, now)
	if err := completion.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCompletion, err)
	}

	dayStart, dayEnd := streak.DayOf(now, loc).Bounds(loc)
	if err := s.completionRepo.CreateOnce(ctx, completion, dayStart, dayEnd); err != nil {
		return nil, err
	}

	habit.RecordCompletion(completion.CompletedAt)

	view := s.stats.ForHabit(habit, loc)
	log.Printf("[HABIT] %s completed by %s (streak=%d)", habit.ID, userID, view.Stats.CurrentStreak)

	return &view, nil
}

func (s *HabitService) load(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !habit.CanView(userID) {
		return nil, domain.ErrHabitNotFound
	}

	if err := attachHistories(ctx, s.completionRepo, []*domain.Habit{habit}); err != nil {
		return nil, err
	}

	return habit, nil
}
