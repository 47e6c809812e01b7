package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository) *CompletionService {
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
	}
}

func (s *CompletionService) ListByHabitID(ctx context.Context, habitID, userID string, from, to time.Time) ([]*domain.Completion, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if !habit.CanView(userID) {
		return nil, domain.ErrHabitNotFound
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

// Delete undoes a completion. Only the user who recorded it may remove it.
func (s *CompletionService) Delete(ctx context.Context, id string, userID string) error {
	completion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if completion.UserID != userID {
		return domain.ErrUnauthorized
	}

	return s.repo.Delete(ctx, id, userID)
}
