package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var ErrInvalidRange = errors.New("invalid date range")

func attachHistories(ctx context.Context, repo domain.CompletionRepository, habits []*domain.Habit) error {
	if len(habits) == 0 {
		return nil
	}

	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}

	histories, err := repo.HistoryByHabitIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load completion history: %w", err)
	}

	for _, h := range habits {
		h.CompletionHistory = histories[h.ID]
		if h.CompletionHistory == nil {
			h.CompletionHistory = []time.Time{}
		}
	}

	return nil
}
