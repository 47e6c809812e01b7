package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so services can mutate it freely
	clone := *args.Get(0).(*domain.Habit)
	return &clone, args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListPublic(ctx context.Context, limit int) ([]*domain.Habit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCompletionRepo struct {
	mock.Mock
}

func (m *MockCompletionRepo) Create(ctx context.Context, c *domain.Completion) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompletionRepo) CreateOnce(ctx context.Context, c *domain.Completion, dayStart, dayEnd time.Time) error {
	return m.Called(ctx, c, dayStart, dayEnd).Error(0)
}

func (m *MockCompletionRepo) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Completion), args.Error(1)
}

func (m *MockCompletionRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockCompletionRepo) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	args := m.Called(ctx, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Completion), args.Error(1)
}

func (m *MockCompletionRepo) HistoryByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]time.Time, error) {
	args := m.Called(ctx, habitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]time.Time), args.Error(1)
}

// fixedNow is 2025-01-03 12:00 UTC.
var fixedNow = time.Date(2025, time.January, 3, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func daysBefore(n int) time.Time {
	return fixedNow.AddDate(0, 0, -n).Add(-4 * time.Hour)
}
