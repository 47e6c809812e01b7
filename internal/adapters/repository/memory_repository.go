package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.CompletionRepository = (*InMemoryCompletionRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

// InMemoryHabitRepository mirrors the Postgres semantics (soft delete,
// optimistic locking) without a database. Values are copied on the way in
// and out so callers never share state with the store.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	c := *h
	if h.ReminderTime != nil {
		r := *h.ReminderTime
		c.ReminderTime = &r
	}
	if h.DeletedAt != nil {
		d := *h.DeletedAt
		c.DeletedAt = &d
	}
	c.CompletionHistory = nil
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[habit.ID]; exists {
		return domain.ErrHabitConflict
	}

	habit.Version = 1
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return r.filter(func(h *domain.Habit) bool { return h.UserID == userID }, false, 0), nil
}

func (r *InMemoryHabitRepository) ListPublic(ctx context.Context, limit int) ([]*domain.Habit, error) {
	return r.filter(func(h *domain.Habit) bool { return h.IsPublic }, true, limit), nil
}

func (r *InMemoryHabitRepository) filter(keep func(*domain.Habit) bool, newestFirst bool, limit int) []*domain.Habit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.DeletedAt == nil && keep(h) {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		a, b := habits[i], habits[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(habits) > limit {
		habits = habits[:limit]
	}
	return habits
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	next := cloneHabit(habit)
	next.CreatedAt = stored.CreatedAt
	next.UserID = stored.UserID
	r.store[habit.ID] = next
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.UpdatedAt = now
	stored.Version++
	return nil
}

// exists reports whether id names an active habit. Used by the completion
// store to emulate the foreign key.
func (r *InMemoryHabitRepository) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.store[id]
	return ok && h.DeletedAt == nil
}

type InMemoryCompletionRepository struct {
	habits *InMemoryHabitRepository
	store  map[string]*domain.Completion

	mu sync.RWMutex
}

// NewInMemoryCompletionRepository returns a completion store. When habits is
// non-nil, completions for unknown or deleted habits are rejected with
// domain.ErrHabitNotFound and deleted habits contribute no history.
func NewInMemoryCompletionRepository(habits *InMemoryHabitRepository) *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		habits: habits,
		store:  make(map[string]*domain.Completion),
	}
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	if r.habits != nil && !r.habits.exists(c.HabitID) {
		return domain.ErrHabitNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(c)
}

func (r *InMemoryCompletionRepository) CreateOnce(ctx context.Context, c *domain.Completion, dayStart, dayEnd time.Time) error {
	if r.habits != nil && !r.habits.exists(c.HabitID) {
		return domain.ErrHabitNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if existing.HabitID != c.HabitID || existing.DeletedAt != nil {
			continue
		}
		if !existing.CompletedAt.Before(dayStart) && existing.CompletedAt.Before(dayEnd) {
			return domain.ErrAlreadyCompletedToday
		}
	}

	return r.insertLocked(c)
}

func (r *InMemoryCompletionRepository) insertLocked(c *domain.Completion) error {
	if _, exists := r.store[c.ID]; exists {
		return domain.ErrInvalidCompletion
	}

	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *InMemoryCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil || c.UserID != userID {
		return domain.ErrCompletionNotFound
	}

	now := time.Now().UTC()
	c.DeletedAt = &now
	return nil
}

func (r *InMemoryCompletionRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	completions := []*domain.Completion{}
	for _, c := range r.store {
		if c.HabitID != habitID || c.DeletedAt != nil {
			continue
		}
		if c.CompletedAt.Before(from) || c.CompletedAt.After(to) {
			continue
		}
		cp := *c
		completions = append(completions, &cp)
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].CompletedAt.After(completions[j].CompletedAt)
	})

	return completions, nil
}

func (r *InMemoryCompletionRepository) HistoryByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]time.Time, error) {
	wanted := make(map[string]bool, len(habitIDs))
	for _, id := range habitIDs {
		if r.habits == nil || r.habits.exists(id) {
			wanted[id] = true
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	histories := make(map[string][]time.Time, len(wanted))
	for _, c := range r.store {
		if c.DeletedAt == nil && wanted[c.HabitID] {
			histories[c.HabitID] = append(histories[c.HabitID], c.CompletedAt.UTC())
		}
	}

	for id := range histories {
		h := histories[id]
		sort.Slice(h, func(i, j int) bool { return h[i].Before(h[j]) })
	}

	return histories, nil
}

type InMemoryUserRepository struct {
	byID map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}

	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
