package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const (
	DefaultCacheTTL = 30 * time.Minute

	publicFeedKey = "habits:public"
)

// CachedHabitRepository is a read-through cache over habit definitions.
// Completion histories are never cached; they are attached by the services
// after every read.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration) *CachedHabitRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (r *CachedHabitRepository) cacheKey(userID string) string {
	return fmt.Sprintf("habits:user:%s", userID)
}

// invalidate drops the owner's list and the whole public feed. Any write may
// flip visibility, so the feed is always cleared.
func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID), publicFeedKey).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func decodeHabits(val string) ([]*domain.Habit, bool) {
	var habits []*domain.Habit
	if err := json.Unmarshal([]byte(val), &habits); err != nil {
		return nil, false
	}
	for _, h := range habits {
		h.CompletionHistory = nil
	}
	return habits, true
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		if habits, ok := decodeHabits(val); ok {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

// ListPublic keeps one entry per requested limit inside a single hash so the
// feed can be dropped with one DEL.
func (r *CachedHabitRepository) ListPublic(ctx context.Context, limit int) ([]*domain.Habit, error) {
	field := strconv.Itoa(limit)

	val, err := r.cache.HGet(ctx, publicFeedKey, field).Result()
	if err == nil {
		if habits, ok := decodeHabits(val); ok {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted public feed (limit=%d), cleaning up key", limit)
		r.cache.Del(ctx, publicFeedKey)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListPublic(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		pipe := r.cache.TxPipeline()
		pipe.HSet(ctx, publicFeedKey, field, data)
		pipe.Expire(ctx, publicFeedKey, r.ttl)
		if _, execErr := pipe.Exec(ctx); execErr != nil {
			log.Printf("[CACHE] Redis set error: %v", execErr)
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}
