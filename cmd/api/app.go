package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/config"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type app struct {
	db    *sqlx.DB
	redis *redis.Client
	deps  adapterHTTP.RouterDependencies
}

type stores struct {
	habits      domain.HabitRepository
	completions domain.CompletionRepository
	users       domain.UserRepository
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	log.Println("Connecting to database...")

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Database connected successfully.")
	return db, nil
}

// newApp wires storage, cache and services. Redis is optional: when it is
// disabled or unreachable the server runs without cache and rate limiting.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var s stores
	switch cfg.Storage {
	case config.StorageMemory:
		log.Println("[STORAGE] Using in-memory repositories, data is lost on restart")
		habits := repository.NewInMemoryHabitRepository()
		s = stores{
			habits:      habits,
			completions: repository.NewInMemoryCompletionRepository(habits),
			users:       repository.NewInMemoryUserRepository(),
		}
	default:
		db, err := connectPostgres(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		a.db = db
		s = stores{
			habits:      repository.NewPostgresHabitRepository(db),
			completions: repository.NewPostgresCompletionRepository(db),
			users:       repository.NewPostgresUserRepository(db.DB),
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, continuing without cache: %v", err)
		} else {
			a.redis = rdb
			s.habits = repository.NewCachedHabitRepository(s.habits, rdb, cfg.Redis.CacheTTL)
		}
	}

	if !cfg.RateLimit.Enabled() {
		log.Println("[RATELIMIT] Disabled by configuration")
	}

	statsService := services.NewStatsService(s.habits, s.completions)
	habitService := services.NewHabitService(s.habits, s.completions, statsService).
		WithPublicFeedLimit(cfg.PublicFeedLimit)
	completionService := services.NewCompletionService(s.completions, s.habits)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, s.users)
	authService := services.NewAuthService(s.users, tokenService)

	a.deps = adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsService),
		TokenValidator:    tokenService,
		DB:                a.db,
		Redis:             a.redis,
		AllowedOrigins:    cfg.AllowedOrigins,
		DefaultLocation:   cfg.Location(),
		RateLimitMax:      cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		EnableSwaggerDoc:  cfg.SwaggerEnabled,
	}

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}
}
