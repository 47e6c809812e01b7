package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http/middleware"

	_ "github.com/comitanigiacomo/kanso-habits/docs"
)

type RouterDependencies struct {
	AuthHandler       *AuthHandler
	HabitHandler      *HabitHandler
	CompletionHandler *CompletionHandler
	StatsHandler      *StatsHandler
	TokenValidator    middleware.TokenValidator

	// DB and Redis are optional: a nil DB means in-memory storage. Rate
	// limiting needs Redis and a positive RateLimitMax.
	DB    *sqlx.DB
	Redis *redis.Client

	AllowedOrigins   []string
	DefaultLocation  *time.Location
	RateLimitMax     int
	RateLimitWindow  time.Duration
	StartTime        time.Time
	EnableSwaggerDoc bool
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(deps.AllowedOrigins))

	if deps.Redis != nil && deps.RateLimitMax > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimitMax, deps.RateLimitWindow))
	}

	router.GET("/health", healthHandler(deps))

	if deps.EnableSwaggerDoc {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Timezone(deps.DefaultLocation))

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenValidator))

	deps.AuthHandler.RegisterRoutes(apiV1, protected)
	deps.HabitHandler.RegisterRoutes(protected)
	deps.CompletionHandler.RegisterRoutes(protected)
	deps.StatsHandler.RegisterRoutes(protected)

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "memory"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := cache.Status(ctx, deps.Redis)

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
