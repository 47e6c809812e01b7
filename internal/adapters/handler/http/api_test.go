package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

// 2025-01-03 12:00 UTC
var fixedNow = time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

const (
	aliceToken = "tok-alice"
	bobToken   = "tok-bob"
)

// testTokens accepts a few static tokens and defers everything else to the
// real token service.
type testTokens struct {
	static map[string]string
	real   *services.TokenService
}

func (t testTokens) ValidateToken(tokenString string) (string, error) {
	if id, ok := t.static[tokenString]; ok {
		return id, nil
	}
	return t.real.ValidateToken(tokenString)
}

type testAPI struct {
	router      *gin.Engine
	habits      *repository.InMemoryHabitRepository
	completions *repository.InMemoryCompletionRepository
	users       *repository.InMemoryUserRepository
}

func newTestAPI(t *testing.T, opts ...func(*adapterHTTP.RouterDependencies)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	completions := repository.NewInMemoryCompletionRepository(habits)
	users := repository.NewInMemoryUserRepository()

	stats := services.NewStatsService(habits, completions).WithClock(func() time.Time { return fixedNow })
	tokens := services.NewTokenService("handler-test-secret", "kanso-test", time.Hour, users)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(services.NewAuthService(users, tokens)),
		HabitHandler:      adapterHTTP.NewHabitHandler(services.NewHabitService(habits, completions, stats)),
		CompletionHandler: adapterHTTP.NewCompletionHandler(services.NewCompletionService(completions, habits)),
		StatsHandler:      adapterHTTP.NewStatsHandler(stats),
		TokenValidator: testTokens{
			static: map[string]string{aliceToken: "alice", bobToken: "bob"},
			real:   tokens,
		},
		DefaultLocation: time.UTC,
		StartTime:       fixedNow,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router := adapterHTTP.NewRouter(deps)

	return &testAPI{router: router, habits: habits, completions: completions, users: users}
}

type request struct {
	method   string
	path     string
	body     string
	token    string
	timezone string
}

func (a *testAPI) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.body != "" {
		body = bytes.NewBufferString(r.body)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.timezone != "" {
		req.Header.Set("X-Timezone", r.timezone)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// seedHabit stores a habit and its completions directly in the repositories.
func (a *testAPI) seedHabit(t *testing.T, owner, title string, public bool, completedAt ...time.Time) *domain.Habit {
	t.Helper()
	ctx := context.Background()

	h, err := domain.NewHabit(owner, title, "", "", "", public)
	require.NoError(t, err)
	require.NoError(t, a.habits.Create(ctx, h))

	for _, at := range completedAt {
		require.NoError(t, a.completions.Create(ctx, domain.NewCompletion(h.ID, owner, at)))
	}
	return h
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

type habitJSON struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	Title             string   `json:"title"`
	Category          string   `json:"category"`
	IsPublic          bool     `json:"is_public"`
	Version           int      `json:"version"`
	CompletionHistory []string `json:"completion_history"`
	Stats             struct {
		CurrentStreak        int  `json:"current_streak"`
		LongestStreak        int  `json:"longest_streak"`
		CompletedToday       bool `json:"completed_today"`
		TotalCompletions     int  `json:"total_completions"`
		Last30DaysPercentage int  `json:"last_30_days_percentage"`
	} `json:"stats"`
}

func daysBefore(n int) time.Time {
	return fixedNow.AddDate(0, 0, -n).Add(-4 * time.Hour)
}

