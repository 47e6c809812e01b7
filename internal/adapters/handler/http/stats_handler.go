package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

const (
	maxRangeDays     = 366
	defaultRangeDays = 7
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/summary", h.Summary)
	r.GET("/stats/range", h.Range)
}

// Summary godoc
// @Summary  Dashboard for today: streaks and 30 day rates of every habit
// @Tags     stats
// @Produce  json
// @Param    X-Timezone header string false "IANA zone used for today"
// @Success  200 {object} domain.StatsSummary
// @Security BearerAuth
// @Router   /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Range godoc
// @Summary  Daily completion grid between two calendar days (inclusive)
// @Tags     stats
// @Produce  json
// @Param    start_date query string false "YYYY-MM-DD (default: end_date - 6 days)"
// @Param    end_date   query string false "YYYY-MM-DD (default: today)"
// @Success  200 {object} domain.RangeStats
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /stats/range [get]
func (h *StatsHandler) Range(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	loc := middleware.GetLocation(c)

	endDate := h.svc.Today(loc)
	if raw := c.Query("end_date"); raw != "" {
		d, err := streak.ParseDay(raw)
		if err != nil {
			badRequest(c, "invalid end_date format, expected YYYY-MM-DD")
			return
		}
		endDate = d
	}

	startDate := endDate.AddDays(-(defaultRangeDays - 1))
	if raw := c.Query("start_date"); raw != "" {
		d, err := streak.ParseDay(raw)
		if err != nil {
			badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
			return
		}
		startDate = d
	}

	if startDate > endDate {
		badRequest(c, "start_date cannot be after end_date")
		return
	}
	if int(endDate-startDate) >= maxRangeDays {
		badRequest(c, "date range too large, max 1 year allowed")
		return
	}

	input := domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
		Location:  loc,
	}

	stats, err := h.svc.Range(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
