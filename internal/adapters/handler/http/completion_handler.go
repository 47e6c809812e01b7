package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

const defaultCompletionWindow = 30 * 24 * time.Hour

type CompletionHandler struct {
	svc *services.CompletionService
	now func() time.Time
}

func NewCompletionHandler(svc *services.CompletionService) *CompletionHandler {
	return &CompletionHandler{
		svc: svc,
		now: time.Now,
	}
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/habits/:id/completions", h.ListByHabit)
	router.DELETE("/completions/:id", h.Delete)
}

// ListByHabit godoc
// @Summary  List completions of a habit, newest first
// @Tags     completions
// @Produce  json
// @Param    id   path  string true  "Habit ID"
// @Param    from query string false "RFC3339 lower bound (default: 30 days ago)"
// @Param    to   query string false "RFC3339 upper bound (default: now)"
// @Success  200 {array} domain.Completion
// @Security BearerAuth
// @Router   /habits/{id}/completions [get]
func (h *CompletionHandler) ListByHabit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	to := h.now().UTC()
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid to format, use RFC3339")
			return
		}
		to = parsed
	}

	from := to.Add(-defaultCompletionWindow)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid from format, use RFC3339")
			return
		}
		from = parsed
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Delete godoc
// @Summary  Undo a completion
// @Tags     completions
// @Param    id path string true "Completion ID"
// @Success  204
// @Failure  403 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Security BearerAuth
// @Router   /completions/{id} [delete]
func (h *CompletionHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
