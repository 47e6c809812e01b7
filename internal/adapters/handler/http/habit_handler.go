package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ReminderTime string `json:"reminder_time"`
	IsPublic     bool   `json:"is_public"`
}

// Absent fields are left untouched. reminder_time "" clears the reminder.
type updateHabitRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	ReminderTime *string `json:"reminder_time"`
	IsPublic     *bool   `json:"is_public"`
	Version      int     `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/public", h.ListPublic)
		habits.GET("/:id", h.Get)
		habits.PATCH("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/complete", h.MarkComplete)
	}
}

// Create godoc
// @Summary  Create a habit
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    habit body createHabitRequest true "Habit"
// @Success  201 {object} domain.HabitView
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.CreateHabitInput{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		ReminderTime: req.ReminderTime,
		IsPublic:     req.IsPublic,
	}

	view, err := h.svc.Create(c.Request.Context(), input, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// List godoc
// @Summary  List the caller's habits with their stats
// @Tags     habits
// @Produce  json
// @Param    X-Timezone header string false "IANA zone used for today"
// @Success  200 {array} domain.HabitView
// @Security BearerAuth
// @Router   /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	list, err := h.svc.ListMine(c.Request.Context(), userID, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListPublic godoc
// @Summary  Community feed of public habits, newest first
// @Tags     habits
// @Produce  json
// @Success  200 {array} domain.HabitView
// @Security BearerAuth
// @Router   /habits/public [get]
func (h *HabitHandler) ListPublic(c *gin.Context) {
	list, err := h.svc.ListPublic(c.Request.Context(), middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary  Fetch one habit
// @Tags     habits
// @Produce  json
// @Param    id path string true "Habit ID"
// @Success  200 {object} domain.HabitView
// @Failure  404 {object} errorResponse
// @Security BearerAuth
// @Router   /habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	view, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Update godoc
// @Summary  Partially update a habit
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    id    path string             true "Habit ID"
// @Param    patch body updateHabitRequest true "Fields to change"
// @Success  200 {object} domain.HabitView
// @Failure  409 {object} errorResponse
// @Security BearerAuth
// @Router   /habits/{id} [patch]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.UpdateHabitInput{
		ID:     c.Param("id"),
		UserID: userID,
		Patch: domain.HabitPatch{
			Title:        req.Title,
			Description:  req.Description,
			Category:     req.Category,
			ReminderTime: req.ReminderTime,
			IsPublic:     req.IsPublic,
		},
		Version: req.Version,
	}

	view, err := h.svc.Update(c.Request.Context(), input, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Delete godoc
// @Summary  Delete a habit
// @Tags     habits
// @Param    id path string true "Habit ID"
// @Success  204
// @Failure  404 {object} errorResponse
// @Security BearerAuth
// @Router   /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
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

// MarkComplete godoc
// @Summary  Record a completion at the current instant
// @Tags     habits
// @Produce  json
// @Param    id path string true "Habit ID"
// @Param    X-Timezone header string false "IANA zone used for today"
// @Success  200 {object} domain.HabitView
// @Failure  403 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Security BearerAuth
// @Router   /habits/{id}/complete [post]
func (h *HabitHandler) MarkComplete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		missingUser(c)
		return
	}

	view, err := h.svc.MarkComplete(c.Request.Context(), c.Param("id"), userID, middleware.GetLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
