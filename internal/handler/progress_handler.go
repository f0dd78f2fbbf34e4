package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type progressService interface {
	RecordActivity(ctx context.Context, studentID string, req models.RecordActivityRequest) (*models.Progress, error)
	CompleteGame(ctx context.Context, studentID string, req models.CompleteGameRequest) (*models.Progress, error)
	GetCourseProgress(ctx context.Context, studentID, courseID string) (*models.Progress, error)
	ListMyProgress(ctx context.Context, studentID string) ([]models.Progress, error)
}

// ProgressHandler exposes learning-progress endpoints for students.
type ProgressHandler struct {
	service progressService
}

// NewProgressHandler builds a new handler.
func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// RecordActivity godoc
// @Summary Record one completed learning activity
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body models.RecordActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/activities [post]
func (h *ProgressHandler) RecordActivity(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	progress, err := h.service.RecordActivity(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// CompleteGame godoc
// @Summary Record a finished eco-game
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body models.CompleteGameRequest true "Game payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/games [post]
func (h *ProgressHandler) CompleteGame(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CompleteGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid game payload"))
		return
	}
	progress, err := h.service.CompleteGame(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// CourseProgress godoc
// @Summary Get the caller's progress in one course
// @Tags Progress
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/courses/{id} [get]
func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, err := h.service.GetCourseProgress(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// ListMine godoc
// @Summary List the caller's progress across courses
// @Tags Progress
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress [get]
func (h *ProgressHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ListMyProgress(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
