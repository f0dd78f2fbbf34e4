package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type moderationService interface {
	SetTeacherApproval(ctx context.Context, actor policy.Actor, profileID string, approved bool) (*models.TeacherProfile, error)
	SetCourseApproval(ctx context.Context, actor policy.Actor, courseID string, approved bool) (*models.Course, error)
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// ModerationHandler exposes admin approval endpoints.
type ModerationHandler struct {
	service moderationService
	actors  actorResolver
}

// NewModerationHandler builds a new handler.
func NewModerationHandler(service moderationService, actors actorResolver) *ModerationHandler {
	return &ModerationHandler{service: service, actors: actors}
}

// SetTeacherApproval godoc
// @Summary Approve or revoke a teacher profile
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Teacher profile ID"
// @Param payload body approvalRequest true "Approval flag"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/teachers/{id}/approval [put]
func (h *ModerationHandler) SetTeacherApproval(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}
	profile, err := h.service.SetTeacherApproval(c.Request.Context(), actor, c.Param("id"), req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SetCourseApproval godoc
// @Summary Approve or revoke a course
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body approvalRequest true "Approval flag"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/{id}/approval [put]
func (h *ModerationHandler) SetCourseApproval(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}
	course, err := h.service.SetCourseApproval(c.Request.Context(), actor, c.Param("id"), req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
