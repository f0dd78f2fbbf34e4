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

type competitionService interface {
	Create(ctx context.Context, actor policy.Actor, req models.CreateCompetitionRequest) (*models.Competition, error)
	ListUpcoming(ctx context.Context) ([]models.Competition, error)
	Get(ctx context.Context, id string) (*models.Competition, error)
	Join(ctx context.Context, actor policy.Actor, competitionID string) error
}

// CompetitionHandler exposes sustainability competition endpoints.
type CompetitionHandler struct {
	service competitionService
	actors  actorResolver
}

// NewCompetitionHandler builds a new handler.
func NewCompetitionHandler(service competitionService, actors actorResolver) *CompetitionHandler {
	return &CompetitionHandler{service: service, actors: actors}
}

// Create godoc
// @Summary Schedule a competition
// @Tags Competitions
// @Accept json
// @Produce json
// @Param payload body models.CreateCompetitionRequest true "Competition payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/competitions [post]
func (h *CompetitionHandler) Create(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	var req models.CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid competition payload"))
		return
	}
	competition, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, competition)
}

// List godoc
// @Summary List current and upcoming competitions
// @Tags Competitions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /competitions [get]
func (h *CompetitionHandler) List(c *gin.Context) {
	competitions, err := h.service.ListUpcoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, competitions, nil)
}

// Get godoc
// @Summary Get one competition with its participants
// @Tags Competitions
// @Produce json
// @Param id path string true "Competition ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /competitions/{id} [get]
func (h *CompetitionHandler) Get(c *gin.Context) {
	competition, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, competition, nil)
}

// Join godoc
// @Summary Join a competition as a student
// @Tags Competitions
// @Produce json
// @Param id path string true "Competition ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /competitions/{id}/join [post]
func (h *CompetitionHandler) Join(c *gin.Context) {
	actor, ok := resolveActor(c, h.actors)
	if !ok {
		return
	}
	if err := h.service.Join(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
