package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type gamificationService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	ConfigureWinners(ctx context.Context, adminID string, req models.ConfigureWinnersRequest) (*models.WinnerAnnouncement, error)
	LatestWinners(ctx context.Context) (*models.WinnerAnnouncement, error)
	CreateBadge(ctx context.Context, req models.CreateBadgeRequest) (*models.Badge, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	StudentBadges(ctx context.Context, studentID string) ([]models.Badge, error)
}

// GamificationHandler exposes leaderboard, badge and winner endpoints.
type GamificationHandler struct {
	service gamificationService
}

// NewGamificationHandler builds a new handler.
func NewGamificationHandler(service gamificationService) *GamificationHandler {
	return &GamificationHandler{service: service}
}

// Leaderboard godoc
// @Summary Get the eco-points leaderboard
// @Tags Gamification
// @Produce json
// @Param limit query int false "Max entries (capped server-side)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaderboard [get]
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ConfigureWinners godoc
// @Summary Publish a winner announcement from the current standings
// @Tags Gamification
// @Accept json
// @Produce json
// @Param payload body models.ConfigureWinnersRequest true "Winner configuration"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/winners [post]
func (h *GamificationHandler) ConfigureWinners(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ConfigureWinnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid winner configuration"))
		return
	}
	announcement, err := h.service.ConfigureWinners(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// LatestWinners godoc
// @Summary Get the active winner announcement
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /winners/latest [get]
func (h *GamificationHandler) LatestWinners(c *gin.Context) {
	announcement, err := h.service.LatestWinners(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement, nil)
}

// CreateBadge godoc
// @Summary Define a new badge
// @Tags Gamification
// @Accept json
// @Produce json
// @Param payload body models.CreateBadgeRequest true "Badge payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/badges [post]
func (h *GamificationHandler) CreateBadge(c *gin.Context) {
	var req models.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid badge payload"))
		return
	}
	badge, err := h.service.CreateBadge(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, badge)
}

// ListBadges godoc
// @Summary List all badge definitions
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /badges [get]
func (h *GamificationHandler) ListBadges(c *gin.Context) {
	badges, err := h.service.ListBadges(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badges, nil)
}

// MyBadges godoc
// @Summary List badges earned by the caller
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /badges/mine [get]
func (h *GamificationHandler) MyBadges(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	badges, err := h.service.StudentBadges(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badges, nil)
}
