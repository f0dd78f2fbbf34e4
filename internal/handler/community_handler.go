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

type communityService interface {
	Get(ctx context.Context) (*models.Community, error)
	PostMessage(ctx context.Context, authorID string, req models.PostMessageRequest) (*models.CommunityMessage, error)
	ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error)
}

// CommunityHandler exposes the shared community chat endpoints.
type CommunityHandler struct {
	service communityService
}

// NewCommunityHandler builds a new handler.
func NewCommunityHandler(service communityService) *CommunityHandler {
	return &CommunityHandler{service: service}
}

// Get godoc
// @Summary Get the community info
// @Tags Community
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /community [get]
func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, community, nil)
}

// PostMessage godoc
// @Summary Post a message to the community chat
// @Tags Community
// @Accept json
// @Produce json
// @Param payload body models.PostMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /community/messages [post]
func (h *CommunityHandler) PostMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}
	message, err := h.service.PostMessage(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListMessages godoc
// @Summary List community chat messages
// @Tags Community
// @Produce json
// @Param limit query int false "Max messages (newest kept, returned oldest first)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /community/messages [get]
func (h *CommunityHandler) ListMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	messages, err := h.service.ListMessages(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}
