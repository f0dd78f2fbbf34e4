package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/realtime"
	"github.com/ecolearn/ecolearn-api/internal/service"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

// RealtimeHandler upgrades authenticated requests into SSE streams fed by
// the notification hub.
type RealtimeHandler struct {
	hub     *realtime.Hub
	metrics *service.MetricsService
}

// NewRealtimeHandler builds a new handler.
func NewRealtimeHandler(hub *realtime.Hub, metrics *service.MetricsService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, metrics: metrics}
}

// Stream godoc
// @Summary Open a server-sent events stream of notifications
// @Tags Realtime
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Security BearerAuth
// @Router /notifications/stream [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	client := h.hub.Register(claims.UserID)
	h.metrics.SSEClientConnected(1)
	defer func() {
		h.hub.Unregister(client)
		h.metrics.SSEClientConnected(-1)
	}()

	h.hub.Serve(c.Writer, c.Request, client)
}
