package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/ecolearn/ecolearn-api/internal/middleware"
	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
)

func TestRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("leaderboard success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/leaderboard?limit=3", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"rank":1`)
	})

	t.Run("leaderboard unauthorized", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("badge create forbidden for students", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/badges", bytes.NewBufferString(`{"name":"Seedling","threshold_points":10}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("badge create success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/badges", bytes.NewBufferString(`{"name":"Seedling","threshold_points":10}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"name":"Seedling"`)
	})

	t.Run("community post success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/community/messages", bytes.NewBufferString(`{"content":"hello"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("broadcast forbidden for teachers", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/notifications/broadcast", bytes.NewBufferString(`{"title":"Hi","body":"there"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("broadcast success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/notifications/broadcast", bytes.NewBufferString(`{"title":"Hi","body":"there"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"recipients":2`)
	})
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID: "test-user",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	gamification := NewGamificationHandler(&gamificationServiceMock{
		entries: []models.LeaderboardEntry{{StudentID: "s-1", Rank: 1}},
	})
	community := NewCommunityHandler(&communityServiceIntegrationMock{})
	notifications := NewNotificationHandler(&notificationServiceIntegrationMock{}, &actorResolverMock{})

	authed := router.Group("")
	authed.GET("/leaderboard", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent), gamification.Leaderboard)
	authed.POST("/community/messages", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent), community.PostMessage)

	admin := router.Group("/admin", internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.POST("/badges", gamification.CreateBadge)
	admin.POST("/notifications/broadcast", notifications.Broadcast)

	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type communityServiceIntegrationMock struct{}

func (communityServiceIntegrationMock) Get(ctx context.Context) (*models.Community, error) {
	return &models.Community{ID: "community-1", Name: "EcoLearn"}, nil
}

func (communityServiceIntegrationMock) PostMessage(ctx context.Context, authorID string, req models.PostMessageRequest) (*models.CommunityMessage, error) {
	return &models.CommunityMessage{ID: "msg-1", CommunityID: "community-1", AuthorID: authorID, Content: req.Content}, nil
}

func (communityServiceIntegrationMock) ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error) {
	return nil, nil
}

type notificationServiceIntegrationMock struct{}

func (notificationServiceIntegrationMock) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (notificationServiceIntegrationMock) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (notificationServiceIntegrationMock) Broadcast(ctx context.Context, actor policy.Actor, req models.BroadcastRequest) (int, error) {
	return 2, nil
}

type actorResolverMock struct{}

func (actorResolverMock) ResolveActor(ctx context.Context, claims *models.JWTClaims) (policy.Actor, error) {
	return policy.Actor{ID: claims.UserID, Role: claims.Role, TeacherApproved: true}, nil
}
