package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/middleware"
	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type gamificationServiceMock struct {
	entries      []models.LeaderboardEntry
	latest       *models.WinnerAnnouncement
	latestErr    error
	lastLimit    int
	configCalled bool
}

func (m *gamificationServiceMock) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.lastLimit = limit
	return m.entries, nil
}

func (m *gamificationServiceMock) ConfigureWinners(ctx context.Context, adminID string, req models.ConfigureWinnersRequest) (*models.WinnerAnnouncement, error) {
	m.configCalled = true
	return &models.WinnerAnnouncement{ID: "wa-1", Period: models.WinnerPeriod(req.Period)}, nil
}

func (m *gamificationServiceMock) LatestWinners(ctx context.Context) (*models.WinnerAnnouncement, error) {
	return m.latest, m.latestErr
}

func (m *gamificationServiceMock) CreateBadge(ctx context.Context, req models.CreateBadgeRequest) (*models.Badge, error) {
	return &models.Badge{ID: "b-1", Name: req.Name}, nil
}

func (m *gamificationServiceMock) ListBadges(ctx context.Context) ([]models.Badge, error) {
	return nil, nil
}

func (m *gamificationServiceMock) StudentBadges(ctx context.Context, studentID string) ([]models.Badge, error) {
	return nil, nil
}

func TestLeaderboardDefaultsLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{entries: []models.LeaderboardEntry{{StudentID: "s-1", Rank: 1}}}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)
	c.Request = req

	handler.Leaderboard(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, mockSvc.lastLimit)
	assert.Contains(t, w.Body.String(), `"student_id":"s-1"`)
}

func TestConfigureWinnersInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGamificationHandler(&gamificationServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/winners", bytes.NewBufferString(`{"period":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.ConfigureWinners(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigureWinnersRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/winners", bytes.NewBufferString(`{"period":"weekly","winners_count":3}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ConfigureWinners(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.configCalled)
}

func TestLatestWinnersNotFoundPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gamificationServiceMock{latestErr: appErrors.ErrNotFound}
	handler := NewGamificationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/winners/latest", nil)
	c.Request = req

	handler.LatestWinners(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
