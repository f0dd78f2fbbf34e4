package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/service"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type reportService interface {
	LeaderboardReport(ctx context.Context, limit int, format service.ReportFormat) (*service.Report, error)
	ProgressReport(ctx context.Context, studentID string, format service.ReportFormat) (*service.Report, error)
}

// ReportHandler serves downloadable CSV and PDF exports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Leaderboard godoc
// @Summary Export the leaderboard as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)"
// @Param limit query int false "Max entries"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/leaderboard [get]
func (h *ReportHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	report, err := h.service.LeaderboardReport(c.Request.Context(), limit, service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeReport(c, report)
}

// MyProgress godoc
// @Summary Export the caller's progress as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/progress [get]
func (h *ReportHandler) MyProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.service.ProgressReport(c.Request.Context(), claims.UserID, service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeReport(c, report)
}

func writeReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
