package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// Report is a rendered export ready to stream to the client.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

type reportLeaderboardReader interface {
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type reportProgressReader interface {
	ListMyProgress(ctx context.Context, studentID string) ([]models.Progress, error)
}

// ReportService renders leaderboard and progress exports.
type ReportService struct {
	leaderboard reportLeaderboardReader
	progress    reportProgressReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(leaderboard reportLeaderboardReader, progress reportProgressReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		leaderboard: leaderboard,
		progress:    progress,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// LeaderboardReport exports the current leaderboard snapshot.
func (s *ReportService) LeaderboardReport(ctx context.Context, limit int, format ReportFormat) (*Report, error) {
	entries, err := s.leaderboard.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Rank", "Student", "EcoPoints"},
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(entry.Rank),
			entry.StudentName,
			strconv.Itoa(entry.EcoPoints),
		})
	}

	return s.render(table, "leaderboard", "Leaderboard", format)
}

// ProgressReport exports one student's per-course progress.
func (s *ReportService) ProgressReport(ctx context.Context, studentID string, format ReportFormat) (*Report, error) {
	rows, err := s.progress.ListMyProgress(ctx, studentID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Course", "Materials", "Quizzes", "Assignments", "Games", "Percent"},
	}
	for _, p := range rows {
		table.Rows = append(table.Rows, []string{
			p.CourseTitle,
			strconv.Itoa(p.MaterialsCompleted),
			strconv.Itoa(p.QuizzesCompleted),
			strconv.Itoa(p.AssignmentsSubmitted),
			strconv.Itoa(p.GamesCompleted),
			strconv.Itoa(p.ProgressPercent),
		})
	}

	return s.render(table, "progress", "Learning Progress", format)
}

func (s *ReportService) render(table export.Table, baseName, title string, format ReportFormat) (*Report, error) {
	switch format {
	case FormatCSV, "":
		data, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &Report{Filename: baseName + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatPDF:
		data, err := s.pdf.Render(table, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &Report{Filename: baseName + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}
