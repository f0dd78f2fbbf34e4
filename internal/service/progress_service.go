package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type progressRepository interface {
	Increment(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error)
	SetPercent(ctx context.Context, studentID, courseID string, percent int) error
	Find(ctx context.Context, studentID, courseID string) (*models.Progress, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Progress, error)
}

type progressCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	MaterialCount(ctx context.Context, courseID string) (int, error)
}

type awardEnqueuer interface {
	Enqueue(studentID string, delta int, reason string)
}

// RewardPolicy holds the ecoPoints granted per completed activity kind.
type RewardPolicy struct {
	Material    int
	Quiz        int
	Assignment  int
	GameDefault int
	GameMax     int
}

// ProgressService tracks per-course completion and triggers activity awards.
type ProgressService struct {
	progress  progressRepository
	courses   progressCourseRepository
	awards    awardEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	rewards   RewardPolicy
}

// NewProgressService constructs a ProgressService.
func NewProgressService(progress progressRepository, courses progressCourseRepository, awards awardEnqueuer, validate *validator.Validate, logger *zap.Logger, rewards RewardPolicy) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgressService{progress: progress, courses: courses, awards: awards, validator: validate, logger: logger, rewards: rewards}
}

// RecordActivity bumps the counter for one completed activity, recomputes the
// completion percentage and queues the matching ecoPoints award. Game
// completions go through CompleteGame instead so their points can vary.
func (s *ProgressService) RecordActivity(ctx context.Context, studentID string, req models.RecordActivityRequest) (*models.Progress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	kind := models.ActivityKind(req.Kind)
	reward := 0
	switch kind {
	case models.ActivityMaterial:
		reward = s.rewards.Material
	case models.ActivityQuiz:
		reward = s.rewards.Quiz
	case models.ActivityAssignment:
		reward = s.rewards.Assignment
	case models.ActivityGame:
		reward = s.rewards.GameDefault
	}

	progress, err := s.record(ctx, studentID, req.CourseID, kind)
	if err != nil {
		return nil, err
	}

	if reward > 0 {
		s.awards.Enqueue(studentID, reward, fmt.Sprintf("%s completed in course %s", kind, req.CourseID))
	}
	return progress, nil
}

// CompleteGame records an eco-game completion. The claimed points are capped
// at the configured maximum; zero falls back to the default game reward.
func (s *ProgressService) CompleteGame(ctx context.Context, studentID string, req models.CompleteGameRequest) (*models.Progress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid game payload")
	}

	points := req.Points
	if points <= 0 {
		points = s.rewards.GameDefault
	}
	if s.rewards.GameMax > 0 && points > s.rewards.GameMax {
		points = s.rewards.GameMax
	}

	progress, err := s.record(ctx, studentID, req.CourseID, models.ActivityGame)
	if err != nil {
		return nil, err
	}

	s.awards.Enqueue(studentID, points, fmt.Sprintf("game completed in course %s", req.CourseID))
	return progress, nil
}

// MarkCompleted applies one activity increment without queueing an award.
// Quiz and assignment flows use it because their award sizes depend on the
// submission outcome rather than a flat rate.
func (s *ProgressService) MarkCompleted(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error) {
	return s.record(ctx, studentID, courseID, kind)
}

// record validates course membership, applies the counter increment and
// refreshes the derived percentage.
func (s *ProgressService) record(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course is not approved")
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this course")
	}

	progress, err := s.progress.Increment(ctx, studentID, courseID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record activity")
	}

	materials, err := s.courses.MaterialCount(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count materials")
	}

	percent := CompletionPercent(progress.CompletedTotal(), materials)
	if percent != progress.ProgressPercent {
		if err := s.progress.SetPercent(ctx, studentID, courseID, percent); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress percent")
		}
		progress.ProgressPercent = percent
	}
	return progress, nil
}

// CompletionPercent derives the completion percentage from the total number
// of completed activities. The denominator is the course's material count
// plus a fixed allowance of three for the quiz, assignment and game tracks,
// and the result saturates at 100.
func CompletionPercent(completedTotal, materialCount int) int {
	denominator := materialCount + 3
	if denominator <= 0 {
		return 0
	}
	percent := int(math.Round(100 * float64(completedTotal) / float64(denominator)))
	if percent > 100 {
		percent = 100
	}
	return percent
}

// GetCourseProgress returns one progress row for the student.
func (s *ProgressService) GetCourseProgress(ctx context.Context, studentID, courseID string) (*models.Progress, error) {
	progress, err := s.progress.Find(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no progress for this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return progress, nil
}

// ListMyProgress returns every course progress the student holds.
func (s *ProgressService) ListMyProgress(ctx context.Context, studentID string) ([]models.Progress, error) {
	rows, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}
	if rows == nil {
		rows = []models.Progress{}
	}
	return rows, nil
}
