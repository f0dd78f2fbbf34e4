package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type quizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
}

type quizCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

type progressTracker interface {
	MarkCompleted(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error)
}

// QuizSubmissionResult bundles the score with the refreshed progress.
type QuizSubmissionResult struct {
	models.QuizResult
	TotalQuestions int              `json:"total_questions"`
	PointsAwarded  int              `json:"points_awarded"`
	Progress       *models.Progress `json:"progress,omitempty"`
}

// QuizService manages quizzes and scores submissions.
type QuizService struct {
	quizzes   quizRepository
	courses   quizCourseRepository
	progress  progressTracker
	awards    awardEnqueuer
	validator *validator.Validate
	logger    *zap.Logger

	// rewardPerCorrect is the flat ecoPoints rate per correct answer,
	// independent of per-question point weights.
	rewardPerCorrect int
}

// NewQuizService constructs a QuizService.
func NewQuizService(quizzes quizRepository, courses quizCourseRepository, progress progressTracker, awards awardEnqueuer, validate *validator.Validate, logger *zap.Logger, rewardPerCorrect int) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QuizService{
		quizzes:          quizzes,
		courses:          courses,
		progress:         progress,
		awards:           awards,
		validator:        validate,
		logger:           logger,
		rewardPerCorrect: rewardPerCorrect,
	}
}

// Create adds a quiz to a course owned by the acting teacher.
func (s *QuizService) Create(ctx context.Context, actor policy.Actor, courseID string, req models.CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}
	for i, q := range req.Questions {
		if q.CorrectIndex >= len(q.Options) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question %d: correct_index out of range", i+1))
		}
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !policy.Can(actor, policy.ActionModifyCourse, policy.Resource{OwnerID: course.TeacherID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the approved course owner may add quizzes")
	}

	quiz := &models.Quiz{CourseID: courseID, Title: req.Title, Questions: req.Questions}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz")
	}
	return quiz, nil
}

// ListByCourse returns a course's quizzes.
func (s *QuizService) ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quizzes")
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	return quizzes, nil
}

// Get returns one quiz.
func (s *QuizService) Get(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	return quiz, nil
}

// Submit scores the student's answers, records quiz completion and queues
// the ecoPoints award. The award is a flat rate per correct answer while the
// reported score uses per-question point weights.
func (s *QuizService) Submit(ctx context.Context, studentID, quizID string, req models.SubmitQuizRequest) (*QuizSubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz submission")
	}

	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	enrolled, err := s.courses.IsEnrolled(ctx, quiz.CourseID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this course")
	}

	result := ScoreQuiz(quiz.Questions, req.Answers)

	progress, err := s.progress.MarkCompleted(ctx, studentID, quiz.CourseID, models.ActivityQuiz)
	if err != nil {
		return nil, err
	}

	awarded := result.CorrectCount * s.rewardPerCorrect
	if awarded > 0 {
		s.awards.Enqueue(studentID, awarded, fmt.Sprintf("quiz %s completed", quizID))
	}

	return &QuizSubmissionResult{
		QuizResult:     result,
		TotalQuestions: len(quiz.Questions),
		PointsAwarded:  awarded,
		Progress:       progress,
	}, nil
}

// ScoreQuiz grades answers against the question list. Answers are matched by
// position; a missing or out-of-range answer scores zero for that question.
// Scoring is deterministic, so resubmitting identical answers always yields
// the same result.
func ScoreQuiz(questions []models.Question, answers []int) models.QuizResult {
	var result models.QuizResult
	for i, question := range questions {
		if i >= len(answers) {
			continue
		}
		answer := answers[i]
		if answer < 0 || answer >= len(question.Options) {
			continue
		}
		if answer == question.CorrectIndex {
			result.CorrectCount++
			result.Score += question.Points
		}
	}
	return result
}
