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
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	HasSubmission(ctx context.Context, assignmentID, studentID string) (bool, error)
	FindSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]models.Submission, error)
	Grade(ctx context.Context, submissionID string, grade int, feedback *string) (*models.Submission, error)
}

type assignmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

type gradeNotifier interface {
	NotifyGrade(ctx context.Context, studentID string, assignmentTitle string, grade int)
}

// AssignmentService manages assignments, submissions and grading.
type AssignmentService struct {
	assignments assignmentRepository
	courses     assignmentCourseRepository
	progress    progressTracker
	awards      awardEnqueuer
	notifier    gradeNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(assignments assignmentRepository, courses assignmentCourseRepository, progress progressTracker, awards awardEnqueuer, notifier gradeNotifier, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		assignments: assignments,
		courses:     courses,
		progress:    progress,
		awards:      awards,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// Create adds an assignment to a course owned by the acting teacher.
func (s *AssignmentService) Create(ctx context.Context, actor policy.Actor, courseID string, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !policy.Can(actor, policy.ActionModifyCourse, policy.Resource{OwnerID: course.TeacherID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the approved course owner may add assignments")
	}

	assignment := &models.Assignment{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		DueDate:     req.DueDate,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// ListByCourse returns a course's assignments.
func (s *AssignmentService) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

// Submit hands in a student's work. Each student gets exactly one submission
// per assignment; a second attempt is rejected as a conflict.
func (s *AssignmentService) Submit(ctx context.Context, studentID, assignmentID string, req models.SubmitAssignmentRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	enrolled, err := s.courses.IsEnrolled(ctx, assignment.CourseID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this course")
	}

	exists, err := s.assignments.HasSubmission(ctx, assignmentID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already submitted")
	}

	sub := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		ContentURL:   req.ContentURL,
	}
	if err := s.assignments.CreateSubmission(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	if _, err := s.progress.MarkCompleted(ctx, studentID, assignment.CourseID, models.ActivityAssignment); err != nil {
		s.logger.Warn("failed to record assignment progress",
			zap.String("student_id", studentID), zap.String("assignment_id", assignmentID), zap.Error(err))
	}

	return sub, nil
}

// ListSubmissions returns an assignment's submissions for its owning teacher.
func (s *AssignmentService) ListSubmissions(ctx context.Context, actor policy.Actor, assignmentID string) ([]models.Submission, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	course, err := s.courses.FindByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if actor.Role != models.RoleAdmin && !policy.Can(actor, policy.ActionModifyCourse, policy.Resource{OwnerID: course.TeacherID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course owner may view submissions")
	}

	subs, err := s.assignments.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

// Grade stores a 0-100 grade on a submission and queues an ecoPoints award
// proportional to the assignment's point value. Regrading overwrites the
// grade but does not award again.
func (s *AssignmentService) Grade(ctx context.Context, actor policy.Actor, submissionID string, req models.GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	sub, err := s.assignments.FindSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	assignment, err := s.assignments.FindByID(ctx, sub.AssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	course, err := s.courses.FindByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !policy.Can(actor, policy.ActionGradeSubmission, policy.Resource{OwnerID: course.TeacherID}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the approved course owner may grade")
	}

	regrade := sub.Grade != nil

	graded, err := s.assignments.Grade(ctx, submissionID, req.Grade, req.Feedback)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade")
	}

	if !regrade {
		award := GradeAward(req.Grade, assignment.Points)
		if award > 0 {
			s.awards.Enqueue(sub.StudentID, award, fmt.Sprintf("assignment %s graded", assignment.ID))
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyGrade(ctx, sub.StudentID, assignment.Title, req.Grade)
	}

	return graded, nil
}

// GradeAward converts a 0-100 grade into ecoPoints proportional to the
// assignment's point value, rounded half away from zero.
func GradeAward(grade, assignmentPoints int) int {
	return int(math.Round(float64(grade) / 100 * float64(assignmentPoints)))
}
