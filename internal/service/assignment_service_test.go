package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type assignmentRepoStub struct {
	assignment    *models.Assignment
	submission    *models.Submission
	hasSubmission bool
	created       *models.Submission
	gradedWith    []int
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *models.Assignment) error {
	return nil
}

func (s *assignmentRepoStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if s.assignment == nil {
		return nil, sql.ErrNoRows
	}
	return s.assignment, nil
}

func (s *assignmentRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	return nil, nil
}

func (s *assignmentRepoStub) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	s.created = sub
	return nil
}

func (s *assignmentRepoStub) HasSubmission(ctx context.Context, assignmentID, studentID string) (bool, error) {
	return s.hasSubmission, nil
}

func (s *assignmentRepoStub) FindSubmission(ctx context.Context, id string) (*models.Submission, error) {
	if s.submission == nil {
		return nil, sql.ErrNoRows
	}
	return s.submission, nil
}

func (s *assignmentRepoStub) ListSubmissions(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	return nil, nil
}

func (s *assignmentRepoStub) Grade(ctx context.Context, submissionID string, grade int, feedback *string) (*models.Submission, error) {
	s.gradedWith = append(s.gradedWith, grade)
	graded := *s.submission
	graded.Grade = &grade
	graded.Feedback = feedback
	return &graded, nil
}

type assignmentCourseStub struct {
	course   *models.Course
	enrolled bool
}

func (s *assignmentCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.course == nil {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *assignmentCourseStub) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return s.enrolled, nil
}

type gradeNotifierStub struct {
	grades []int
}

func (s *gradeNotifierStub) NotifyGrade(ctx context.Context, studentID string, assignmentTitle string, grade int) {
	s.grades = append(s.grades, grade)
}

func newAssignmentFixture(repo *assignmentRepoStub, courses *assignmentCourseStub) (*AssignmentService, *awardEnqueuerStub, *gradeNotifierStub) {
	awards := &awardEnqueuerStub{}
	notifier := &gradeNotifierStub{}
	svc := NewAssignmentService(repo, courses, &progressTrackerStub{}, awards, notifier, nil, nil)
	return svc, awards, notifier
}

func TestGradeAwardRounding(t *testing.T) {
	assert.Equal(t, 17, GradeAward(85, 20))
	assert.Equal(t, 20, GradeAward(100, 20))
	assert.Equal(t, 0, GradeAward(0, 20))
	// 2.5 rounds half away from zero
	assert.Equal(t, 3, GradeAward(25, 10))
}

func TestSubmitDuplicateIsConflict(t *testing.T) {
	repo := &assignmentRepoStub{
		assignment:    &models.Assignment{ID: "as-1", CourseID: "course-1"},
		hasSubmission: true,
	}
	svc, awards, _ := newAssignmentFixture(repo, &assignmentCourseStub{enrolled: true})

	_, err := svc.Submit(context.Background(), "student-1", "as-1", models.SubmitAssignmentRequest{ContentURL: "https://example.com/work.pdf"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, awards.deltas)
}

func TestSubmitStoresFirstAttempt(t *testing.T) {
	repo := &assignmentRepoStub{assignment: &models.Assignment{ID: "as-1", CourseID: "course-1"}}
	svc, _, _ := newAssignmentFixture(repo, &assignmentCourseStub{enrolled: true})

	sub, err := svc.Submit(context.Background(), "student-1", "as-1", models.SubmitAssignmentRequest{ContentURL: "https://example.com/work.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "student-1", sub.StudentID)
	require.NotNil(t, repo.created)
}

func TestGradeAwardsOnFirstGradeOnly(t *testing.T) {
	repo := &assignmentRepoStub{
		assignment: &models.Assignment{ID: "as-1", CourseID: "course-1", Title: "Compost diary", Points: 20},
		submission: &models.Submission{ID: "sub-1", AssignmentID: "as-1", StudentID: "student-1"},
	}
	courses := &assignmentCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1"}}
	svc, awards, notifier := newAssignmentFixture(repo, courses)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	graded, err := svc.Grade(context.Background(), actor, "sub-1", models.GradeSubmissionRequest{Grade: 85})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, []int{17}, awards.deltas)
	assert.Equal(t, []int{85}, notifier.grades)
}

func TestRegradeOverwritesWithoutReawarding(t *testing.T) {
	previous := 60
	repo := &assignmentRepoStub{
		assignment: &models.Assignment{ID: "as-1", CourseID: "course-1", Title: "Compost diary", Points: 20},
		submission: &models.Submission{ID: "sub-1", AssignmentID: "as-1", StudentID: "student-1", Grade: &previous},
	}
	courses := &assignmentCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1"}}
	svc, awards, notifier := newAssignmentFixture(repo, courses)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	graded, err := svc.Grade(context.Background(), actor, "sub-1", models.GradeSubmissionRequest{Grade: 95})
	require.NoError(t, err)
	assert.Equal(t, 95, *graded.Grade)
	assert.Empty(t, awards.deltas)
	// the student is still told about the new grade
	assert.Equal(t, []int{95}, notifier.grades)
}

func TestGradeRequiresCourseOwnership(t *testing.T) {
	repo := &assignmentRepoStub{
		assignment: &models.Assignment{ID: "as-1", CourseID: "course-1", Points: 20},
		submission: &models.Submission{ID: "sub-1", AssignmentID: "as-1", StudentID: "student-1"},
	}
	courses := &assignmentCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1"}}
	svc, _, _ := newAssignmentFixture(repo, courses)

	actor := policy.Actor{ID: "teacher-2", Role: models.RoleTeacher, TeacherApproved: true}
	_, err := svc.Grade(context.Background(), actor, "sub-1", models.GradeSubmissionRequest{Grade: 50})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
