package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type progressRepoStub struct {
	row        *models.Progress
	setPercent []int
}

func (s *progressRepoStub) Increment(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error) {
	row := *s.row
	switch kind {
	case models.ActivityMaterial:
		row.MaterialsCompleted++
	case models.ActivityQuiz:
		row.QuizzesCompleted++
	case models.ActivityAssignment:
		row.AssignmentsSubmitted++
	case models.ActivityGame:
		row.GamesCompleted++
	}
	s.row = &row
	return &row, nil
}

func (s *progressRepoStub) SetPercent(ctx context.Context, studentID, courseID string, percent int) error {
	s.setPercent = append(s.setPercent, percent)
	return nil
}

func (s *progressRepoStub) Find(ctx context.Context, studentID, courseID string) (*models.Progress, error) {
	if s.row == nil {
		return nil, sql.ErrNoRows
	}
	return s.row, nil
}

func (s *progressRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.Progress, error) {
	return nil, nil
}

type progressCourseStub struct {
	course    *models.Course
	enrolled  bool
	materials int
}

func (s *progressCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.course == nil {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *progressCourseStub) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return s.enrolled, nil
}

func (s *progressCourseStub) MaterialCount(ctx context.Context, courseID string) (int, error) {
	return s.materials, nil
}

type awardEnqueuerStub struct {
	deltas  []int
	reasons []string
}

func (s *awardEnqueuerStub) Enqueue(studentID string, delta int, reason string) {
	s.deltas = append(s.deltas, delta)
	s.reasons = append(s.reasons, reason)
}

func newProgressFixture(courses *progressCourseStub) (*ProgressService, *progressRepoStub, *awardEnqueuerStub) {
	repo := &progressRepoStub{row: &models.Progress{StudentID: "student-1", CourseID: "course-1"}}
	awards := &awardEnqueuerStub{}
	svc := NewProgressService(repo, courses, awards, nil, nil, RewardPolicy{
		Material:    10,
		Quiz:        10,
		Assignment:  10,
		GameDefault: 10,
		GameMax:     50,
	})
	return svc, repo, awards
}

func TestCompletionPercent(t *testing.T) {
	// 3 of (4 materials + 3 tracks) rounds to 43
	assert.Equal(t, 43, CompletionPercent(3, 4))
	assert.Equal(t, 0, CompletionPercent(0, 4))
	assert.Equal(t, 100, CompletionPercent(7, 4))
	// counters can exceed the denominator, percent saturates
	assert.Equal(t, 100, CompletionPercent(20, 4))
}

func TestRecordActivityAwardsFlatReward(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: true}, enrolled: true, materials: 4}
	svc, repo, awards := newProgressFixture(courses)

	progress, err := svc.RecordActivity(context.Background(), "student-1", models.RecordActivityRequest{
		CourseID: "course-1",
		Kind:     "material",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, progress.MaterialsCompleted)
	assert.Equal(t, []int{10}, awards.deltas)
	assert.Equal(t, []int{14}, repo.setPercent)
}

func TestRecordActivityRequiresEnrollment(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: true}, enrolled: false}
	svc, _, awards := newProgressFixture(courses)

	_, err := svc.RecordActivity(context.Background(), "student-1", models.RecordActivityRequest{
		CourseID: "course-1",
		Kind:     "material",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, awards.deltas)
}

func TestRecordActivityRejectsUnapprovedCourse(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: false}, enrolled: true}
	svc, _, _ := newProgressFixture(courses)

	_, err := svc.RecordActivity(context.Background(), "student-1", models.RecordActivityRequest{
		CourseID: "course-1",
		Kind:     "quiz",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCompleteGameCapsPoints(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: true}, enrolled: true, materials: 4}
	svc, _, awards := newProgressFixture(courses)

	_, err := svc.CompleteGame(context.Background(), "student-1", models.CompleteGameRequest{
		CourseID: "course-1",
		Points:   80,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50}, awards.deltas)
}

func TestCompleteGameDefaultsPoints(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: true}, enrolled: true, materials: 4}
	svc, _, awards := newProgressFixture(courses)

	_, err := svc.CompleteGame(context.Background(), "student-1", models.CompleteGameRequest{
		CourseID: "course-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10}, awards.deltas)
}

func TestMarkCompletedSkipsAward(t *testing.T) {
	courses := &progressCourseStub{course: &models.Course{ID: "course-1", IsApproved: true}, enrolled: true, materials: 4}
	svc, _, awards := newProgressFixture(courses)

	progress, err := svc.MarkCompleted(context.Background(), "student-1", "course-1", models.ActivityQuiz)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.QuizzesCompleted)
	assert.Empty(t, awards.deltas)
}
