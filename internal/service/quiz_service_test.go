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

type quizRepoStub struct {
	quiz    *models.Quiz
	created *models.Quiz
}

func (s *quizRepoStub) Create(ctx context.Context, quiz *models.Quiz) error {
	s.created = quiz
	return nil
}

func (s *quizRepoStub) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if s.quiz == nil {
		return nil, sql.ErrNoRows
	}
	return s.quiz, nil
}

func (s *quizRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	return nil, nil
}

type quizCourseStub struct {
	course   *models.Course
	enrolled bool
}

func (s *quizCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.course == nil {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *quizCourseStub) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return s.enrolled, nil
}

type progressTrackerStub struct {
	kinds []models.ActivityKind
}

func (s *progressTrackerStub) MarkCompleted(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error) {
	s.kinds = append(s.kinds, kind)
	return &models.Progress{StudentID: studentID, CourseID: courseID, QuizzesCompleted: 1}, nil
}

func sampleQuestions() models.QuestionList {
	return models.QuestionList{
		{Prompt: "Which bin takes glass?", Options: []string{"Green", "Blue"}, CorrectIndex: 0, Points: 10},
		{Prompt: "Best transport for short trips?", Options: []string{"Car", "Bike"}, CorrectIndex: 1, Points: 20},
	}
}

func TestScoreQuizWeightsPointsButCountsFlat(t *testing.T) {
	result := ScoreQuiz(sampleQuestions(), []int{0, 1})
	assert.Equal(t, 30, result.Score)
	assert.Equal(t, 2, result.CorrectCount)
}

func TestScoreQuizSkipsMissingAndOutOfRangeAnswers(t *testing.T) {
	// only the first question is answered
	result := ScoreQuiz(sampleQuestions(), []int{0})
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 1, result.CorrectCount)

	// out-of-range answers never score
	result = ScoreQuiz(sampleQuestions(), []int{5, -1})
	assert.Zero(t, result.Score)
	assert.Zero(t, result.CorrectCount)
}

func TestScoreQuizDeterministic(t *testing.T) {
	first := ScoreQuiz(sampleQuestions(), []int{0, 0})
	second := ScoreQuiz(sampleQuestions(), []int{0, 0})
	assert.Equal(t, first, second)
}

func TestSubmitAwardsFlatRatePerCorrect(t *testing.T) {
	quizzes := &quizRepoStub{quiz: &models.Quiz{ID: "quiz-1", CourseID: "course-1", Questions: sampleQuestions()}}
	courses := &quizCourseStub{enrolled: true}
	tracker := &progressTrackerStub{}
	awards := &awardEnqueuerStub{}
	svc := NewQuizService(quizzes, courses, tracker, awards, nil, nil, 10)

	result, err := svc.Submit(context.Background(), "student-1", "quiz-1", models.SubmitQuizRequest{Answers: []int{0, 1}})
	require.NoError(t, err)

	// score is point-weighted, the award is a flat rate per correct answer
	assert.Equal(t, 30, result.Score)
	assert.Equal(t, 20, result.PointsAwarded)
	assert.Equal(t, []int{20}, awards.deltas)
	assert.Equal(t, []models.ActivityKind{models.ActivityQuiz}, tracker.kinds)
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	quizzes := &quizRepoStub{quiz: &models.Quiz{ID: "quiz-1", CourseID: "course-1", Questions: sampleQuestions()}}
	courses := &quizCourseStub{enrolled: false}
	svc := NewQuizService(quizzes, courses, &progressTrackerStub{}, &awardEnqueuerStub{}, nil, nil, 10)

	_, err := svc.Submit(context.Background(), "student-1", "quiz-1", models.SubmitQuizRequest{Answers: []int{0}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmitAllWrongSkipsAward(t *testing.T) {
	quizzes := &quizRepoStub{quiz: &models.Quiz{ID: "quiz-1", CourseID: "course-1", Questions: sampleQuestions()}}
	courses := &quizCourseStub{enrolled: true}
	awards := &awardEnqueuerStub{}
	svc := NewQuizService(quizzes, courses, &progressTrackerStub{}, awards, nil, nil, 10)

	result, err := svc.Submit(context.Background(), "student-1", "quiz-1", models.SubmitQuizRequest{Answers: []int{1, 0}})
	require.NoError(t, err)
	assert.Zero(t, result.PointsAwarded)
	assert.Empty(t, awards.deltas)
}

func TestCreateRejectsOutOfRangeCorrectIndex(t *testing.T) {
	courses := &quizCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1"}}
	svc := NewQuizService(&quizRepoStub{}, courses, &progressTrackerStub{}, &awardEnqueuerStub{}, nil, nil, 10)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	_, err := svc.Create(context.Background(), actor, "course-1", models.CreateQuizRequest{
		Title: "Recycling basics",
		Questions: []models.Question{
			{Prompt: "Pick one", Options: []string{"A", "B"}, CorrectIndex: 2, Points: 10},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateRequiresCourseOwnership(t *testing.T) {
	courses := &quizCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1"}}
	svc := NewQuizService(&quizRepoStub{}, courses, &progressTrackerStub{}, &awardEnqueuerStub{}, nil, nil, 10)

	actor := policy.Actor{ID: "teacher-2", Role: models.RoleTeacher, TeacherApproved: true}
	_, err := svc.Create(context.Background(), actor, "course-1", models.CreateQuizRequest{
		Title: "Recycling basics",
		Questions: []models.Question{
			{Prompt: "Pick one", Options: []string{"A", "B"}, CorrectIndex: 0, Points: 10},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
