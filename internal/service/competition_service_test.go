package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type competitionRepoStub struct {
	competition *models.Competition
	created     *models.Competition
	joined      []string
}

func (s *competitionRepoStub) Create(ctx context.Context, comp *models.Competition) error {
	comp.ID = "comp-1"
	s.created = comp
	return nil
}

func (s *competitionRepoStub) FindByID(ctx context.Context, id string) (*models.Competition, error) {
	if s.competition == nil {
		return nil, sql.ErrNoRows
	}
	return s.competition, nil
}

func (s *competitionRepoStub) ListUpcoming(ctx context.Context, now time.Time) ([]models.Competition, error) {
	return nil, nil
}

func (s *competitionRepoStub) Join(ctx context.Context, competitionID, studentID string) error {
	s.joined = append(s.joined, studentID)
	return nil
}

var studentActor = policy.Actor{ID: "student-1", Role: models.RoleStudent}

func TestCreateCompetitionRequiresAdmin(t *testing.T) {
	svc := NewCompetitionService(&competitionRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), studentActor, models.CreateCompetitionRequest{
		Title:     "Zero waste week",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(8 * 24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCreateCompetitionRejectsInvertedDates(t *testing.T) {
	svc := NewCompetitionService(&competitionRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), adminActor, models.CreateCompetitionRequest{
		Title:     "Zero waste week",
		StartDate: time.Now().Add(8 * 24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJoinOpenCompetition(t *testing.T) {
	repo := &competitionRepoStub{competition: &models.Competition{
		ID:        "comp-1",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
	}}
	svc := NewCompetitionService(repo, nil, nil)

	require.NoError(t, svc.Join(context.Background(), studentActor, "comp-1"))
	assert.Equal(t, []string{"student-1"}, repo.joined)
}

func TestJoinEndedCompetitionIsConflict(t *testing.T) {
	repo := &competitionRepoStub{competition: &models.Competition{
		ID:        "comp-1",
		StartDate: time.Now().Add(-48 * time.Hour),
		EndDate:   time.Now().Add(-time.Hour),
	}}
	svc := NewCompetitionService(repo, nil, nil)

	err := svc.Join(context.Background(), studentActor, "comp-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.joined)
}

func TestJoinRequiresStudent(t *testing.T) {
	svc := NewCompetitionService(&competitionRepoStub{}, nil, nil)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	err := svc.Join(context.Background(), actor, "comp-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestJoinUnknownCompetitionIsNotFound(t *testing.T) {
	svc := NewCompetitionService(&competitionRepoStub{}, nil, nil)

	err := svc.Join(context.Background(), studentActor, "comp-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
