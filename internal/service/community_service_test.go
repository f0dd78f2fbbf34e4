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

type communityRepoStub struct {
	community *models.Community
	messages  []models.CommunityMessage
	added     []*models.CommunityMessage
}

func (s *communityRepoStub) FindSingleton(ctx context.Context) (*models.Community, error) {
	if s.community == nil {
		return nil, sql.ErrNoRows
	}
	return s.community, nil
}

func (s *communityRepoStub) CreateIfAbsent(ctx context.Context, name, description string) error {
	if s.community == nil {
		s.community = &models.Community{ID: "community-1", Name: name, Description: description}
	}
	return nil
}

func (s *communityRepoStub) AddMessage(ctx context.Context, msg *models.CommunityMessage) error {
	s.added = append(s.added, msg)
	return nil
}

func (s *communityRepoStub) ListMessages(ctx context.Context, communityID string, limit int) ([]models.CommunityMessage, error) {
	return s.messages, nil
}

func TestGetBeforeBootstrapIsNotFound(t *testing.T) {
	svc := NewCommunityService(&communityRepoStub{}, nil, nil)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	repo := &communityRepoStub{}
	svc := NewCommunityService(repo, nil, nil)

	require.NoError(t, svc.Bootstrap(context.Background(), "EcoLearn", "Shared space"))
	require.NoError(t, svc.Bootstrap(context.Background(), "Other name", "Ignored"))

	community, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EcoLearn", community.Name)
}

func TestPostMessageAttachesToSingleton(t *testing.T) {
	repo := &communityRepoStub{community: &models.Community{ID: "community-1", Name: "EcoLearn"}}
	svc := NewCommunityService(repo, nil, nil)

	msg, err := svc.PostMessage(context.Background(), "student-1", models.PostMessageRequest{Content: "Planted a tree today"})
	require.NoError(t, err)
	assert.Equal(t, "community-1", msg.CommunityID)
	assert.Equal(t, "student-1", msg.AuthorID)
	require.Len(t, repo.added, 1)
}

func TestPostMessageRejectsEmptyContent(t *testing.T) {
	repo := &communityRepoStub{community: &models.Community{ID: "community-1"}}
	svc := NewCommunityService(repo, nil, nil)

	_, err := svc.PostMessage(context.Background(), "student-1", models.PostMessageRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListMessagesNeverNil(t *testing.T) {
	repo := &communityRepoStub{community: &models.Community{ID: "community-1"}}
	svc := NewCommunityService(repo, nil, nil)

	msgs, err := svc.ListMessages(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}
