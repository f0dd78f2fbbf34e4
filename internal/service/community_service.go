package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type communityRepository interface {
	FindSingleton(ctx context.Context) (*models.Community, error)
	CreateIfAbsent(ctx context.Context, name, description string) error
	AddMessage(ctx context.Context, msg *models.CommunityMessage) error
	ListMessages(ctx context.Context, communityID string, limit int) ([]models.CommunityMessage, error)
}

// CommunityService owns the single shared chat room.
type CommunityService struct {
	communities communityRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCommunityService constructs a CommunityService.
func NewCommunityService(communities communityRepository, validate *validator.Validate, logger *zap.Logger) *CommunityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CommunityService{communities: communities, validator: validate, logger: logger}
}

// Bootstrap creates the community singleton if it does not exist yet. Called
// once at startup; safe to call concurrently across instances.
func (s *CommunityService) Bootstrap(ctx context.Context, name, description string) error {
	if err := s.communities.CreateIfAbsent(ctx, name, description); err != nil {
		return err
	}
	community, err := s.communities.FindSingleton(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("community ready", zap.String("community_id", community.ID), zap.String("name", community.Name))
	return nil
}

// Get returns the community.
func (s *CommunityService) Get(ctx context.Context) (*models.Community, error) {
	community, err := s.communities.FindSingleton(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "community not initialised")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load community")
	}
	return community, nil
}

// PostMessage appends a chat message from any authenticated user.
func (s *CommunityService) PostMessage(ctx context.Context, authorID string, req models.PostMessageRequest) (*models.CommunityMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	community, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	msg := &models.CommunityMessage{
		CommunityID: community.ID,
		AuthorID:    authorID,
		Content:     req.Content,
	}
	if err := s.communities.AddMessage(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}
	return msg, nil
}

// ListMessages returns the chat feed oldest first.
func (s *CommunityService) ListMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error) {
	community, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := s.communities.ListMessages(ctx, community.ID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	if msgs == nil {
		msgs = []models.CommunityMessage{}
	}
	return msgs, nil
}
