package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type competitionRepository interface {
	Create(ctx context.Context, comp *models.Competition) error
	FindByID(ctx context.Context, id string) (*models.Competition, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]models.Competition, error)
	Join(ctx context.Context, competitionID, studentID string) error
}

// CompetitionService manages time-boxed challenges.
type CompetitionService struct {
	competitions competitionRepository
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewCompetitionService constructs a CompetitionService.
func NewCompetitionService(competitions competitionRepository, validate *validator.Validate, logger *zap.Logger) *CompetitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CompetitionService{competitions: competitions, validator: validate, logger: logger}
}

// Create schedules a new competition. Admin only.
func (s *CompetitionService) Create(ctx context.Context, actor policy.Actor, req models.CreateCompetitionRequest) (*models.Competition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid competition payload")
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may create competitions")
	}

	comp := &models.Competition{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.competitions.Create(ctx, comp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create competition")
	}
	return comp, nil
}

// ListUpcoming returns competitions that have not ended yet.
func (s *CompetitionService) ListUpcoming(ctx context.Context) ([]models.Competition, error) {
	comps, err := s.competitions.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list competitions")
	}
	if comps == nil {
		comps = []models.Competition{}
	}
	return comps, nil
}

// Get returns one competition with its roster.
func (s *CompetitionService) Get(ctx context.Context, id string) (*models.Competition, error) {
	comp, err := s.competitions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "competition not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load competition")
	}
	return comp, nil
}

// Join adds the student to a competition that has not ended. Idempotent.
func (s *CompetitionService) Join(ctx context.Context, actor policy.Actor, competitionID string) error {
	if actor.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only students may join competitions")
	}

	comp, err := s.Get(ctx, competitionID)
	if err != nil {
		return err
	}
	if time.Now().UTC().After(comp.EndDate) {
		return appErrors.Clone(appErrors.ErrConflict, "competition has ended")
	}

	if err := s.competitions.Join(ctx, competitionID, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join competition")
	}
	return nil
}
