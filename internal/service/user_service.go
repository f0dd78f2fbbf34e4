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

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ReplaceSelectedTeachers(ctx context.Context, studentID string, teacherIDs []string) error
	SelectedTeacherIDs(ctx context.Context, studentID string) ([]string, error)
}

type teacherProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
	UpdateDetails(ctx context.Context, userID string, qualification, contact, details *string) (*models.TeacherProfile, error)
	SetResumeFile(ctx context.Context, userID, fileID string) error
	ListDetailed(ctx context.Context, approvedOnly bool) ([]models.TeacherProfileDetail, error)
}

// Profile is the authenticated user's own view, including teacher onboarding
// state when applicable.
type Profile struct {
	models.UserInfo
	Teacher          *models.TeacherProfile `json:"teacher,omitempty"`
	SelectedTeachers []string               `json:"selected_teachers,omitempty"`
}

// UserService handles account reads and the student teacher-selection set.
type UserService struct {
	users     userRepository
	profiles  teacherProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, profiles teacherProfileRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{users: users, profiles: profiles, validator: validate, logger: logger}
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	profile := &Profile{
		UserInfo: models.UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			EcoPoints: user.EcoPoints,
		},
	}

	switch user.Role {
	case models.RoleTeacher:
		tp, err := s.profiles.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
		}
		profile.Teacher = tp
	case models.RoleStudent:
		selected, err := s.users.SelectedTeacherIDs(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher selection")
		}
		profile.SelectedTeachers = selected
	}

	return profile, nil
}

// ResolveActor builds the policy principal for the authenticated claims,
// resolving teacher approval from the profile.
func (s *UserService) ResolveActor(ctx context.Context, claims *models.JWTClaims) (policy.Actor, error) {
	actor := policy.Actor{ID: claims.UserID, Role: claims.Role}
	if claims.Role != models.RoleTeacher {
		return actor, nil
	}
	profile, err := s.profiles.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return actor, nil
		}
		return actor, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher approval")
	}
	actor.TeacherApproved = profile.IsApproved
	return actor, nil
}

// ListUsers returns accounts matching the filter. Admin view.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// SelectTeachers replaces the student's followed-teacher set. Every id must
// name an approved teacher.
func (s *UserService) SelectTeachers(ctx context.Context, studentID string, req models.SelectTeachersRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher selection")
	}

	for _, teacherID := range req.TeacherIDs {
		profile, err := s.profiles.FindByUserID(ctx, teacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown teacher %s", teacherID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
		}
		if !profile.IsApproved {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %s is not approved", teacherID))
		}
	}

	if err := s.users.ReplaceSelectedTeachers(ctx, studentID, req.TeacherIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher selection")
	}
	return nil
}

// ListTeachers returns teacher profiles. Students only see approved
// teachers; admins see everyone.
func (s *UserService) ListTeachers(ctx context.Context, approvedOnly bool) ([]models.TeacherProfileDetail, error) {
	teachers, err := s.profiles.ListDetailed(ctx, approvedOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if teachers == nil {
		teachers = []models.TeacherProfileDetail{}
	}
	return teachers, nil
}

// UpdateTeacherProfile edits the caller's onboarding details.
func (s *UserService) UpdateTeacherProfile(ctx context.Context, userID string, req models.UpdateTeacherProfileRequest) (*models.TeacherProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.profiles.UpdateDetails(ctx, userID, req.Qualification, req.Contact, req.Details)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// AttachResume records an uploaded resume blob on the teacher's profile.
func (s *UserService) AttachResume(ctx context.Context, userID, fileID string) error {
	if err := s.profiles.SetResumeFile(ctx, userID, fileID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach resume")
	}
	return nil
}
