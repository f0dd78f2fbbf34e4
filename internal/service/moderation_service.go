package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type moderationProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.TeacherProfile, error)
	SetApproved(ctx context.Context, id string, approved bool) (*models.TeacherProfile, error)
}

type moderationCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	SetApproved(ctx context.Context, id string, approved bool) (*models.Course, error)
}

type approvalNotifier interface {
	NotifyApproval(ctx context.Context, recipientID, subject string, approved bool)
}

// ModerationService owns the admin approval flows for teachers and courses.
// Both transitions are idempotent in either direction.
type ModerationService struct {
	profiles moderationProfileRepository
	courses  moderationCourseRepository
	notifier approvalNotifier
	logger   *zap.Logger
}

// NewModerationService constructs a ModerationService.
func NewModerationService(profiles moderationProfileRepository, courses moderationCourseRepository, notifier approvalNotifier, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{profiles: profiles, courses: courses, notifier: notifier, logger: logger}
}

// SetTeacherApproval flips a teacher profile's approval flag. Re-applying
// the current state is a no-op that still succeeds.
func (s *ModerationService) SetTeacherApproval(ctx context.Context, actor policy.Actor, profileID string, approved bool) (*models.TeacherProfile, error) {
	if !policy.Can(actor, policy.ActionApproveTeacher, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may approve teachers")
	}

	current, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}

	changed := current.IsApproved != approved
	profile, err := s.profiles.SetApproved(ctx, profileID, approved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher approval")
	}

	if changed {
		s.logger.Info("teacher approval changed",
			zap.String("profile_id", profileID),
			zap.String("teacher_id", profile.UserID),
			zap.Bool("approved", approved),
			zap.String("admin_id", actor.ID))
		if s.notifier != nil {
			s.notifier.NotifyApproval(ctx, profile.UserID, "teacher account", approved)
		}
	}
	return profile, nil
}

// SetCourseApproval flips a course's approval flag. Idempotent both ways;
// revoking approval hides the course from students again.
func (s *ModerationService) SetCourseApproval(ctx context.Context, actor policy.Actor, courseID string, approved bool) (*models.Course, error) {
	if !policy.Can(actor, policy.ActionApproveCourse, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may approve courses")
	}

	current, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	changed := current.IsApproved != approved
	course, err := s.courses.SetApproved(ctx, courseID, approved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course approval")
	}

	if changed {
		s.logger.Info("course approval changed",
			zap.String("course_id", courseID),
			zap.Bool("approved", approved),
			zap.String("admin_id", actor.ID))
		if s.notifier != nil {
			s.notifier.NotifyApproval(ctx, course.TeacherID, "course "+course.Title, approved)
		}
	}
	return course, nil
}
