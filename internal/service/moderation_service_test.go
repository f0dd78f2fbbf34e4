package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type moderationProfileStub struct {
	profile  *models.TeacherProfile
	setCalls []bool
}

func (s *moderationProfileStub) FindByID(ctx context.Context, id string) (*models.TeacherProfile, error) {
	return s.profile, nil
}

func (s *moderationProfileStub) SetApproved(ctx context.Context, id string, approved bool) (*models.TeacherProfile, error) {
	s.setCalls = append(s.setCalls, approved)
	updated := *s.profile
	updated.IsApproved = approved
	s.profile = &updated
	return &updated, nil
}

type moderationCourseStub struct {
	course   *models.Course
	setCalls []bool
}

func (s *moderationCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return s.course, nil
}

func (s *moderationCourseStub) SetApproved(ctx context.Context, id string, approved bool) (*models.Course, error) {
	s.setCalls = append(s.setCalls, approved)
	updated := *s.course
	updated.IsApproved = approved
	s.course = &updated
	return &updated, nil
}

type approvalNotifierStub struct {
	subjects []string
	states   []bool
}

func (s *approvalNotifierStub) NotifyApproval(ctx context.Context, recipientID, subject string, approved bool) {
	s.subjects = append(s.subjects, subject)
	s.states = append(s.states, approved)
}

var adminActor = policy.Actor{ID: "admin-1", Role: models.RoleAdmin}

func TestTeacherApprovalNotifiesOnChange(t *testing.T) {
	profiles := &moderationProfileStub{profile: &models.TeacherProfile{ID: "tp-1", UserID: "teacher-1", IsApproved: false}}
	notifier := &approvalNotifierStub{}
	svc := NewModerationService(profiles, &moderationCourseStub{}, notifier, nil)

	profile, err := svc.SetTeacherApproval(context.Background(), adminActor, "tp-1", true)
	require.NoError(t, err)
	assert.True(t, profile.IsApproved)
	assert.Equal(t, []string{"teacher account"}, notifier.subjects)
	assert.Equal(t, []bool{true}, notifier.states)
}

func TestTeacherApprovalIdempotent(t *testing.T) {
	profiles := &moderationProfileStub{profile: &models.TeacherProfile{ID: "tp-1", UserID: "teacher-1", IsApproved: true}}
	notifier := &approvalNotifierStub{}
	svc := NewModerationService(profiles, &moderationCourseStub{}, notifier, nil)

	profile, err := svc.SetTeacherApproval(context.Background(), adminActor, "tp-1", true)
	require.NoError(t, err)
	assert.True(t, profile.IsApproved)
	// state unchanged, no notification
	assert.Empty(t, notifier.subjects)
	// the write still happens so the call stays idempotent end to end
	assert.Equal(t, []bool{true}, profiles.setCalls)
}

func TestTeacherApprovalRevocation(t *testing.T) {
	profiles := &moderationProfileStub{profile: &models.TeacherProfile{ID: "tp-1", UserID: "teacher-1", IsApproved: true}}
	notifier := &approvalNotifierStub{}
	svc := NewModerationService(profiles, &moderationCourseStub{}, notifier, nil)

	profile, err := svc.SetTeacherApproval(context.Background(), adminActor, "tp-1", false)
	require.NoError(t, err)
	assert.False(t, profile.IsApproved)
	assert.Equal(t, []bool{false}, notifier.states)
}

func TestTeacherApprovalRequiresAdmin(t *testing.T) {
	svc := NewModerationService(&moderationProfileStub{}, &moderationCourseStub{}, nil, nil)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	_, err := svc.SetTeacherApproval(context.Background(), actor, "tp-1", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCourseApprovalNotifiesOwner(t *testing.T) {
	courses := &moderationCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1", Title: "Ocean literacy", IsApproved: false}}
	notifier := &approvalNotifierStub{}
	svc := NewModerationService(&moderationProfileStub{}, courses, notifier, nil)

	course, err := svc.SetCourseApproval(context.Background(), adminActor, "course-1", true)
	require.NoError(t, err)
	assert.True(t, course.IsApproved)
	assert.Equal(t, []string{"course Ocean literacy"}, notifier.subjects)
}

func TestCourseApprovalIdempotentRevoke(t *testing.T) {
	courses := &moderationCourseStub{course: &models.Course{ID: "course-1", TeacherID: "teacher-1", Title: "Ocean literacy", IsApproved: false}}
	notifier := &approvalNotifierStub{}
	svc := NewModerationService(&moderationProfileStub{}, courses, notifier, nil)

	course, err := svc.SetCourseApproval(context.Background(), adminActor, "course-1", false)
	require.NoError(t, err)
	assert.False(t, course.IsApproved)
	assert.Empty(t, notifier.subjects)
}
