package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	"github.com/ecolearn/ecolearn-api/internal/realtime"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type notificationRepoStub struct {
	stored      []*models.Notification
	bulkIDs     []string
	readMatched bool
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	s.stored = append(s.stored, n)
	return nil
}

func (s *notificationRepoStub) BulkCreate(ctx context.Context, recipientIDs []string, template *models.Notification) error {
	s.bulkIDs = recipientIDs
	return nil
}

func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	return s.readMatched, nil
}

type notificationUserStub struct {
	ids        []string
	askedRoles []models.UserRole
}

func (s *notificationUserStub) IDsByRole(ctx context.Context, roles ...models.UserRole) ([]string, error) {
	s.askedRoles = roles
	return s.ids, nil
}

type busStub struct {
	events []realtime.Event
}

func (s *busStub) Publish(ctx context.Context, event realtime.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *busStub) StartForwarder(ctx context.Context, onEvent func(realtime.Event)) error {
	return nil
}

func (s *busStub) Close() error { return nil }

func TestNotifyPublishesToBus(t *testing.T) {
	repo := &notificationRepoStub{}
	bus := &busStub{}
	svc := NewNotificationService(repo, &notificationUserStub{}, bus, nil, nil)

	err := svc.Notify(context.Background(), &models.Notification{
		RecipientID: "student-1",
		Type:        models.NotificationSystem,
		Title:       "Hello",
		Body:        "Welcome aboard",
	})
	require.NoError(t, err)
	require.Len(t, repo.stored, 1)
	require.Len(t, bus.events, 1)
	assert.Equal(t, "student-1", bus.events[0].RecipientID)
}

func TestNotifyWorksWithoutBus(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, &notificationUserStub{}, nil, nil, nil)

	err := svc.Notify(context.Background(), &models.Notification{
		RecipientID: "student-1",
		Type:        models.NotificationSystem,
		Title:       "Hello",
		Body:        "Welcome aboard",
	})
	require.NoError(t, err)
	assert.Len(t, repo.stored, 1)
}

func TestBroadcastCountsRecipients(t *testing.T) {
	repo := &notificationRepoStub{}
	users := &notificationUserStub{ids: []string{"u-1", "u-2", "u-3"}}
	bus := &busStub{}
	svc := NewNotificationService(repo, users, bus, nil, nil)

	count, err := svc.Broadcast(context.Background(), adminActor, models.BroadcastRequest{
		Title: "Maintenance",
		Body:  "The platform goes offline tonight.",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"u-1", "u-2", "u-3"}, repo.bulkIDs)
	// no role filter broadcasts to everyone
	assert.Len(t, users.askedRoles, 3)
	assert.Len(t, bus.events, 3)
}

func TestBroadcastFiltersByRole(t *testing.T) {
	users := &notificationUserStub{ids: []string{"t-1"}}
	svc := NewNotificationService(&notificationRepoStub{}, users, nil, nil, nil)

	count, err := svc.Broadcast(context.Background(), adminActor, models.BroadcastRequest{
		Role:  "TEACHER",
		Title: "Grading reminder",
		Body:  "Submissions close on Friday.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []models.UserRole{models.RoleTeacher}, users.askedRoles)
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{}, &notificationUserStub{}, nil, nil, nil)

	actor := policy.Actor{ID: "teacher-1", Role: models.RoleTeacher, TeacherApproved: true}
	_, err := svc.Broadcast(context.Background(), actor, models.BroadcastRequest{
		Title: "Nope",
		Body:  "Should not go out.",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkReadUnmatchedIsNotFound(t *testing.T) {
	repo := &notificationRepoStub{readMatched: false}
	svc := NewNotificationService(repo, &notificationUserStub{}, nil, nil, nil)

	err := svc.MarkRead(context.Background(), "student-1", "n-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMarkReadMatched(t *testing.T) {
	repo := &notificationRepoStub{readMatched: true}
	svc := NewNotificationService(repo, &notificationUserStub{}, nil, nil, nil)

	require.NoError(t, svc.MarkRead(context.Background(), "student-1", "n-1"))
}
