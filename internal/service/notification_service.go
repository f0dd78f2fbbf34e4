package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	"github.com/ecolearn/ecolearn-api/internal/realtime"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	BulkCreate(ctx context.Context, recipientIDs []string, template *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
}

type notificationUserRepository interface {
	IDsByRole(ctx context.Context, roles ...models.UserRole) ([]string, error)
}

// NotificationService persists notifications and mirrors them onto the
// realtime bus. Bus failures never fail the triggering request.
type NotificationService struct {
	notifications notificationRepository
	users         notificationUserRepository
	bus           realtime.Bus
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications notificationRepository, users notificationUserRepository, bus realtime.Bus, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{notifications: notifications, users: users, bus: bus, validator: validate, logger: logger}
}

// Notify persists one notification and publishes it to the realtime bus.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.notifications.Create(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store notification")
	}
	s.publish(ctx, n)
	return nil
}

// NotifyGrade informs a student their submission was graded.
func (s *NotificationService) NotifyGrade(ctx context.Context, studentID string, assignmentTitle string, grade int) {
	n := &models.Notification{
		RecipientID: studentID,
		Type:        models.NotificationGrade,
		Title:       "Assignment graded",
		Body:        fmt.Sprintf("Your submission for %q was graded %d/100.", assignmentTitle, grade),
		Meta:        models.Meta{"grade": grade},
	}
	if err := s.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to send grade notification", zap.String("student_id", studentID), zap.Error(err))
	}
}

// NotifyApproval informs a teacher about an approval decision.
func (s *NotificationService) NotifyApproval(ctx context.Context, recipientID, subject string, approved bool) {
	verdict := "approved"
	if !approved {
		verdict = "unapproved"
	}
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        models.NotificationApproval,
		Title:       "Approval update",
		Body:        fmt.Sprintf("Your %s has been %s.", subject, verdict),
		Meta:        models.Meta{"approved": approved},
	}
	if err := s.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to send approval notification", zap.String("recipient_id", recipientID), zap.Error(err))
	}
}

// NotifyWinner congratulates a student on a leaderboard placement.
func (s *NotificationService) NotifyWinner(ctx context.Context, studentID string, position int, period models.WinnerPeriod) {
	n := &models.Notification{
		RecipientID: studentID,
		Type:        models.NotificationWinner,
		Title:       "Congratulations!",
		Body:        fmt.Sprintf("You placed #%d on the %s leaderboard.", position, period),
		Meta:        models.Meta{"position": position, "period": string(period)},
	}
	if err := s.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to send winner notification", zap.String("student_id", studentID), zap.Error(err))
	}
}

// Broadcast sends a system notification to every account holding the
// requested role, or to everyone when no role is given. Admin only.
func (s *NotificationService) Broadcast(ctx context.Context, actor policy.Actor, req models.BroadcastRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid broadcast payload")
	}
	if !policy.Can(actor, policy.ActionBroadcast, policy.Resource{}) {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "only admins may broadcast")
	}

	roles := []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStudent}
	if req.Role != "" {
		roles = []models.UserRole{models.UserRole(req.Role)}
	}
	recipientIDs, err := s.users.IDsByRole(ctx, roles...)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve recipients")
	}

	template := &models.Notification{
		Type:  models.NotificationSystem,
		Title: req.Title,
		Body:  req.Body,
	}
	if err := s.notifications.BulkCreate(ctx, recipientIDs, template); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store broadcast")
	}

	for _, recipientID := range recipientIDs {
		n := *template
		n.RecipientID = recipientID
		s.publish(ctx, &n)
	}
	return len(recipientIDs), nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	list, err := s.notifications.ListByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	matched, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if !matched {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) publish(ctx context.Context, n *models.Notification) {
	if s.bus == nil {
		return
	}
	event := realtime.Event{RecipientID: n.RecipientID, Notification: n}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish realtime notification",
			zap.String("notification_id", n.ID), zap.Error(err))
	}
}
