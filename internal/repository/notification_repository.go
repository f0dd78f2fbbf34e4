package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// NotificationRepository handles the notification inbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts one notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO notifications (id, recipient_id, type, title, body, meta, is_read, created_at)
        VALUES (:id, :recipient_id, :type, :title, :body, :meta, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// BulkCreate inserts one notification per recipient inside a transaction.
// Used for broadcasts.
func (r *NotificationRepository) BulkCreate(ctx context.Context, recipientIDs []string, template *models.Notification) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	const query = `INSERT INTO notifications (id, recipient_id, type, title, body, meta, is_read, created_at)
        VALUES (:id, :recipient_id, :type, :title, :body, :meta, :is_read, :created_at)`
	for _, recipientID := range recipientIDs {
		n := *template
		n.ID = uuid.NewString()
		n.RecipientID = recipientID
		n.IsRead = false
		n.CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &n); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert broadcast notification: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit broadcast: %w", err)
	}
	return nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, recipient_id, type, title, body, meta, is_read, created_at
        FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`
	var list []models.Notification
	if err := r.db.SelectContext(ctx, &list, query, recipientID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// MarkRead flags a notification as read, scoped to its recipient so one user
// cannot touch another's inbox. Returns whether a row matched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return affected > 0, nil
}
