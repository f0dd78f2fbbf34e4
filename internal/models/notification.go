package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType categorises notifications for client rendering.
type NotificationType string

const (
	NotificationSystem   NotificationType = "system"
	NotificationGrade    NotificationType = "grade"
	NotificationApproval NotificationType = "approval"
	NotificationWinner   NotificationType = "winner"
)

// Meta is a free-form JSONB payload attached to a notification.
type Meta map[string]interface{}

// Value implements driver.Valuer.
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Meta) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported meta type %T", src)
	}
}

// Notification is a persisted message for one recipient, also published on
// the realtime bus when created.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	RecipientID string           `db:"recipient_id" json:"recipient_id"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Body        string           `db:"body" json:"body"`
	Meta        Meta             `db:"meta" json:"meta,omitempty"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
