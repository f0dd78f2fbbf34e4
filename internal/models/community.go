package models

import "time"

// Community is the single shared chat room, created once at bootstrap.
type Community struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CommunityMessage is an append-only chat entry, listed oldest first.
type CommunityMessage struct {
	ID          string    `db:"id" json:"id"`
	CommunityID string    `db:"community_id" json:"community_id"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	AuthorName string   `db:"author_name" json:"author_name,omitempty"`
	AuthorRole UserRole `db:"author_role" json:"author_role,omitempty"`
}
