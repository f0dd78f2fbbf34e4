package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// CommunityRepository handles the community singleton and its message feed.
type CommunityRepository struct {
	db *sqlx.DB
}

// NewCommunityRepository creates a new community repository.
func NewCommunityRepository(db *sqlx.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// FindSingleton returns the one community row, or sql.ErrNoRows.
func (r *CommunityRepository) FindSingleton(ctx context.Context) (*models.Community, error) {
	var community models.Community
	const query = `SELECT id, name, description, created_at FROM communities ORDER BY created_at ASC LIMIT 1`
	if err := r.db.GetContext(ctx, &community, query); err != nil {
		return nil, err
	}
	return &community, nil
}

// CreateIfAbsent bootstraps the community singleton. The partial unique index
// on the table keeps concurrent startups from racing to two rows.
func (r *CommunityRepository) CreateIfAbsent(ctx context.Context, name, description string) error {
	const query = `INSERT INTO communities (id, name, description, created_at)
        SELECT $1, $2, $3, $4 WHERE NOT EXISTS (SELECT 1 FROM communities)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), name, description, time.Now().UTC()); err != nil {
		return fmt.Errorf("bootstrap community: %w", err)
	}
	return nil
}

// AddMessage appends a message to the community feed.
func (r *CommunityRepository) AddMessage(ctx context.Context, msg *models.CommunityMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO community_messages (id, community_id, author_id, content, created_at)
        VALUES (:id, :community_id, :author_id, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("add community message: %w", err)
	}
	return nil
}

// ListMessages returns the feed oldest first, joined with author info.
func (r *CommunityRepository) ListMessages(ctx context.Context, communityID string, limit int) ([]models.CommunityMessage, error) {
	query := `SELECT m.id, m.community_id, m.author_id, m.content, m.created_at,
        u.name AS author_name, u.role AS author_role
        FROM community_messages m JOIN users u ON u.id = m.author_id
        WHERE m.community_id = $1 ORDER BY m.created_at ASC`
	args := []interface{}{communityID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	var msgs []models.CommunityMessage
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, fmt.Errorf("list community messages: %w", err)
	}
	return msgs, nil
}
