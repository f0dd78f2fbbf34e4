package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// BadgeRepository handles badge definitions and grants.
type BadgeRepository struct {
	db *sqlx.DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *sqlx.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create inserts a badge definition.
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	badge.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO badges (id, name, description, threshold_points, icon_url, created_at)
        VALUES (:id, :name, :description, :threshold_points, :icon_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, badge); err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	return nil
}

// ListAscending returns all badge definitions ordered by threshold.
func (r *BadgeRepository) ListAscending(ctx context.Context) ([]models.Badge, error) {
	const query = `SELECT id, name, description, threshold_points, icon_url, created_at FROM badges ORDER BY threshold_points ASC, name ASC`
	var badges []models.Badge
	if err := r.db.SelectContext(ctx, &badges, query); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// FindByID returns one badge definition.
func (r *BadgeRepository) FindByID(ctx context.Context, id string) (*models.Badge, error) {
	var badge models.Badge
	const query = `SELECT id, name, description, threshold_points, icon_url, created_at FROM badges WHERE id = $1`
	if err := r.db.GetContext(ctx, &badge, query, id); err != nil {
		return nil, err
	}
	return &badge, nil
}

// Grant awards the badge to the student. Granting an already-held badge is a
// no-op, which keeps the badge set monotonic.
func (r *BadgeRepository) Grant(ctx context.Context, userID, badgeID string) error {
	const query = `INSERT INTO user_badges (user_id, badge_id, granted_at) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, badge_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, badgeID, time.Now().UTC()); err != nil {
		return fmt.Errorf("grant badge: %w", err)
	}
	return nil
}

// ListForUser returns the badges a student holds, ordered by grant time.
func (r *BadgeRepository) ListForUser(ctx context.Context, userID string) ([]models.Badge, error) {
	const query = `SELECT b.id, b.name, b.description, b.threshold_points, b.icon_url, b.created_at
        FROM badges b JOIN user_badges ub ON ub.badge_id = b.id
        WHERE ub.user_id = $1 ORDER BY ub.granted_at ASC`
	var badges []models.Badge
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return badges, nil
}
