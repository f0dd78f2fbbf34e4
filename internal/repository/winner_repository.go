package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// WinnerRepository handles winner announcements.
type WinnerRepository struct {
	db *sqlx.DB
}

// NewWinnerRepository creates a new winner repository.
func NewWinnerRepository(db *sqlx.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

// CreateAnnouncement inserts a new active announcement with its winner rows
// and deactivates every prior active announcement inside the same
// transaction, so at most one announcement is ever active.
func (r *WinnerRepository) CreateAnnouncement(ctx context.Context, ann *models.WinnerAnnouncement) error {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	ann.CreatedAt = time.Now().UTC()
	ann.Active = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE winner_announcements SET active = FALSE WHERE active = TRUE`); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("deactivate announcements: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO winner_announcements (id, period, min_points, winners_count, active, created_at)
        VALUES (:id, :period, :min_points, :winners_count, :active, :created_at)`, ann); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert announcement: %w", err)
	}
	for i := range ann.Winners {
		ann.Winners[i].AnnouncementID = ann.ID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO winners (announcement_id, student_id, student_name, eco_points, position)
            VALUES (:announcement_id, :student_id, :student_name, :eco_points, :position)`, ann.Winners[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert winner: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit announcement: %w", err)
	}
	return nil
}

// LatestActive returns the newest active announcement with its winners, or
// sql.ErrNoRows when none exists.
func (r *WinnerRepository) LatestActive(ctx context.Context) (*models.WinnerAnnouncement, error) {
	var ann models.WinnerAnnouncement
	const query = `SELECT id, period, min_points, winners_count, active, created_at
        FROM winner_announcements WHERE active = TRUE ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &ann, query); err != nil {
		return nil, err
	}
	const winnersQuery = `SELECT announcement_id, student_id, student_name, eco_points, position
        FROM winners WHERE announcement_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &ann.Winners, winnersQuery, ann.ID); err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}
	return &ann, nil
}
