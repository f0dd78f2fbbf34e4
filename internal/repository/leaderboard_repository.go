package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// LeaderboardRepository handles the materialized leaderboard snapshot.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository creates a new leaderboard repository.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// ReplaceAll swaps the full snapshot inside one transaction so readers never
// observe a half-written leaderboard.
func (r *LeaderboardRepository) ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard_entries`); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	now := time.Now().UTC()
	for i := range entries {
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO leaderboard_entries (student_id, student_name, eco_points, rank, updated_at)
            VALUES (:student_id, :student_name, :eco_points, :rank, :updated_at)`, entries[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert leaderboard entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit leaderboard: %w", err)
	}
	return nil
}

// TopN returns the snapshot's first n ranks.
func (r *LeaderboardRepository) TopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	const query = `SELECT student_id, student_name, eco_points, rank, updated_at
        FROM leaderboard_entries ORDER BY rank ASC, student_id ASC LIMIT $1`
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query, n); err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return entries, nil
}
