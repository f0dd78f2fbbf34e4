package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// CompetitionRepository handles competitions and their rosters.
type CompetitionRepository struct {
	db *sqlx.DB
}

// NewCompetitionRepository creates a new competition repository.
func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

// Create inserts a competition.
func (r *CompetitionRepository) Create(ctx context.Context, comp *models.Competition) error {
	if comp.ID == "" {
		comp.ID = uuid.NewString()
	}
	comp.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO competitions (id, title, description, start_date, end_date, created_at)
        VALUES (:id, :title, :description, :start_date, :end_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comp); err != nil {
		return fmt.Errorf("create competition: %w", err)
	}
	return nil
}

// FindByID returns one competition with its participant ids.
func (r *CompetitionRepository) FindByID(ctx context.Context, id string) (*models.Competition, error) {
	var comp models.Competition
	const query = `SELECT id, title, description, start_date, end_date, created_at
        FROM competitions WHERE id = $1`
	if err := r.db.GetContext(ctx, &comp, query, id); err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &comp.Participants,
		`SELECT student_id FROM competition_participants WHERE competition_id = $1 ORDER BY joined_at ASC`, id); err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	return &comp, nil
}

// ListUpcoming returns competitions that have not ended yet, soonest first.
func (r *CompetitionRepository) ListUpcoming(ctx context.Context, now time.Time) ([]models.Competition, error) {
	const query = `SELECT id, title, description, start_date, end_date, created_at
        FROM competitions WHERE end_date >= $1 ORDER BY start_date ASC`
	var comps []models.Competition
	if err := r.db.SelectContext(ctx, &comps, query, now); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return comps, nil
}

// Join adds the student to the competition roster. Re-joining is a no-op.
func (r *CompetitionRepository) Join(ctx context.Context, competitionID, studentID string) error {
	const query = `INSERT INTO competition_participants (competition_id, student_id, joined_at) VALUES ($1, $2, $3)
        ON CONFLICT (competition_id, student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, competitionID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("join competition: %w", err)
	}
	return nil
}
