package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// ProgressRepository handles per-student per-course progress persistence.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

var counterColumns = map[models.ActivityKind]string{
	models.ActivityMaterial:   "materials_completed",
	models.ActivityQuiz:       "quizzes_completed",
	models.ActivityAssignment: "assignments_submitted",
	models.ActivityGame:       "games_completed",
}

// Increment bumps the counter for the given activity kind by one, creating
// the progress row if it does not exist yet. The upsert is a single statement
// so concurrent increments for the same (student, course) pair both land.
func (r *ProgressRepository) Increment(ctx context.Context, studentID, courseID string, kind models.ActivityKind) (*models.Progress, error) {
	column, ok := counterColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
	query := fmt.Sprintf(`INSERT INTO progress (id, student_id, course_id, %[1]s, created_at, updated_at)
        VALUES ($1, $2, $3, 1, $4, $4)
        ON CONFLICT (student_id, course_id)
        DO UPDATE SET %[1]s = progress.%[1]s + 1, updated_at = $4
        RETURNING id, student_id, course_id, materials_completed, quizzes_completed,
        assignments_submitted, games_completed, progress_percent, created_at, updated_at`, column)
	var progress models.Progress
	if err := r.db.GetContext(ctx, &progress, query, uuid.NewString(), studentID, courseID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("increment progress: %w", err)
	}
	return &progress, nil
}

// SetPercent stores the recomputed completion percentage.
func (r *ProgressRepository) SetPercent(ctx context.Context, studentID, courseID string, percent int) error {
	const query = `UPDATE progress SET progress_percent = $1, updated_at = $2 WHERE student_id = $3 AND course_id = $4`
	if _, err := r.db.ExecContext(ctx, query, percent, time.Now().UTC(), studentID, courseID); err != nil {
		return fmt.Errorf("set progress percent: %w", err)
	}
	return nil
}

// EnsureRow seeds a zeroed progress row for a fresh enrollment.
func (r *ProgressRepository) EnsureRow(ctx context.Context, studentID, courseID string) error {
	const query = `INSERT INTO progress (id, student_id, course_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (student_id, course_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure progress row: %w", err)
	}
	return nil
}

// Find returns the progress row for one (student, course) pair.
func (r *ProgressRepository) Find(ctx context.Context, studentID, courseID string) (*models.Progress, error) {
	var progress models.Progress
	const query = `SELECT id, student_id, course_id, materials_completed, quizzes_completed,
        assignments_submitted, games_completed, progress_percent, created_at, updated_at
        FROM progress WHERE student_id = $1 AND course_id = $2`
	if err := r.db.GetContext(ctx, &progress, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListByStudent returns every progress row the student holds, joined with the
// course title.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Progress, error) {
	const query = `SELECT p.id, p.student_id, p.course_id, p.materials_completed, p.quizzes_completed,
        p.assignments_submitted, p.games_completed, p.progress_percent, p.created_at, p.updated_at,
        c.title AS course_title
        FROM progress p JOIN courses c ON c.id = p.course_id
        WHERE p.student_id = $1 ORDER BY p.updated_at DESC`
	var rows []models.Progress
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}
