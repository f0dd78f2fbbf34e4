package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// AssignmentRepository handles assignment and submission persistence.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO assignments (id, course_id, title, description, due_date, points, created_at)
        VALUES (:id, :course_id, :title, :description, :due_date, :points, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	const query = `SELECT id, course_id, title, description, due_date, points, created_at FROM assignments WHERE id = $1`
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByCourse returns a course's assignments in creation order.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	const query = `SELECT id, course_id, title, description, due_date, points, created_at
        FROM assignments WHERE course_id = $1 ORDER BY created_at ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CreateSubmission inserts a submission; the unique (assignment, student)
// constraint rejects duplicates at the database level.
func (r *AssignmentRepository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO submissions (id, assignment_id, student_id, content_url, created_at)
        VALUES (:id, :assignment_id, :student_id, :content_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// HasSubmission reports whether the student already submitted.
func (r *AssignmentRepository) HasSubmission(ctx context.Context, assignmentID, studentID string) (bool, error) {
	var count int
	const query = `SELECT COUNT(1) FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	if err := r.db.GetContext(ctx, &count, query, assignmentID, studentID); err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return count > 0, nil
}

// FindSubmission returns one submission row.
func (r *AssignmentRepository) FindSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	const query = `SELECT id, assignment_id, student_id, content_url, grade, feedback, graded_at, created_at
        FROM submissions WHERE id = $1`
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmissions returns an assignment's submissions with student info.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	const query = `SELECT s.id, s.assignment_id, s.student_id, s.content_url, s.grade, s.feedback, s.graded_at, s.created_at,
        u.name AS student_name, u.email AS student_email
        FROM submissions s JOIN users u ON u.id = s.student_id
        WHERE s.assignment_id = $1 ORDER BY s.created_at ASC`
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Grade stores the grade, feedback and timestamp on a submission. Regrading
// overwrites the previous values.
func (r *AssignmentRepository) Grade(ctx context.Context, submissionID string, grade int, feedback *string) (*models.Submission, error) {
	const query = `UPDATE submissions SET grade = $1, feedback = $2, graded_at = $3 WHERE id = $4
        RETURNING id, assignment_id, student_id, content_url, grade, feedback, graded_at, created_at`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, grade, feedback, time.Now().UTC(), submissionID); err != nil {
		return nil, err
	}
	return &sub, nil
}
