package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// TeacherProfileRepository handles teacher onboarding persistence.
type TeacherProfileRepository struct {
	db *sqlx.DB
}

// NewTeacherProfileRepository creates a new teacher profile repository.
func NewTeacherProfileRepository(db *sqlx.DB) *TeacherProfileRepository {
	return &TeacherProfileRepository{db: db}
}

// Create inserts a pending profile for the given teacher account.
func (r *TeacherProfileRepository) Create(ctx context.Context, profile *models.TeacherProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const query = `INSERT INTO teacher_profiles (id, user_id, is_approved, qualification, contact, details, resume_file_id, created_at, updated_at)
        VALUES (:id, :user_id, :is_approved, :qualification, :contact, :details, :resume_file_id, :created_at, :updated_at)
        ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}
	return nil
}

// FindByID returns a profile by its id.
func (r *TeacherProfileRepository) FindByID(ctx context.Context, id string) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	const query = `SELECT id, user_id, is_approved, qualification, contact, details, resume_file_id, created_at, updated_at
        FROM teacher_profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID returns the profile belonging to a teacher account.
func (r *TeacherProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	const query = `SELECT id, user_id, is_approved, qualification, contact, details, resume_file_id, created_at, updated_at
        FROM teacher_profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetApproved flips the approval flag. The update is idempotent.
func (r *TeacherProfileRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.TeacherProfile, error) {
	const query = `UPDATE teacher_profiles SET is_approved = $1, updated_at = $2 WHERE id = $3
        RETURNING id, user_id, is_approved, qualification, contact, details, resume_file_id, created_at, updated_at`
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, approved, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateDetails upserts the editable onboarding fields.
func (r *TeacherProfileRepository) UpdateDetails(ctx context.Context, userID string, qualification, contact, details *string) (*models.TeacherProfile, error) {
	const query = `UPDATE teacher_profiles SET qualification = $1, contact = $2, details = $3, updated_at = $4 WHERE user_id = $5
        RETURNING id, user_id, is_approved, qualification, contact, details, resume_file_id, created_at, updated_at`
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, qualification, contact, details, time.Now().UTC(), userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetResumeFile records the uploaded resume blob reference.
func (r *TeacherProfileRepository) SetResumeFile(ctx context.Context, userID, fileID string) error {
	const query = `UPDATE teacher_profiles SET resume_file_id = $1, updated_at = $2 WHERE user_id = $3`
	if _, err := r.db.ExecContext(ctx, query, fileID, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("set resume file: %w", err)
	}
	return nil
}

// ListDetailed returns profiles joined with account info and course counts,
// optionally restricted to approved teachers.
func (r *TeacherProfileRepository) ListDetailed(ctx context.Context, approvedOnly bool) ([]models.TeacherProfileDetail, error) {
	query := `SELECT tp.id, tp.user_id, tp.is_approved, tp.qualification, tp.contact, tp.details, tp.resume_file_id, tp.created_at, tp.updated_at,
        u.name AS teacher_name, u.email AS teacher_email,
        (SELECT COUNT(1) FROM courses c WHERE c.teacher_id = tp.user_id) AS course_count
        FROM teacher_profiles tp JOIN users u ON u.id = tp.user_id`
	if approvedOnly {
		query += ` WHERE tp.is_approved = TRUE`
	}
	query += ` ORDER BY tp.created_at DESC`
	var details []models.TeacherProfileDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list teacher profiles: %w", err)
	}
	return details, nil
}
