package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// CourseRepository handles course, material and enrollment persistence.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new unapproved course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, teacher_id, title, description, image_url, is_approved, created_at, updated_at)
        VALUES (:id, :teacher_id, :title, :description, :image_url, :is_approved, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course with its teacher name.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	const query = `SELECT c.id, c.teacher_id, c.title, c.description, c.image_url, c.is_approved, c.created_at, c.updated_at,
        u.name AS teacher_name
        FROM courses c JOIN users u ON u.id = c.teacher_id WHERE c.id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListAll returns every course, newest first. Admin view.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT c.id, c.teacher_id, c.title, c.description, c.image_url, c.is_approved, c.created_at, c.updated_at,
        u.name AS teacher_name
        FROM courses c JOIN users u ON u.id = c.teacher_id ORDER BY c.created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListApprovedByTeachers returns approved courses owned by any of the given
// teachers. Student view.
func (r *CourseRepository) ListApprovedByTeachers(ctx context.Context, teacherIDs []string) ([]models.Course, error) {
	if len(teacherIDs) == 0 {
		return []models.Course{}, nil
	}
	placeholders := make([]string, len(teacherIDs))
	args := make([]interface{}, len(teacherIDs))
	for i, id := range teacherIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT c.id, c.teacher_id, c.title, c.description, c.image_url, c.is_approved, c.created_at, c.updated_at,
        u.name AS teacher_name
        FROM courses c JOIN users u ON u.id = c.teacher_id
        WHERE c.is_approved = TRUE AND c.teacher_id IN (%s) ORDER BY c.created_at DESC`, strings.Join(placeholders, ","))
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns every course owned by the teacher, newest first.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.teacher_id, c.title, c.description, c.image_url, c.is_approved, c.created_at, c.updated_at,
        u.name AS teacher_name
        FROM courses c JOIN users u ON u.id = c.teacher_id WHERE c.teacher_id = $1 ORDER BY c.created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// SetApproved flips the course approval flag. Idempotent.
func (r *CourseRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.Course, error) {
	const query = `UPDATE courses SET is_approved = $1, updated_at = $2 WHERE id = $3
        RETURNING id, teacher_id, title, description, image_url, is_approved, created_at, updated_at`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, approved, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Enroll adds the student to the course roster. Re-enrolling is a no-op.
func (r *CourseRepository) Enroll(ctx context.Context, courseID, studentID string) error {
	const query = `INSERT INTO course_students (course_id, student_id, joined_at) VALUES ($1, $2, $3)
        ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, courseID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("enroll student: %w", err)
	}
	return nil
}

// IsEnrolled reports whether the student belongs to the course roster.
func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var count int
	const query = `SELECT COUNT(1) FROM course_students WHERE course_id = $1 AND student_id = $2`
	if err := r.db.GetContext(ctx, &count, query, courseID, studentID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// AddMaterial appends an immutable material row to a course.
func (r *CourseRepository) AddMaterial(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	material.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO materials (id, course_id, type, title, description, file_id, filename, content_type, created_at)
        VALUES (:id, :course_id, :type, :title, :description, :file_id, :filename, :content_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("add material: %w", err)
	}
	return nil
}

// ListMaterials returns course materials in creation order.
func (r *CourseRepository) ListMaterials(ctx context.Context, courseID string) ([]models.Material, error) {
	const query = `SELECT id, course_id, type, title, description, file_id, filename, content_type, created_at
        FROM materials WHERE course_id = $1 ORDER BY created_at ASC`
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, courseID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// MaterialCount returns how many materials the course holds.
func (r *CourseRepository) MaterialCount(ctx context.Context, courseID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM materials WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}

// FindMaterial returns one material row.
func (r *CourseRepository) FindMaterial(ctx context.Context, id string) (*models.Material, error) {
	var material models.Material
	const query = `SELECT id, course_id, type, title, description, file_id, filename, content_type, created_at
        FROM materials WHERE id = $1`
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// Summaries returns the admin content overview with per-course counts.
func (r *CourseRepository) Summaries(ctx context.Context) ([]models.CourseSummary, error) {
	const query = `SELECT c.id, c.title, c.teacher_id, u.name AS teacher_name, c.is_approved,
        (SELECT COUNT(1) FROM materials m WHERE m.course_id = c.id) AS materials_count,
        (SELECT COUNT(1) FROM quizzes q WHERE q.course_id = c.id) AS quizzes_count,
        (SELECT COUNT(1) FROM assignments a WHERE a.course_id = c.id) AS assignments_count,
        (SELECT COUNT(1) FROM course_students cs WHERE cs.course_id = c.id) AS students_count
        FROM courses c JOIN users u ON u.id = c.teacher_id ORDER BY c.created_at DESC`
	var summaries []models.CourseSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("course summaries: %w", err)
	}
	return summaries, nil
}
