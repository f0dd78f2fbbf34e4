package models

import "time"

// MaterialType enumerates supported course material kinds.
type MaterialType string

const (
	MaterialPDF     MaterialType = "pdf"
	MaterialVideo   MaterialType = "video"
	MaterialArticle MaterialType = "article"
	MaterialBook    MaterialType = "book"
)

// ValidMaterialType reports whether the given string names a known kind.
func ValidMaterialType(t string) bool {
	switch MaterialType(t) {
	case MaterialPDF, MaterialVideo, MaterialArticle, MaterialBook:
		return true
	}
	return false
}

// Course is a unit of content owned by one teacher. IsApproved starts false
// and only an admin may flip it; students only ever see approved courses
// from teachers they selected.
type Course struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	IsApproved  bool      `db:"is_approved" json:"is_approved"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	TeacherName string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// Material is an immutable content item inside a course, backed by an
// uploaded blob.
type Material struct {
	ID          string       `db:"id" json:"id"`
	CourseID    string       `db:"course_id" json:"course_id"`
	Type        MaterialType `db:"type" json:"type"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	FileID      string       `db:"file_id" json:"file_id"`
	Filename    string       `db:"filename" json:"filename"`
	ContentType string       `db:"content_type" json:"content_type"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// CourseSummary is the admin content overview row.
type CourseSummary struct {
	ID               string `db:"id" json:"id"`
	Title            string `db:"title" json:"title"`
	TeacherID        string `db:"teacher_id" json:"teacher_id"`
	TeacherName      string `db:"teacher_name" json:"teacher_name"`
	IsApproved       bool   `db:"is_approved" json:"is_approved"`
	MaterialsCount   int    `db:"materials_count" json:"materials_count"`
	QuizzesCount     int    `db:"quizzes_count" json:"quizzes_count"`
	AssignmentsCount int    `db:"assignments_count" json:"assignments_count"`
	StudentsCount    int    `db:"students_count" json:"students_count"`
}
