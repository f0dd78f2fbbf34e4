package models

import "time"

// Assignment is a gradeable task attached to a course.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Points      int        `db:"points" json:"points"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	Submissions []Submission `db:"-" json:"submissions,omitempty"`
}

// Submission is a student's assignment artifact, unique per
// (assignment, student). Grade is in [0,100] once set.
type Submission struct {
	ID           string     `db:"id" json:"id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	ContentURL   string     `db:"content_url" json:"content_url"`
	Grade        *int       `db:"grade" json:"grade,omitempty"`
	Feedback     *string    `db:"feedback" json:"feedback,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`

	StudentName  string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail string `db:"student_email" json:"student_email,omitempty"`
}
