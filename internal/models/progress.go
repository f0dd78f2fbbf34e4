package models

import "time"

// ActivityKind enumerates the countable learning activities.
type ActivityKind string

const (
	ActivityMaterial   ActivityKind = "material"
	ActivityQuiz       ActivityKind = "quiz"
	ActivityAssignment ActivityKind = "assignment"
	ActivityGame       ActivityKind = "game"
)

// Progress is the per-student-per-course rollup, unique per (student, course).
// Counters only ever increase; ProgressPercent is derived on every increment
// and saturates at 100.
type Progress struct {
	ID                   string    `db:"id" json:"id"`
	StudentID            string    `db:"student_id" json:"student_id"`
	CourseID             string    `db:"course_id" json:"course_id"`
	MaterialsCompleted   int       `db:"materials_completed" json:"materials_completed"`
	QuizzesCompleted     int       `db:"quizzes_completed" json:"quizzes_completed"`
	AssignmentsSubmitted int       `db:"assignments_submitted" json:"assignments_submitted"`
	GamesCompleted       int       `db:"games_completed" json:"games_completed"`
	ProgressPercent      int       `db:"progress_percent" json:"progress_percent"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`

	CourseTitle string `db:"course_title" json:"course_title,omitempty"`
}

// CompletedTotal sums all activity counters.
func (p Progress) CompletedTotal() int {
	return p.MaterialsCompleted + p.QuizzesCompleted + p.AssignmentsSubmitted + p.GamesCompleted
}
