package models

import "time"

// TeacherProfile holds teacher onboarding state, 1:1 with a TEACHER account.
// IsApproved starts false and only an admin may flip it; an unapproved
// teacher cannot create courses, quizzes, assignments or materials.
type TeacherProfile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	IsApproved    bool      `db:"is_approved" json:"is_approved"`
	Qualification *string   `db:"qualification" json:"qualification,omitempty"`
	Contact       *string   `db:"contact" json:"contact,omitempty"`
	Details       *string   `db:"details" json:"details,omitempty"`
	ResumeFileID  *string   `db:"resume_file_id" json:"resume_file_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherProfileDetail joins the profile with account fields for admin views.
type TeacherProfileDetail struct {
	TeacherProfile
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	TeacherEmail string `db:"teacher_email" json:"teacher_email"`
	CourseCount  int    `db:"course_count" json:"course_count"`
}
