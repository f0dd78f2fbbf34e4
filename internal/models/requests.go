package models

import "time"

// CreateCourseRequest creates a new (unapproved) course.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// AddMaterialRequest describes the metadata for an uploaded material. The
// file itself arrives as multipart form data.
type AddMaterialRequest struct {
	Type        string `json:"type" form:"type" validate:"required,oneof=pdf video article book"`
	Title       string `json:"title" form:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" form:"description"`
}

// CreateQuizRequest creates a quiz with its questions.
type CreateQuizRequest struct {
	Title     string     `json:"title" validate:"required,min=3,max=200"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// SubmitQuizRequest carries one answer index per question position. Missing
// or out-of-range answers score zero for that question.
type SubmitQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

// CreateAssignmentRequest creates a gradeable assignment.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"required"`
	Points      int        `json:"points" validate:"gte=0"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// SubmitAssignmentRequest hands in a student's work.
type SubmitAssignmentRequest struct {
	ContentURL string `json:"content_url" validate:"required"`
}

// GradeSubmissionRequest grades a submission on the 0-100 scale.
type GradeSubmissionRequest struct {
	Grade    int     `json:"grade" validate:"gte=0,lte=100"`
	Feedback *string `json:"feedback,omitempty"`
}

// RecordActivityRequest marks one completed activity inside a course.
type RecordActivityRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=material quiz assignment game"`
}

// CompleteGameRequest finishes an eco-game. Points defaults to the configured
// game reward and is capped server-side.
type CompleteGameRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Points   int    `json:"points" validate:"gte=0"`
}

// ConfigureWinnersRequest publishes a new winner announcement.
type ConfigureWinnersRequest struct {
	Period       string `json:"period" validate:"required,oneof=weekly monthly"`
	MinPoints    int    `json:"min_points" validate:"gte=0"`
	WinnersCount int    `json:"winners_count" validate:"required,gt=0"`
}

// CreateBadgeRequest defines a new badge.
type CreateBadgeRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Description     string  `json:"description"`
	ThresholdPoints int     `json:"threshold_points" validate:"gte=0"`
	IconURL         *string `json:"icon_url,omitempty" validate:"omitempty,url"`
}

// BroadcastRequest sends a notification to every account holding the role,
// or to everyone when Role is empty.
type BroadcastRequest struct {
	Role  string `json:"role" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	Title string `json:"title" validate:"required,min=2,max=200"`
	Body  string `json:"body" validate:"required"`
}

// PostMessageRequest appends a community chat message.
type PostMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CreateCompetitionRequest schedules a new competition.
type CreateCompetitionRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// SelectTeachersRequest replaces a student's followed-teacher set.
type SelectTeachersRequest struct {
	TeacherIDs []string `json:"teacher_ids" validate:"required"`
}

// UpdateTeacherProfileRequest edits teacher onboarding details.
type UpdateTeacherProfileRequest struct {
	Qualification *string `json:"qualification,omitempty"`
	Contact       *string `json:"contact,omitempty"`
	Details       *string `json:"details,omitempty"`
}
