package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Question is one scored quiz item. CorrectIndex must index into Options.
type Question struct {
	Prompt       string   `json:"prompt" validate:"required"`
	Options      []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	Points       int      `json:"points" validate:"gte=0"`
}

// QuestionList stores questions as a JSONB column.
type QuestionList []Question

// Value implements driver.Valuer.
func (q QuestionList) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *QuestionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	default:
		return fmt.Errorf("unsupported question list type %T", src)
	}
}

// Quiz is a set of scored questions attached to a course.
type Quiz struct {
	ID        string       `db:"id" json:"id"`
	CourseID  string       `db:"course_id" json:"course_id"`
	Title     string       `db:"title" json:"title"`
	Questions QuestionList `db:"questions" json:"questions"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// QuizResult is the outcome of scoring a submission. Score is the raw
// point-weighted sum; CorrectCount drives the flat-rate ecoPoints award.
type QuizResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correct_count"`
}
