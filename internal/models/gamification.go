package models

import "time"

// Badge is a named achievement unlocked by an ecoPoints threshold. Badges
// are granted when the threshold is met and never revoked.
type Badge struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	ThresholdPoints int       `db:"threshold_points" json:"threshold_points"`
	IconURL         *string   `db:"icon_url" json:"icon_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry caches a student's dense rank, recomputed after every
// balance change. Ties break by ecoPoints descending then account id.
type LeaderboardEntry struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	EcoPoints   int       `db:"eco_points" json:"eco_points"`
	Rank        int       `db:"rank" json:"rank"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// WinnerPeriod is the announcement cadence.
type WinnerPeriod string

const (
	PeriodWeekly  WinnerPeriod = "weekly"
	PeriodMonthly WinnerPeriod = "monthly"
)

// WinnerAnnouncement is a published leaderboard snapshot. At most one
// announcement is active; activating a new one deactivates the rest in the
// same transaction.
type WinnerAnnouncement struct {
	ID           string       `db:"id" json:"id"`
	Period       WinnerPeriod `db:"period" json:"period"`
	MinPoints    int          `db:"min_points" json:"min_points"`
	WinnersCount int          `db:"winners_count" json:"winners_count"`
	Active       bool         `db:"active" json:"active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`

	Winners []Winner `db:"-" json:"winners,omitempty"`
}

// Winner is one ranked student inside an announcement.
type Winner struct {
	AnnouncementID string `db:"announcement_id" json:"-"`
	StudentID      string `db:"student_id" json:"student_id"`
	StudentName    string `db:"student_name" json:"student_name"`
	EcoPoints      int    `db:"eco_points" json:"eco_points"`
	Position       int    `db:"position" json:"position"`
}

// Competition is a time-boxed challenge students can join.
type Competition struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Participants []string `db:"-" json:"participants,omitempty"`
}
