package submission

import (
	"time"

	"github.com/google/uuid"

	"fitClashAPI/internal/scoring"
)

// Submission is one logged workout. Points are computed once at creation and
// frozen; rule changes after the fact are not applied retroactively. There is
// no edit-in-place, only deletion.
type Submission struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	CompetitionID uuid.UUID    `json:"competitionId" db:"competition_id"`
	UserID        uuid.UUID    `json:"userId" db:"user_id"`
	ActivityType  string       `json:"activityType" db:"activity_type"`
	Unit          scoring.Unit `json:"unit" db:"unit"`
	Duration      float64      `json:"duration" db:"duration"` // minutes
	Distance      float64      `json:"distance" db:"distance"`
	Calories      float64      `json:"calories" db:"calories"`
	Points        float64      `json:"points" db:"points"`
	Notes         string       `json:"notes,omitempty" db:"notes"`
	Date          time.Time    `json:"date" db:"date"` // calendar day the workout counts toward
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}

// Workout maps the raw quantities onto the scoring engine's input.
func (s *Submission) Workout() scoring.Workout {
	return scoring.Workout{
		ActivityType: s.ActivityType,
		Duration:     s.Duration,
		Distance:     s.Distance,
		Calories:     s.Calories,
	}
}
