package competition

import (
	"time"

	"github.com/google/uuid"

	"fitClashAPI/internal/scoring"
)

type ParticipantStatus string

const (
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantPending  ParticipantStatus = "pending"
)

// Competition owns a set of rules keyed by activity type, an optional daily
// point cap and the submission window. The scoring core only ever reads it.
type Competition struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	CreatorID   uuid.UUID      `json:"creatorId" db:"creator_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description,omitempty" db:"description"`
	StartDate   time.Time      `json:"startDate" db:"start_date"`
	EndDate     time.Time      `json:"endDate" db:"end_date"`
	DailyCap    *float64       `json:"dailyCap,omitempty" db:"daily_cap"`
	Rules       []scoring.Rule `json:"rules"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}

// RuleFor looks a rule up by exact activity-type match. There is no default
// rule; a missing match means the competition configuration and the
// submission disagree.
func (c *Competition) RuleFor(activityType string) (scoring.Rule, bool) {
	for _, r := range c.Rules {
		if r.ActivityType == activityType {
			return r, true
		}
	}
	return scoring.Rule{}, false
}

type Participant struct {
	UserID   uuid.UUID         `json:"userId" db:"user_id"`
	Username string            `json:"username" db:"username"`
	ImageURL *string           `json:"imageUrl,omitempty" db:"image_url"`
	Status   ParticipantStatus `json:"status" db:"status"`
}
