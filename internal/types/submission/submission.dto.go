package submission

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	CompetitionID uuid.UUID `json:"competitionId" validate:"required"`
	ActivityType  string    `json:"activityType" validate:"required"`
	Duration      float64   `json:"duration"`
	Distance      float64   `json:"distance"`
	Calories      float64   `json:"calories"`
	Notes         string    `json:"notes,omitempty"`
	Date          time.Time `json:"date" validate:"required"`
}

// PreviewResponse is the points preview shown before submitting. RawPoints is
// the uncapped value so the client can tell "you earned 2" apart from "you
// earned 2 because only 2 remained under the cap".
type PreviewResponse struct {
	Points    float64 `json:"points"`
	RawPoints float64 `json:"rawPoints"`
	Capped    bool    `json:"capped"`
}
