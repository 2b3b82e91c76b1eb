package competition

import (
	"time"

	"fitClashAPI/internal/scoring"
)

type CreateCompetitionRequest struct {
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description,omitempty"`
	StartDate     time.Time      `json:"startDate" validate:"required"`
	EndDate       time.Time      `json:"endDate" validate:"required"`
	DailyCap      *float64       `json:"dailyCap,omitempty"`
	Rules         []scoring.Rule `json:"rules" validate:"required,min=1"`
	InvitedEmails []string       `json:"invitedEmails,omitempty"`
}

// CompetitionDetails is the full read model for one competition screen.
type CompetitionDetails struct {
	Competition  *Competition   `json:"competition"`
	Participants []*Participant `json:"participants"`
	IsCreator    bool           `json:"isCreator"`
}

// CompetitionList powers the active-competitions screen: competitions the
// user is in, plus invitations waiting on an accept/decline.
type CompetitionList struct {
	Active             []*Competition `json:"active"`
	PendingInvitations []*Competition `json:"pendingInvitations"`
}
