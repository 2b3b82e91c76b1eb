package standings

import (
	"sort"

	"github.com/google/uuid"
)

// UnknownDisplayName is used when the profile lookup has no name for a user.
const UnknownDisplayName = "Unknown User"

// Standing is one user's derived row on a competition leaderboard. It is
// computed fresh from the stored submissions every time, never persisted.
type Standing struct {
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	TotalPoints float64   `json:"totalPoints"`
	Rank        int       `json:"rank"`
}

// ScoredSubmission is the slice of a submission the aggregator needs: who
// earned the points and how many were frozen at submission time.
type ScoredSubmission struct {
	UserID uuid.UUID
	Points float64
}

// Rank turns a competition's roster and full submission history into an
// ordered leaderboard. Stored points are trusted as-is (rule changes are not
// retroactive). Every roster member appears even with zero submissions, and
// submitters missing from the roster are included anyway so a stale roster
// cannot drop rows. Sorting is stable with the roster order as insertion
// order, so tied totals keep a deterministic sequence; ranks run 1..N with
// no gaps and no shared numbers.
func Rank(participantIDs []uuid.UUID, submissions []ScoredSubmission, displayNameOf func(uuid.UUID) (string, bool)) []Standing {
	totals := make(map[uuid.UUID]float64, len(participantIDs))

	order := make([]uuid.UUID, 0, len(participantIDs))
	seen := make(map[uuid.UUID]bool, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
		totals[id] = 0
	}

	for _, sub := range submissions {
		if !seen[sub.UserID] {
			seen[sub.UserID] = true
			order = append(order, sub.UserID)
		}
		totals[sub.UserID] += sub.Points
	}

	result := make([]Standing, 0, len(order))
	for _, id := range order {
		name, ok := displayNameOf(id)
		if !ok || name == "" {
			name = UnknownDisplayName
		}
		result = append(result, Standing{
			UserID:      id,
			DisplayName: name,
			TotalPoints: totals[id],
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalPoints > result[j].TotalPoints
	})

	for i := range result {
		result[i].Rank = i + 1
	}

	return result
}
