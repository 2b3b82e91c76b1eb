package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitClashAPI/internal/standings"
	"fitClashAPI/internal/types/leaderboard"
)

type LeaderboardService struct {
	db *pgxpool.Pool
}

func NewLeaderboardService(db *pgxpool.Pool) *LeaderboardService {
	return &LeaderboardService{db: db}
}

type profile struct {
	username string
	imageURL *string
}

// GetLeaderboard re-derives one competition's standings from its stored
// submissions. The stored points are summed as-is; the scoring engine already
// froze them at submission time. Roster order (join order) is the tie-break
// order, so equal totals rank deterministically.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, clerkID string, competitionID uuid.UUID) (*leaderboard.Leaderboard, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var isMember bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM competition_participants
			WHERE competition_id = $1 AND user_id = $2
		)
	`, competitionID, userID).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("not a participant of this competition")
	}

	rosterRows, err := s.db.Query(ctx, `
		SELECT cp.user_id, u.username, u.image_url
		FROM competition_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.competition_id = $1 AND cp.status = 'accepted'
		ORDER BY cp.created_at
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	defer rosterRows.Close()

	var roster []uuid.UUID
	profiles := make(map[uuid.UUID]profile)
	for rosterRows.Next() {
		var id uuid.UUID
		var p profile
		if err := rosterRows.Scan(&id, &p.username, &p.imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		roster = append(roster, id)
		profiles[id] = p
	}
	if err = rosterRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	// Submitters who left the roster (or were never on it) still show up in
	// the ranking, so their names are fetched too.
	subRows, err := s.db.Query(ctx, `
		SELECT sub.user_id, sub.points, u.username, u.image_url
		FROM submissions sub
		LEFT JOIN users u ON u.id = sub.user_id
		WHERE sub.competition_id = $1
		ORDER BY sub.created_at
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	defer subRows.Close()

	var scored []standings.ScoredSubmission
	for subRows.Next() {
		var entry standings.ScoredSubmission
		var username *string
		var imageURL *string
		if err := subRows.Scan(&entry.UserID, &entry.Points, &username, &imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		scored = append(scored, entry)
		if _, known := profiles[entry.UserID]; !known && username != nil {
			profiles[entry.UserID] = profile{username: *username, imageURL: imageURL}
		}
	}
	if err = subRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	ranked := standings.Rank(roster, scored, func(id uuid.UUID) (string, bool) {
		p, ok := profiles[id]
		return p.username, ok
	})

	entries := make([]*leaderboard.LeaderboardEntry, 0, len(ranked))
	var userPosition *leaderboard.LeaderboardEntry
	for _, st := range ranked {
		entry := &leaderboard.LeaderboardEntry{
			UserID:      st.UserID,
			Username:    st.DisplayName,
			TotalPoints: st.TotalPoints,
			Rank:        st.Rank,
		}
		if p, ok := profiles[st.UserID]; ok {
			entry.ImageURL = p.imageURL
		}
		entries = append(entries, entry)

		if st.UserID == userID {
			userPosition = entry
		}
	}

	return &leaderboard.Leaderboard{
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   len(entries),
	}, nil
}
