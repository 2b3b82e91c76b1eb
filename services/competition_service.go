package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitClashAPI/internal/scoring"
	"fitClashAPI/internal/types/competition"
	"fitClashAPI/internal/types/notification"
)

type CompetitionService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewCompetitionService(db *pgxpool.Pool, notificationService *NotificationService) *CompetitionService {
	return &CompetitionService{
		db:                  db,
		notificationService: notificationService,
	}
}

// CreateCompetition validates the rule set, writes the competition, its rules
// and the initial roster in one transaction, then notifies the invitees.
// Rules are rejected here, once, so the scoring engine never has to divide by
// a zero or negative threshold later.
func (s *CompetitionService) CreateCompetition(ctx context.Context, clerkID string, req *competition.CreateCompetitionRequest) (*competition.Competition, error) {
	creatorID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	if len(req.Rules) == 0 {
		return nil, fmt.Errorf("at least one activity rule is required")
	}
	if req.DailyCap != nil && *req.DailyCap <= 0 {
		return nil, fmt.Errorf("daily cap must be positive")
	}

	seen := make(map[string]bool, len(req.Rules))
	for _, rule := range req.Rules {
		if rule.ActivityType == "" {
			return nil, fmt.Errorf("rule is missing an activity type")
		}
		if seen[rule.ActivityType] {
			return nil, fmt.Errorf("duplicate rule for activity type %q", rule.ActivityType)
		}
		seen[rule.ActivityType] = true
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule for activity type %q: %w", rule.ActivityType, err)
		}
	}

	// Resolve invitees before opening the transaction; unknown emails are
	// skipped, not fatal.
	var inviteeIDs []uuid.UUID
	for _, email := range req.InvitedEmails {
		var inviteeID uuid.UUID
		err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE LOWER(email) = LOWER($1)`, email).Scan(&inviteeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				log.Printf("CreateCompetition: No account for invited email %s, skipping", email)
				continue
			}
			return nil, fmt.Errorf("failed to resolve invitee: %w", err)
		}
		if inviteeID != creatorID {
			inviteeIDs = append(inviteeIDs, inviteeID)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	comp := &competition.Competition{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DailyCap:    req.DailyCap,
		Rules:       req.Rules,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO competitions (id, creator_id, title, description, start_date, end_date, daily_cap, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`, comp.ID, comp.CreatorID, comp.Title, comp.Description, comp.StartDate, comp.EndDate, comp.DailyCap).Scan(&comp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	for _, rule := range req.Rules {
		_, err = tx.Exec(ctx, `
			INSERT INTO competition_rules (id, competition_id, activity_type, unit, points_per_unit, units_per_point)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), comp.ID, rule.ActivityType, rule.Unit, rule.PointsPerUnit, rule.UnitsPerPoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO competition_participants (competition_id, user_id, status, created_at)
		VALUES ($1, $2, 'accepted', NOW())
	`, comp.ID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator as participant: %w", err)
	}

	for _, inviteeID := range inviteeIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO competition_participants (competition_id, user_id, status, created_at)
			VALUES ($1, $2, 'pending', NOW())
			ON CONFLICT (competition_id, user_id) DO NOTHING
		`, comp.ID, inviteeID)
		if err != nil {
			return nil, fmt.Errorf("failed to invite participant: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit competition: %w", err)
	}

	for _, inviteeID := range inviteeIDs {
		s.notificationService.Notify(ctx, &notification.CreateNotificationRequest{
			UserID:  inviteeID,
			Type:    notification.NotificationCompetitionInvite,
			Title:   "Competition Invite",
			Body:    fmt.Sprintf("You've been invited to join %q", comp.Title),
			ActorID: &creatorID,
			Data:    map[string]any{"competitionId": comp.ID.String()},
		})
	}

	log.Printf("CreateCompetition: %s created competition %s with %d rules, %d invitees", clerkID, comp.ID, len(req.Rules), len(inviteeIDs))
	return comp, nil
}

// GetCompetition returns one competition with its rules and roster. Pending
// invitees may view it too, so they can decide before accepting.
func (s *CompetitionService) GetCompetition(ctx context.Context, clerkID string, competitionID uuid.UUID) (*competition.CompetitionDetails, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	comp, err := s.loadCompetition(ctx, competitionID)
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

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.image_url, cp.status
		FROM competition_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.competition_id = $1
		ORDER BY cp.created_at
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	defer rows.Close()

	var participants []*competition.Participant
	for rows.Next() {
		p := &competition.Participant{}
		var imageURL *string
		if err := rows.Scan(&p.UserID, &p.Username, &imageURL, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.ImageURL = imageURL
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &competition.CompetitionDetails{
		Competition:  comp,
		Participants: participants,
		IsCreator:    comp.CreatorID == userID,
	}, nil
}

// GetCompetitions lists the user's active competitions plus invitations still
// waiting for a response.
func (s *CompetitionService) GetCompetitions(ctx context.Context, clerkID string) (*competition.CompetitionList, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	active, err := s.listByStatus(ctx, userID, competition.ParticipantAccepted)
	if err != nil {
		return nil, err
	}
	pending, err := s.listByStatus(ctx, userID, competition.ParticipantPending)
	if err != nil {
		return nil, err
	}

	return &competition.CompetitionList{
		Active:             active,
		PendingInvitations: pending,
	}, nil
}

// AcceptInvitation moves the user from pendingParticipants to participants.
func (s *CompetitionService) AcceptInvitation(ctx context.Context, clerkID string, competitionID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		UPDATE competition_participants
		SET status = 'accepted', updated_at = NOW()
		WHERE competition_id = $1 AND user_id = $2 AND status = 'pending'
	`, competitionID, userID)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no pending invitation found")
	}

	var creatorID uuid.UUID
	var title, username string
	err = s.db.QueryRow(ctx, `
		SELECT c.creator_id, c.title, u.username
		FROM competitions c, users u
		WHERE c.id = $1 AND u.id = $2
	`, competitionID, userID).Scan(&creatorID, &title, &username)
	if err == nil {
		s.notificationService.Notify(ctx, &notification.CreateNotificationRequest{
			UserID:  creatorID,
			Type:    notification.NotificationInviteAccepted,
			Title:   "Invite Accepted",
			Body:    fmt.Sprintf("%s joined %q", username, title),
			ActorID: &userID,
			Data:    map[string]any{"competitionId": competitionID.String()},
		})
	}

	log.Printf("AcceptInvitation: user %s joined competition %s", clerkID, competitionID)
	return nil
}

// DeclineInvitation removes the pending entry entirely.
func (s *CompetitionService) DeclineInvitation(ctx context.Context, clerkID string, competitionID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM competition_participants
		WHERE competition_id = $1 AND user_id = $2 AND status = 'pending'
	`, competitionID, userID)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no pending invitation found")
	}

	log.Printf("DeclineInvitation: user %s declined competition %s", clerkID, competitionID)
	return nil
}

func (s *CompetitionService) loadCompetition(ctx context.Context, competitionID uuid.UUID) (*competition.Competition, error) {
	comp := &competition.Competition{}
	err := s.db.QueryRow(ctx, `
		SELECT id, creator_id, title, description, start_date, end_date, daily_cap, created_at
		FROM competitions
		WHERE id = $1
	`, competitionID).Scan(
		&comp.ID,
		&comp.CreatorID,
		&comp.Title,
		&comp.Description,
		&comp.StartDate,
		&comp.EndDate,
		&comp.DailyCap,
		&comp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("competition not found")
		}
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	rules, err := s.loadRules(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	comp.Rules = rules

	return comp, nil
}

func (s *CompetitionService) loadRules(ctx context.Context, competitionID uuid.UUID) ([]scoring.Rule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT activity_type, unit, points_per_unit, units_per_point
		FROM competition_rules
		WHERE competition_id = $1
		ORDER BY activity_type
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}
	defer rows.Close()

	var rules []scoring.Rule
	for rows.Next() {
		var rule scoring.Rule
		if err := rows.Scan(&rule.ActivityType, &rule.Unit, &rule.PointsPerUnit, &rule.UnitsPerPoint); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rules, nil
}

func (s *CompetitionService) listByStatus(ctx context.Context, userID uuid.UUID, status competition.ParticipantStatus) ([]*competition.Competition, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.creator_id, c.title, c.description, c.start_date, c.end_date, c.daily_cap, c.created_at
		FROM competitions c
		JOIN competition_participants cp ON cp.competition_id = c.id
		WHERE cp.user_id = $1 AND cp.status = $2 AND c.end_date >= NOW()
		ORDER BY c.end_date
	`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch competitions: %w", err)
	}
	defer rows.Close()

	var comps []*competition.Competition
	for rows.Next() {
		comp := &competition.Competition{}
		err := rows.Scan(
			&comp.ID,
			&comp.CreatorID,
			&comp.Title,
			&comp.Description,
			&comp.StartDate,
			&comp.EndDate,
			&comp.DailyCap,
			&comp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		comps = append(comps, comp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, comp := range comps {
		rules, err := s.loadRules(ctx, comp.ID)
		if err != nil {
			return nil, err
		}
		comp.Rules = rules
	}

	if comps == nil {
		comps = []*competition.Competition{}
	}

	return comps, nil
}

// Window check shared with the submission path: the calendar day of the
// workout has to fall inside the competition's start/end window. Days are
// compared as UTC calendar dates, not 24h buckets of absolute time, so a
// timestamp near midnight lands on the day its date names.
func withinWindow(comp *competition.Competition, date time.Time) bool {
	day := dateOnly(date)
	return !day.Before(dateOnly(comp.StartDate)) && !day.After(dateOnly(comp.EndDate))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
