package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitClashAPI/internal/scoring"
	"fitClashAPI/internal/types/submission"
)

type SubmissionService struct {
	db                 *pgxpool.Pool
	competitionService *CompetitionService
}

func NewSubmissionService(db *pgxpool.Pool, competitionService *CompetitionService) *SubmissionService {
	return &SubmissionService{
		db:                 db,
		competitionService: competitionService,
	}
}

// CreateSubmission scores one workout and stores it with the points frozen.
// The same-day total and the insert happen inside one transaction holding an
// advisory lock keyed by (competition, user, day), so two concurrent
// submissions cannot both see the same headroom and jointly blow past the
// daily cap. Returns the stored submission and whether the cap truncated it.
func (s *SubmissionService) CreateSubmission(ctx context.Context, clerkID string, req *submission.CreateSubmissionRequest) (*submission.Submission, bool, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, false, err
	}

	if err := validQuantities(req); err != nil {
		return nil, false, err
	}

	comp, err := s.competitionService.loadCompetition(ctx, req.CompetitionID)
	if err != nil {
		return nil, false, err
	}

	var accepted bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM competition_participants
			WHERE competition_id = $1 AND user_id = $2 AND status = 'accepted'
		)
	`, comp.ID, userID).Scan(&accepted)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check membership: %w", err)
	}
	if !accepted {
		return nil, false, fmt.Errorf("not a participant of this competition")
	}

	if !withinWindow(comp, req.Date) {
		return nil, false, fmt.Errorf("workout date is outside the competition window")
	}

	rule, ok := comp.RuleFor(req.ActivityType)
	if !ok {
		return nil, false, fmt.Errorf("no rule for activity type %q in this competition", req.ActivityType)
	}

	sub := &submission.Submission{
		ID:            uuid.New(),
		CompetitionID: comp.ID,
		UserID:        userID,
		ActivityType:  req.ActivityType,
		Unit:          rule.Unit,
		Duration:      req.Duration,
		Distance:      req.Distance,
		Calories:      req.Calories,
		Notes:         req.Notes,
		Date:          req.Date,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize cap accounting per (competition, user, day). The lock is
	// released automatically at commit/rollback.
	lockKey := fmt.Sprintf("%s:%s:%s", comp.ID, userID, req.Date.Format("2006-01-02"))
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return nil, false, fmt.Errorf("failed to acquire daily lock: %w", err)
	}

	var priorPointsToday float64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM submissions
		WHERE competition_id = $1 AND user_id = $2 AND date = $3::date
	`, comp.ID, userID, req.Date).Scan(&priorPointsToday)
	if err != nil {
		return nil, false, fmt.Errorf("failed to sum today's points: %w", err)
	}

	rawPoints, err := scoring.RawPoints(rule, sub.Workout())
	if err != nil {
		return nil, false, fmt.Errorf("failed to score submission: %w", err)
	}
	points, err := scoring.ComputePoints(rule, sub.Workout(), priorPointsToday, comp.DailyCap)
	if err != nil {
		return nil, false, fmt.Errorf("failed to score submission: %w", err)
	}
	sub.Points = points

	err = tx.QueryRow(ctx, `
		INSERT INTO submissions (id, competition_id, user_id, activity_type, unit, duration, distance, calories, points, notes, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, NOW())
		RETURNING created_at
	`, sub.ID, sub.CompetitionID, sub.UserID, sub.ActivityType, sub.Unit,
		sub.Duration, sub.Distance, sub.Calories, sub.Points, sub.Notes, sub.Date,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create submission: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit submission: %w", err)
	}

	capped := points < rawPoints
	log.Printf("CreateSubmission: user %s earned %.1f points (raw %.1f) in competition %s", clerkID, points, rawPoints, comp.ID)
	return sub, capped, nil
}

// PreviewPoints runs the same calculation as CreateSubmission without
// writing anything, for the live preview on the submission form.
func (s *SubmissionService) PreviewPoints(ctx context.Context, clerkID string, req *submission.CreateSubmissionRequest) (*submission.PreviewResponse, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if err := validQuantities(req); err != nil {
		return nil, err
	}

	comp, err := s.competitionService.loadCompetition(ctx, req.CompetitionID)
	if err != nil {
		return nil, err
	}

	rule, ok := comp.RuleFor(req.ActivityType)
	if !ok {
		return nil, fmt.Errorf("no rule for activity type %q in this competition", req.ActivityType)
	}

	var priorPointsToday float64
	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM submissions
		WHERE competition_id = $1 AND user_id = $2 AND date = $3::date
	`, comp.ID, userID, req.Date).Scan(&priorPointsToday)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's points: %w", err)
	}

	workout := scoring.Workout{
		ActivityType: req.ActivityType,
		Duration:     req.Duration,
		Distance:     req.Distance,
		Calories:     req.Calories,
	}

	rawPoints, err := scoring.RawPoints(rule, workout)
	if err != nil {
		return nil, fmt.Errorf("failed to score preview: %w", err)
	}
	points, err := scoring.ComputePoints(rule, workout, priorPointsToday, comp.DailyCap)
	if err != nil {
		return nil, fmt.Errorf("failed to score preview: %w", err)
	}

	return &submission.PreviewResponse{
		Points:    points,
		RawPoints: rawPoints,
		Capped:    points < rawPoints,
	}, nil
}

// GetSubmissions lists one competition's submissions, newest first. Any
// participant can see the full history; it backs the workouts tab.
func (s *SubmissionService) GetSubmissions(ctx context.Context, clerkID string, competitionID uuid.UUID) ([]*submission.Submission, error) {
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

	rows, err := s.db.Query(ctx, `
		SELECT id, competition_id, user_id, activity_type, unit, duration, distance, calories, points, notes, date, created_at
		FROM submissions
		WHERE competition_id = $1
		ORDER BY date DESC, created_at DESC
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	defer rows.Close()

	var subs []*submission.Submission
	for rows.Next() {
		sub := &submission.Submission{}
		err := rows.Scan(
			&sub.ID,
			&sub.CompetitionID,
			&sub.UserID,
			&sub.ActivityType,
			&sub.Unit,
			&sub.Duration,
			&sub.Distance,
			&sub.Calories,
			&sub.Points,
			&sub.Notes,
			&sub.Date,
			&sub.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if subs == nil {
		subs = []*submission.Submission{}
	}

	return subs, nil
}

// DeleteSubmission removes one of the caller's own submissions. Submissions
// are never edited in place; delete and re-log is the only correction path.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, clerkID string, submissionID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM submissions
		WHERE id = $1 AND user_id = $2
	`, submissionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission not found or not yours")
	}

	log.Printf("DeleteSubmission: user %s removed submission %s", clerkID, submissionID)
	return nil
}

// validQuantities rejects negative measurements before they reach the scoring
// engine. A negative quantity would otherwise score as 0 and still be stored.
func validQuantities(req *submission.CreateSubmissionRequest) error {
	if req.Duration < 0 || req.Distance < 0 || req.Calories < 0 {
		return fmt.Errorf("workout quantities cannot be negative")
	}
	return nil
}
