package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitClashAPI/internal/types/notification"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	service := &NotificationService{
		db: db,
	}
	service.dispatcher = NewNotificationDispatcher(service)
	return service
}

// SetPushProvider injects the FCM provider from main.go. Without one,
// notifications are still stored and listed; they just never push.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

// Notify stores a notification and queues the push delivery. Errors are
// logged, not returned: a failed invite push must never fail the invite.
func (s *NotificationService) Notify(ctx context.Context, req *notification.CreateNotificationRequest) {
	prefs, err := s.getPreferencesByUserID(ctx, req.UserID)
	if err != nil {
		log.Printf("Notify: failed to load preferences for %s: %v", req.UserID, err)
		return
	}

	dataJSON, _ := json.Marshal(req.Data)

	notif := &notification.Notification{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING id, user_id, type, title, body, is_read, created_at
	`, uuid.New(), req.UserID, req.Type, req.Title, req.Body, dataJSON).Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &notif.IsRead, &notif.CreatedAt,
	)
	if err != nil {
		log.Printf("Notify: failed to store notification for %s: %v", req.UserID, err)
		return
	}
	notif.Data = req.Data

	if !prefs.PushEnabled {
		return
	}
	if req.Type == notification.NotificationCompetitionInvite && !prefs.InvitePopups {
		return
	}

	s.dispatcher.Enqueue(&DispatchJob{
		Notification: notif,
		Preferences:  prefs,
	})
}

// GetNotifications returns a page of the user's notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize

	whereClause := "WHERE user_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = FALSE"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		notif := &notification.Notification{}
		var dataJSON []byte
		err := rows.Scan(&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &dataJSON, &notif.IsRead, &notif.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		json.Unmarshal(dataJSON, &notif.Data)
		notifications = append(notifications, notif)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	var totalCount, unreadCount int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = FALSE)
		FROM notifications WHERE user_id = $1
	`, userID).Scan(&totalCount, &unreadCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return 0, err
	}

	var unreadCount int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&unreadCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}

	return unreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark all as read: %w", err)
	}

	return nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

func (s *NotificationService) GetPreferences(ctx context.Context, clerkID string) (*notification.NotificationPreferences, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return s.getPreferencesByUserID(ctx, userID)
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	// Make sure a row exists before the partial update.
	if _, err := s.getPreferencesByUserID(ctx, userID); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE notification_preferences
		SET push_enabled = COALESCE($2, push_enabled),
			invite_popups = COALESCE($3, invite_popups),
			sound_alerts = COALESCE($4, sound_alerts),
			badge_counters = COALESCE($5, badge_counters),
			updated_at = NOW()
		WHERE user_id = $1
	`, userID, req.PushEnabled, req.InvitePopups, req.SoundAlerts, req.BadgeCounters)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return s.getPreferencesByUserID(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	log.Printf("RegisterDevice: registered %s token for user %s", req.Platform, clerkID)
	return nil
}

func (s *NotificationService) getPreferencesByUserID(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{}
	err := s.db.QueryRow(ctx, `
		SELECT user_id, push_enabled, invite_popups, sound_alerts, badge_counters
		FROM notification_preferences
		WHERE user_id = $1
	`, userID).Scan(&prefs.UserID, &prefs.PushEnabled, &prefs.InvitePopups, &prefs.SoundAlerts, &prefs.BadgeCounters)

	if errors.Is(err, pgx.ErrNoRows) {
		prefs, err = s.createDefaultPreferences(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT token, platform FROM device_tokens WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		prefs.DeviceTokens = append(prefs.DeviceTokens, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return prefs, nil
}

// Everything defaults to on, matching the client's first-run settings.
func (s *NotificationService) createDefaultPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO notification_preferences (user_id, push_enabled, invite_popups, sound_alerts, badge_counters, created_at, updated_at)
		VALUES ($1, TRUE, TRUE, TRUE, TRUE, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, push_enabled, invite_popups, sound_alerts, badge_counters
	`, userID).Scan(&prefs.UserID, &prefs.PushEnabled, &prefs.InvitePopups, &prefs.SoundAlerts, &prefs.BadgeCounters)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}
