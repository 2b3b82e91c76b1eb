package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationCompetitionInvite NotificationType = "competition_invite"
	NotificationInviteAccepted    NotificationType = "invite_accepted"
	NotificationCompetitionEnded  NotificationType = "competition_ended"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

// NotificationPreferences mirror the client's settings toggles. They live in
// the database and are always read through the notification service; nothing
// consults ambient storage mid-call.
type NotificationPreferences struct {
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	PushEnabled   bool          `json:"push_enabled" db:"push_enabled"`
	InvitePopups  bool          `json:"invite_popups" db:"invite_popups"`
	SoundAlerts   bool          `json:"sound_alerts" db:"sound_alerts"`
	BadgeCounters bool          `json:"badge_counters" db:"badge_counters"`
	DeviceTokens  []DeviceToken `json:"device_tokens"`
}
