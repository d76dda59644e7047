package domain

import "time"

// NotificationSeverity mirrors the alert levels the dashboard sends out.
type NotificationSeverity string

const (
	SeverityLow    NotificationSeverity = "low"
	SeverityMedium NotificationSeverity = "medium"
	SeverityHigh   NotificationSeverity = "high"
)

// NotificationRecord is one broadcast notification shared by all residents.
// ReadBy is a set of resident identifiers who have acknowledged it; it grows
// only by union and never shrinks through normal operation.
type NotificationRecord struct {
	ID        string               `json:"id" db:"notification_id"`
	Title     string               `json:"title" db:"title"`
	Body      string               `json:"body" db:"body"`
	Severity  NotificationSeverity `json:"severity" db:"severity"`
	Category  string               `json:"category" db:"category"`
	ReadBy    []string             `json:"readBy" db:"read_by"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	ExpiresAt *time.Time           `json:"expiresAt,omitempty" db:"expires_at"`
}

// ReadByUser reports whether uid has already acknowledged the notification.
func (n *NotificationRecord) ReadByUser(uid string) bool {
	for _, u := range n.ReadBy {
		if u == uid {
			return true
		}
	}
	return false
}

// DeviceToken is one FCM registration token owned by a resident account.
// A resident may hold several (one per device); tokens are upserted on
// registration and pruned when FCM reports them invalid.
type DeviceToken struct {
	Token     string    `json:"token" db:"token"`
	UID       string    `json:"uid" db:"uid"`
	Platform  string    `json:"platform" db:"platform"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
