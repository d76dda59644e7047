package repository

import (
	"context"
	"time"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// NotificationsRepository persists broadcast notifications and their
// per-resident read receipts.
type NotificationsRepository interface {
	Create(ctx context.Context, n *domain.NotificationRecord) error

	Get(ctx context.Context, id string) (*domain.NotificationRecord, error)

	// MarkRead adds uid to the notification's read_by set with set-union
	// semantics: idempotent, commutative across concurrent callers, never
	// removes members. ErrNotFound when id does not resolve.
	MarkRead(ctx context.Context, id, uid string) error

	// List returns the most recent notifications, newest first.
	List(ctx context.Context, limit int) ([]*domain.NotificationRecord, error)

	// PurgeExpired removes notifications whose expiry passed before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// DeviceTokensRepository tracks FCM registration tokens per resident.
type DeviceTokensRepository interface {
	// Register upserts the token row; re-registering an existing token
	// moves it to the new owner and refreshes its timestamp.
	Register(ctx context.Context, token *domain.DeviceToken) error

	// Remove drops a token (explicit unregister or FCM invalid-token
	// response). Removing an unknown token is not an error.
	Remove(ctx context.Context, token string) error

	ListAll(ctx context.Context) ([]*domain.DeviceToken, error)

	ListByUID(ctx context.Context, uid string) ([]*domain.DeviceToken, error)
}
