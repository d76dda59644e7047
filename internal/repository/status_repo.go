package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// ErrNotFound is returned when a lookup resolves to no row. Read paths that
// treat absence as an expected outcome translate it to an empty payload.
var ErrNotFound = errors.New("record not found")

// StatusRepository persists status records and enforces the versioning
// invariant: at most one current record per parent at any instant.
type StatusRepository interface {
	// CreateStatus inserts rec as the new current record. If a current
	// record already exists for rec.UID it is retyped to history in the
	// same atomic operation and its parent id is inherited; otherwise the
	// caller-generated rec.ParentID starts a new thread. Either both
	// writes apply or neither.
	CreateStatus(ctx context.Context, rec *domain.StatusRecord) error

	// GetCurrent returns the current record for uid without applying the
	// expiration policy; callers filter with IsActive. ErrNotFound when
	// no current record exists.
	GetCurrent(ctx context.Context, uid string) (*domain.StatusRecord, error)

	// DeleteCurrent marks the current record for uid as deleted. The row
	// stays until the retention sweep removes it.
	DeleteCurrent(ctx context.Context, uid string) error

	// ResolveCurrent retypes the current record of the parent thread to
	// history with a resolution timestamp (administrative moderation).
	ResolveCurrent(ctx context.Context, parentID string) error

	// ListVersions returns every record sharing parentID owned by uid,
	// ordered by created_at descending. Empty slice when none exist.
	ListVersions(ctx context.Context, uid, parentID string) ([]*domain.StatusRecord, error)

	// ListLatest returns all current records whose active window covers
	// now, system-wide.
	ListLatest(ctx context.Context, now time.Time) ([]*domain.StatusRecord, error)

	// PurgeExpired physically removes history/deleted records whose
	// retention window ended before now. Returns the number removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
