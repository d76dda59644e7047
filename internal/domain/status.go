package domain

import (
	"time"
)

// StatusType is the lifecycle state of a status record.
// current -> history happens when a new submission supersedes the record or
// an admin resolves the thread; current -> deleted when the owner deletes it.
// Both are one-directional. Physical removal ("purged") happens only via the
// retention sweep once RetentionUntil has elapsed.
type StatusType string

const (
	StatusTypeCurrent StatusType = "current"
	StatusTypeHistory StatusType = "history"
	StatusTypeDeleted StatusType = "deleted"
)

// Condition is the resident's self-reported condition.
type Condition string

const (
	ConditionSafe      Condition = "safe"
	ConditionEvacuated Condition = "evacuated"
	ConditionAffected  Condition = "affected"
	ConditionMissing   Condition = "missing"
)

// ValidCondition reports whether c is one of the four allowed values.
func ValidCondition(c Condition) bool {
	switch c {
	case ConditionSafe, ConditionEvacuated, ConditionAffected, ConditionMissing:
		return true
	}
	return false
}

// Hazard categories a status can be tagged with (multi-valued).
var HazardCategories = map[string]bool{
	"flood":             true,
	"earthquake":        true,
	"fire":              true,
	"typhoon":           true,
	"landslide":         true,
	"storm":             true,
	"accident":          true,
	"informational":     true,
	"extreme-heat":      true,
	"tsunami":           true,
	"medical-emergency": true,
	"other":             true,
}

// ValidCategories reports whether every tag is a known hazard category.
func ValidCategories(tags []string) bool {
	for _, t := range tags {
		if !HazardCategories[t] {
			return false
		}
	}
	return true
}

// Allowed expiration durations (hours) a caller may choose.
const (
	ExpirationShortHours = 12
	ExpirationLongHours  = 24
)

// RetentionPeriod is how long any record is kept after creation before it is
// eligible for permanent deletion by the sweep. Always strictly exceeds the
// 12/24h active window.
const RetentionPeriod = 30 * 24 * time.Hour

// ValidExpirationHours reports whether h is an allowed TTL choice.
func ValidExpirationHours(h int) bool {
	return h == ExpirationShortHours || h == ExpirationLongHours
}

// StatusRecord is one status submission (one version). ParentID groups every
// version of a resident's ongoing status thread; VersionID is unique per
// submission.
type StatusRecord struct {
	ParentID  string     `json:"parentId" db:"parent_id"`
	VersionID string     `json:"versionId" db:"version_id"`
	UID       string     `json:"uid" db:"uid"`
	Type      StatusType `json:"statusType" db:"status_type"`
	Condition Condition  `json:"condition" db:"condition"`

	// Location fields, privacy-gated by ShareLocation.
	Lat          *float64 `json:"lat" db:"lat"`
	Lng          *float64 `json:"lng" db:"lng"`
	LocationName *string  `json:"location" db:"location_name"`

	ShareLocation bool `json:"shareLocation" db:"share_location"`
	ShareContact  bool `json:"shareContact" db:"share_contact"`

	// Contact field, privacy-gated by ShareContact.
	PhoneNumber *string `json:"phoneNumber" db:"phone_number"`

	Description string   `json:"description" db:"description"`
	Categories  []string `json:"category" db:"categories"`
	People      int      `json:"people" db:"people"`

	// Opaque URL produced by the external upload path.
	Image *string `json:"image" db:"image"`

	ExpirationHours int       `json:"expirationDuration" db:"expiration_hours"`
	ExpiresAt       time.Time `json:"expiresAt" db:"expires_at"`
	RetentionUntil  time.Time `json:"retentionUntil" db:"retention_until"`

	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty" db:"resolved_at"`
}

// IsActive reports whether the record's active window still covers now.
// Evaluated lazily on every read path: an expired-but-not-yet-swept record
// must never be presented as active, whether or not the sweep has run.
func (s *StatusRecord) IsActive(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// IsRetained reports whether the record is still inside its retention window.
func (s *StatusRecord) IsRetained(now time.Time) bool {
	return now.Before(s.RetentionUntil)
}

// StampLifecycle computes ExpiresAt and RetentionUntil from the server clock.
// Client-supplied timestamps are never trusted.
func (s *StatusRecord) StampLifecycle(now time.Time) {
	s.CreatedAt = now
	s.ExpiresAt = now.Add(time.Duration(s.ExpirationHours) * time.Hour)
	s.RetentionUntil = now.Add(RetentionPeriod)
}

// ApplyPrivacy clears whatever the share flags do not permit, regardless of
// what the caller sent.
func (s *StatusRecord) ApplyPrivacy() {
	if !s.ShareLocation {
		s.Lat = nil
		s.Lng = nil
		s.LocationName = nil
	}
	if !s.ShareContact {
		s.PhoneNumber = nil
	}
}

// VersionHistoryItem is the read-optimized projection of a StatusRecord used
// by the version-history query path. Always derived, never written directly.
type VersionHistoryItem struct {
	ParentID   string     `json:"parentId"`
	VersionID  string     `json:"versionId"`
	Type       StatusType `json:"statusType"`
	Condition  Condition  `json:"condition"`
	Categories []string   `json:"category"`
	People     int        `json:"people"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// ToVersionItem projects the record onto the history view.
func (s *StatusRecord) ToVersionItem() VersionHistoryItem {
	return VersionHistoryItem{
		ParentID:   s.ParentID,
		VersionID:  s.VersionID,
		Type:       s.Type,
		Condition:  s.Condition,
		Categories: s.Categories,
		People:     s.People,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
		ResolvedAt: s.ResolvedAt,
		DeletedAt:  s.DeletedAt,
	}
}
