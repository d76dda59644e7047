package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
)

// ValidationError carries a caller-facing message; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CreateStatusRequest is the whitelisted field set accepted by CreateStatus.
// Unknown payload fields never reach the store.
type CreateStatusRequest struct {
	Condition       string   `json:"condition"`
	Description     string   `json:"description"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	LocationName    *string  `json:"location"`
	ShareLocation   bool     `json:"shareLocation"`
	ShareContact    bool     `json:"shareContact"`
	PhoneNumber     *string  `json:"phoneNumber"`
	Categories      []string `json:"category"`
	People          int      `json:"people"`
	Image           *string  `json:"image"`
	ExpirationHours int      `json:"expirationDuration"`
}

// CreateStatusResponse returns the new record's identifiers.
type CreateStatusResponse struct {
	ParentID  string `json:"parentId"`
	VersionID string `json:"versionId"`
}

// StatusService is the status lifecycle core: validation, privacy gating,
// server-side lifecycle stamping, lazy expiration on reads.
type StatusService interface {
	CreateStatus(ctx context.Context, uid string, req CreateStatusRequest) (*CreateStatusResponse, error)

	// GetStatus returns the resident's current record, or nil (no error)
	// when none exists or the current record has expired.
	GetStatus(ctx context.Context, uid string) (*domain.StatusRecord, error)

	DeleteStatus(ctx context.Context, uid string) error

	GetVersions(ctx context.Context, uid, parentID string) ([]domain.VersionHistoryItem, error)

	GetAllLatestStatuses(ctx context.Context) ([]*domain.StatusRecord, error)

	ResolveStatus(ctx context.Context, parentID string) error
}

type statusService struct {
	repo   repository.StatusRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewStatusService(repo repository.StatusRepository, logger *zap.Logger) StatusService {
	return &statusService{repo: repo, logger: logger, now: time.Now}
}

// NewStatusServiceWithClock injects the clock; lazy-expiration tests need to
// query at T0+11h and T0+13h without sleeping.
func NewStatusServiceWithClock(repo repository.StatusRepository, logger *zap.Logger, now func() time.Time) StatusService {
	return &statusService{repo: repo, logger: logger, now: now}
}

func (s *statusService) CreateStatus(ctx context.Context, uid string, req CreateStatusRequest) (*CreateStatusResponse, error) {
	if uid == "" {
		return nil, validationf("uid is required")
	}
	if !domain.ValidCondition(domain.Condition(req.Condition)) {
		return nil, validationf("condition must be one of safe, evacuated, affected, missing")
	}
	if !domain.ValidExpirationHours(req.ExpirationHours) {
		return nil, validationf("expirationDuration must be 12 or 24")
	}
	if !domain.ValidCategories(req.Categories) {
		return nil, validationf("category contains an unknown hazard tag")
	}
	if req.People < 0 {
		return nil, validationf("people must not be negative")
	}
	people := req.People
	if people == 0 {
		people = 1
	}

	rec := &domain.StatusRecord{
		ParentID:        uuid.New().String(),
		VersionID:       uuid.New().String(),
		UID:             uid,
		Condition:       domain.Condition(req.Condition),
		Description:     req.Description,
		Lat:             req.Lat,
		Lng:             req.Lng,
		LocationName:    req.LocationName,
		ShareLocation:   req.ShareLocation,
		ShareContact:    req.ShareContact,
		PhoneNumber:     req.PhoneNumber,
		Categories:      req.Categories,
		People:          people,
		Image:           req.Image,
		ExpirationHours: req.ExpirationHours,
	}
	// Lifecycle timestamps come from the server clock, never the payload.
	rec.StampLifecycle(s.now())
	rec.ApplyPrivacy()

	if err := s.repo.CreateStatus(ctx, rec); err != nil {
		s.logger.Error("create status failed", zap.String("uid", uid), zap.Error(err))
		return nil, fmt.Errorf("create status: %w", err)
	}

	s.logger.Info("status created",
		zap.String("uid", uid),
		zap.String("parent_id", rec.ParentID),
		zap.String("version_id", rec.VersionID),
		zap.String("condition", string(rec.Condition)),
	)
	return &CreateStatusResponse{ParentID: rec.ParentID, VersionID: rec.VersionID}, nil
}

func (s *statusService) GetStatus(ctx context.Context, uid string) (*domain.StatusRecord, error) {
	if uid == "" {
		return nil, validationf("uid is required")
	}
	rec, err := s.repo.GetCurrent(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	// Lazy expiration: an expired current record is absent to readers even
	// before the sweep has retired it.
	if !rec.IsActive(s.now()) {
		return nil, nil
	}
	return rec, nil
}

func (s *statusService) DeleteStatus(ctx context.Context, uid string) error {
	if uid == "" {
		return validationf("uid is required")
	}
	err := s.repo.DeleteCurrent(ctx, uid)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete status: %w", err)
	}
	return err
}

func (s *statusService) GetVersions(ctx context.Context, uid, parentID string) ([]domain.VersionHistoryItem, error) {
	if uid == "" {
		return nil, validationf("uid is required")
	}
	if parentID == "" {
		return nil, validationf("parentId is required")
	}
	records, err := s.repo.ListVersions(ctx, uid, parentID)
	if err != nil {
		return nil, fmt.Errorf("get versions: %w", err)
	}
	items := make([]domain.VersionHistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.ToVersionItem())
	}
	return items, nil
}

func (s *statusService) GetAllLatestStatuses(ctx context.Context) ([]*domain.StatusRecord, error) {
	now := s.now()
	records, err := s.repo.ListLatest(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("get latest statuses: %w", err)
	}
	// The repository already filters on expires_at; re-check here so the
	// guarantee does not rest on a single implementation.
	active := records[:0]
	for _, rec := range records {
		if rec.IsActive(now) {
			active = append(active, rec)
		}
	}
	return active, nil
}

func (s *statusService) ResolveStatus(ctx context.Context, parentID string) error {
	if parentID == "" {
		return validationf("parentId is required")
	}
	err := s.repo.ResolveCurrent(ctx, parentID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("resolve status: %w", err)
	}
	if err == nil {
		s.logger.Info("status resolved", zap.String("parent_id", parentID))
	}
	return err
}
