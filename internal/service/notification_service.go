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

// CreateNotificationRequest is the admin broadcast payload.
type CreateNotificationRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	ExpiryHour int    `json:"expiryHours"`
}

// NotificationView is a notification plus the caller's read flag.
type NotificationView struct {
	domain.NotificationRecord
	Read bool `json:"read"`
}

// NotificationService handles broadcast creation, FCM fan-out, listing and
// read-tracking.
type NotificationService interface {
	Create(ctx context.Context, req CreateNotificationRequest) (*domain.NotificationRecord, error)
	List(ctx context.Context, uid string, limit int) ([]NotificationView, error)
	MarkAsRead(ctx context.Context, notificationID, uid string) error
	RegisterToken(ctx context.Context, uid, token, platform string) error
	RemoveToken(ctx context.Context, token string) error
}

type notificationService struct {
	repo   repository.NotificationsRepository
	tokens repository.DeviceTokensRepository
	sender PushSender
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationService(
	repo repository.NotificationsRepository,
	tokens repository.DeviceTokensRepository,
	sender PushSender,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:   repo,
		tokens: tokens,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

func (s *notificationService) Create(ctx context.Context, req CreateNotificationRequest) (*domain.NotificationRecord, error) {
	if req.Title == "" {
		return nil, validationf("title is required")
	}
	if req.Body == "" {
		return nil, validationf("body is required")
	}
	severity := domain.NotificationSeverity(req.Severity)
	switch severity {
	case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh:
	case "":
		severity = domain.SeverityMedium
	default:
		return nil, validationf("severity must be one of low, medium, high")
	}

	n := &domain.NotificationRecord{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Body:      req.Body,
		Severity:  severity,
		Category:  req.Category,
		ReadBy:    []string{},
		CreatedAt: s.now(),
	}
	if req.ExpiryHour > 0 {
		t := n.CreatedAt.Add(time.Duration(req.ExpiryHour) * time.Hour)
		n.ExpiresAt = &t
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.fanOut(ctx, n)
	return n, nil
}

// fanOut pushes the notification to every registered device. Delivery
// failures never fail the create; invalid tokens are pruned on the spot.
func (s *notificationService) fanOut(ctx context.Context, n *domain.NotificationRecord) {
	tokens, err := s.tokens.ListAll(ctx)
	if err != nil {
		s.logger.Error("fan-out: list tokens failed", zap.Error(err))
		return
	}

	var sent, failed, pruned int
	data := map[string]string{
		"notificationId": n.ID,
		"severity":       string(n.Severity),
		"category":       n.Category,
	}
	for _, tok := range tokens {
		err := s.sender.Send(ctx, tok.Token, n.Title, n.Body, data)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrTokenInvalid):
			if rmErr := s.tokens.Remove(ctx, tok.Token); rmErr != nil {
				s.logger.Error("fan-out: prune token failed", zap.Error(rmErr))
			} else {
				pruned++
			}
		default:
			failed++
			s.logger.Warn("fan-out: push failed",
				zap.String("uid", tok.UID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("notification fan-out done",
		zap.String("notification_id", n.ID),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("pruned_tokens", pruned),
	)
}

func (s *notificationService) List(ctx context.Context, uid string, limit int) ([]NotificationView, error) {
	if uid == "" {
		return nil, validationf("uid is required")
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	now := s.now()
	views := make([]NotificationView, 0, len(records))
	for _, n := range records {
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		views = append(views, NotificationView{NotificationRecord: *n, Read: n.ReadByUser(uid)})
	}
	return views, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, uid string) error {
	if notificationID == "" {
		return validationf("notificationId is required")
	}
	if uid == "" {
		return validationf("uid is required")
	}
	err := s.repo.MarkRead(ctx, notificationID, uid)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return err
}

func (s *notificationService) RegisterToken(ctx context.Context, uid, token, platform string) error {
	if uid == "" || token == "" {
		return validationf("uid and token are required")
	}
	t := &domain.DeviceToken{Token: token, UID: uid, Platform: platform, UpdatedAt: s.now()}
	if err := s.tokens.Register(ctx, t); err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	return nil
}

func (s *notificationService) RemoveToken(ctx context.Context, token string) error {
	if token == "" {
		return validationf("token is required")
	}
	if err := s.tokens.Remove(ctx, token); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
