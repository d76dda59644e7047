package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
)

// Sweeper runs the retention sweep: history and deleted status versions (and
// expired notifications) whose retention window has passed are physically
// removed. Active current records are never touched here; expiry is handled
// lazily at read time.
type Sweeper struct {
	statusRepo repository.StatusRepository
	notifRepo  repository.NotificationsRepository
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	statusRepo repository.StatusRepository,
	notifRepo repository.NotificationsRepository,
	interval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		statusRepo: statusRepo,
		notifRepo:  notifRepo,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps once at startup and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Starting retention sweeper", zap.Duration("interval", s.interval))

	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Retention sweeper stopped")
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single purge pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := s.now()

	statuses, err := s.statusRepo.PurgeExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to purge status versions", zap.Error(err))
	}

	notifications, err := s.notifRepo.PurgeExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to purge notifications", zap.Error(err))
	}

	s.logger.Info("Retention sweep finished",
		zap.Int64("statuses_purged", statuses),
		zap.Int64("notifications_purged", notifications),
	)
}
