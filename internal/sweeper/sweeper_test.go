package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
)

func seedStatus(t *testing.T, repo *repository.MemoryStatusRepository, uid, versionID string, createdAt time.Time) *domain.StatusRecord {
	t.Helper()
	rec := &domain.StatusRecord{
		ParentID:  "parent-" + uid,
		VersionID: versionID,
		UID:       uid,
		Condition: domain.ConditionSafe,
		People:    1,
	}
	rec.ExpirationHours = domain.ExpirationShortHours
	rec.StampLifecycle(createdAt)
	require.NoError(t, repo.CreateStatus(context.Background(), rec))
	return rec
}

func TestSweepOnce_PurgesPastRetention(t *testing.T) {
	ctx := context.Background()
	statusRepo := repository.NewMemoryStatusRepository()
	notifRepo := repository.NewMemoryNotificationsRepository()

	now := time.Now()

	// old thread: superseded version falls out of retention
	seedStatus(t, statusRepo, "u1", "v1", now.Add(-40*24*time.Hour))
	seedStatus(t, statusRepo, "u1", "v2", now.Add(-31*24*time.Hour))
	// fresh thread stays
	seedStatus(t, statusRepo, "u2", "v3", now.Add(-time.Hour))

	expired := now.Add(-2 * time.Hour)
	require.NoError(t, notifRepo.Create(ctx, &domain.NotificationRecord{
		ID:        "n-old",
		Title:     "past advisory",
		Body:      "x",
		Severity:  domain.SeverityLow,
		CreatedAt: now.Add(-3 * time.Hour),
		ExpiresAt: &expired,
	}))
	require.NoError(t, notifRepo.Create(ctx, &domain.NotificationRecord{
		ID:        "n-live",
		Title:     "standing advisory",
		Body:      "y",
		Severity:  domain.SeverityLow,
		CreatedAt: now,
	}))

	s := New(statusRepo, notifRepo, time.Minute, zap.NewNop())
	s.SweepOnce(ctx)

	// the superseded u1 version is gone; the current u1 record survives the
	// sweep even though its retention lapsed (only read paths hide it)
	versions, err := statusRepo.ListVersions(ctx, "u1", "parent-u1")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
	assert.Equal(t, domain.StatusTypeCurrent, versions[0].Type)

	versions, err = statusRepo.ListVersions(ctx, "u2", "parent-u2")
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	remaining, err := notifRepo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "n-live", remaining[0].ID)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	statusRepo := repository.NewMemoryStatusRepository()
	notifRepo := repository.NewMemoryNotificationsRepository()

	s := New(statusRepo, notifRepo, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
