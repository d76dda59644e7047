package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// PostgresNotificationsRepository backs the notifications table.
type PostgresNotificationsRepository struct {
	db *sql.DB
}

func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

func (r *PostgresNotificationsRepository) Create(ctx context.Context, n *domain.NotificationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (notification_id, title, body, severity, category, read_by, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Title, n.Body, n.Severity, n.Category, pq.Array(n.ReadBy), n.CreatedAt, n.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationsRepository) Get(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT notification_id, title, body, severity, category, read_by, created_at, expires_at
		 FROM notifications WHERE notification_id = $1`,
		id,
	)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// MarkRead does the union inside a single UPDATE so two residents marking the
// same notification concurrently both land in read_by, and marking twice is
// a no-op.
func (r *PostgresNotificationsRepository) MarkRead(ctx context.Context, id, uid string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET read_by = CASE WHEN $2 = ANY(read_by) THEN read_by ELSE array_append(read_by, $2) END
		 WHERE notification_id = $1`,
		id, uid,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationsRepository) List(ctx context.Context, limit int) ([]*domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT notification_id, title, body, severity, category, read_by, created_at, expires_at
		 FROM notifications ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []*domain.NotificationRecord{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresNotificationsRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanNotification(row rowScanner) (*domain.NotificationRecord, error) {
	n := &domain.NotificationRecord{}
	var readBy pq.StringArray
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Severity, &n.Category, &readBy, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return nil, err
	}
	n.ReadBy = []string(readBy)
	return n, nil
}
