package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// PostgresDeviceTokensRepository backs the device_tokens table.
type PostgresDeviceTokensRepository struct {
	db *sql.DB
}

func NewPostgresDeviceTokensRepository(db *sql.DB) *PostgresDeviceTokensRepository {
	return &PostgresDeviceTokensRepository{db: db}
}

var _ DeviceTokensRepository = (*PostgresDeviceTokensRepository)(nil)

func (r *PostgresDeviceTokensRepository) Register(ctx context.Context, t *domain.DeviceToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_tokens (token, uid, platform, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (token)
		 DO UPDATE SET uid = EXCLUDED.uid, platform = EXCLUDED.platform, updated_at = EXCLUDED.updated_at`,
		t.Token, t.UID, t.Platform, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

func (r *PostgresDeviceTokensRepository) Remove(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("remove device token: %w", err)
	}
	return nil
}

func (r *PostgresDeviceTokensRepository) ListAll(ctx context.Context) ([]*domain.DeviceToken, error) {
	return r.list(ctx, `SELECT token, uid, platform, updated_at FROM device_tokens`)
}

func (r *PostgresDeviceTokensRepository) ListByUID(ctx context.Context, uid string) ([]*domain.DeviceToken, error) {
	return r.list(ctx, `SELECT token, uid, platform, updated_at FROM device_tokens WHERE uid = $1`, uid)
}

func (r *PostgresDeviceTokensRepository) list(ctx context.Context, query string, args ...any) ([]*domain.DeviceToken, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	out := []*domain.DeviceToken{}
	for rows.Next() {
		t := &domain.DeviceToken{}
		if err := rows.Scan(&t.Token, &t.UID, &t.Platform, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
