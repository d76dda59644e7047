package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// PostgresStatusRepository is the production StatusRepository (statuses table).
type PostgresStatusRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStatusRepository(db *sql.DB, logger *zap.Logger) *PostgresStatusRepository {
	return &PostgresStatusRepository{db: db, logger: logger}
}

var _ StatusRepository = (*PostgresStatusRepository)(nil)

const statusColumns = `version_id, parent_id, uid, status_type, condition,
	lat, lng, location_name, share_location, share_contact, phone_number,
	description, categories, people, image,
	expiration_hours, expires_at, retention_until,
	created_at, updated_at, deleted_at, resolved_at`

// CreateStatus performs the supersede + insert as one transaction so a race
// between two submissions can never leave two current rows. A partial index
// on (uid) WHERE status_type='current' backs the same invariant in the schema.
func (r *PostgresStatusRepository) CreateStatus(ctx context.Context, rec *domain.StatusRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin supersede tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Retype the existing current record, if any, and inherit its thread.
	row := tx.QueryRowContext(ctx,
		`UPDATE statuses
		 SET status_type = 'history', updated_at = $2
		 WHERE uid = $1 AND status_type = 'current'
		 RETURNING parent_id`,
		rec.UID, rec.CreatedAt,
	)
	var parentID string
	switch err := row.Scan(&parentID); {
	case err == sql.ErrNoRows:
		// No open thread: the caller-generated parent id starts one.
	case err != nil:
		return fmt.Errorf("supersede current status: %w", err)
	default:
		rec.ParentID = parentID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO statuses (
			version_id, parent_id, uid, status_type, condition,
			lat, lng, location_name, share_location, share_contact, phone_number,
			description, categories, people, image,
			expiration_hours, expires_at, retention_until, created_at
		) VALUES ($1, $2, $3, 'current', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rec.VersionID, rec.ParentID, rec.UID, rec.Condition,
		rec.Lat, rec.Lng, rec.LocationName, rec.ShareLocation, rec.ShareContact, rec.PhoneNumber,
		rec.Description, pq.Array(rec.Categories), rec.People, rec.Image,
		rec.ExpirationHours, rec.ExpiresAt, rec.RetentionUntil, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit supersede tx: %w", err)
	}
	rec.Type = domain.StatusTypeCurrent
	return nil
}

func (r *PostgresStatusRepository) GetCurrent(ctx context.Context, uid string) (*domain.StatusRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE uid = $1 AND status_type = 'current'`,
		uid,
	)
	rec, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get current status: %w", err)
	}
	return rec, nil
}

func (r *PostgresStatusRepository) DeleteCurrent(ctx context.Context, uid string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE statuses
		 SET status_type = 'deleted', deleted_at = NOW(), updated_at = NOW()
		 WHERE uid = $1 AND status_type = 'current'`,
		uid,
	)
	if err != nil {
		return fmt.Errorf("delete current status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStatusRepository) ResolveCurrent(ctx context.Context, parentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE statuses
		 SET status_type = 'history', resolved_at = NOW(), updated_at = NOW()
		 WHERE parent_id = $1 AND status_type = 'current'`,
		parentID,
	)
	if err != nil {
		return fmt.Errorf("resolve status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStatusRepository) ListVersions(ctx context.Context, uid, parentID string) ([]*domain.StatusRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE uid = $1 AND parent_id = $2
		 ORDER BY created_at DESC`,
		uid, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list status versions: %w", err)
	}
	defer rows.Close()

	out := []*domain.StatusRecord{}
	for rows.Next() {
		rec, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status version: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresStatusRepository) ListLatest(ctx context.Context, now time.Time) ([]*domain.StatusRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE status_type = 'current' AND expires_at > $1
		 ORDER BY created_at DESC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list latest statuses: %w", err)
	}
	defer rows.Close()

	out := []*domain.StatusRecord{}
	for rows.Next() {
		rec, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest status: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PurgeExpired removes only history/deleted rows. A current row past its
// retention window would mean a thread left open for 30 days; it is logged
// and left for the supersede/delete paths to close first.
func (r *PostgresStatusRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM statuses
		 WHERE retention_until <= $1 AND status_type IN ('history', 'deleted')`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("purge statuses: %w", err)
	}
	n, _ := res.RowsAffected()

	var stale int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM statuses WHERE retention_until <= $1 AND status_type = 'current'`,
		now,
	).Scan(&stale); err == nil && stale > 0 {
		r.logger.Warn("current statuses past retention window, skipping purge",
			zap.Int("count", stale),
		)
	}
	return n, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*domain.StatusRecord, error) {
	rec := &domain.StatusRecord{}
	var categories pq.StringArray
	err := row.Scan(
		&rec.VersionID, &rec.ParentID, &rec.UID, &rec.Type, &rec.Condition,
		&rec.Lat, &rec.Lng, &rec.LocationName, &rec.ShareLocation, &rec.ShareContact, &rec.PhoneNumber,
		&rec.Description, &categories, &rec.People, &rec.Image,
		&rec.ExpirationHours, &rec.ExpiresAt, &rec.RetentionUntil,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt, &rec.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Categories = []string(categories)
	return rec, nil
}
