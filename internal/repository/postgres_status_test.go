package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

func setupMockStatusDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStatusRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresStatusRepository(db, zap.NewNop())
	return db, mock, repo
}

func newTestStatus(uid string) *domain.StatusRecord {
	rec := &domain.StatusRecord{
		ParentID:        uuid.New().String(),
		VersionID:       uuid.New().String(),
		UID:             uid,
		Condition:       domain.ConditionSafe,
		Categories:      []string{"flood"},
		People:          3,
		ExpirationHours: domain.ExpirationShortHours,
	}
	rec.StampLifecycle(time.Now())
	return rec
}

func TestCreateStatus_FreshThread(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	rec := newTestStatus("uid-1")
	wantParent := rec.ParentID

	mock.ExpectBegin()
	// No current row to supersede: empty result set.
	mock.ExpectQuery(`UPDATE statuses`).
		WithArgs(rec.UID, rec.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}))
	mock.ExpectExec(`INSERT INTO statuses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateStatus(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, wantParent, rec.ParentID, "fresh thread keeps the generated parent id")
	assert.Equal(t, domain.StatusTypeCurrent, rec.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStatus_SupersedesExistingCurrent(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	rec := newTestStatus("uid-1")
	existingParent := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE statuses`).
		WithArgs(rec.UID, rec.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(existingParent))
	mock.ExpectExec(`INSERT INTO statuses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateStatus(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, existingParent, rec.ParentID, "new version joins the open thread")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStatus_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	rec := newTestStatus("uid-1")

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE statuses`).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`INSERT INTO statuses`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateStatus(context.Background(), rec)

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCurrent_NotFound(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("uid-404").
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.GetCurrent(context.Background(), "uid-404")

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCurrent_NoRowIsNotFound(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE statuses`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteCurrent(context.Background(), "uid-1")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCurrent(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	parentID := uuid.New().String()
	mock.ExpectExec(`UPDATE statuses`).
		WithArgs(parentID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResolveCurrent(context.Background(), parentID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpired_SkipsCurrentRows(t *testing.T) {
	db, mock, repo := setupMockStatusDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`DELETE FROM statuses`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	n, err := repo.PurgeExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
