package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k25dtcn010/project-base/internal/models"
)

func newShiftRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestShiftRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "start_time", "end_time", "description", "is_active", "created_at", "updated_at"}).
		AddRow("s1", "Ca sáng", "06:00", "14:00", nil, true, time.Now(), time.Now()).
		AddRow("s2", "Ca hành chính", "09:00", "18:00", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, start_time, end_time, description, is_active, created_at, updated_at FROM shifts WHERE is_active = TRUE ORDER BY start_time ASC")).
		WillReturnRows(rows)

	shifts, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "Ca sáng", shifts[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryExistsActiveByName(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM shifts WHERE name = $1 AND is_active = TRUE LIMIT 1")).
		WithArgs("Ca sáng").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsActiveByName(context.Background(), "Ca sáng", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM shifts WHERE name = $1 AND is_active = TRUE AND id <> $2 LIMIT 1")).
		WithArgs("Ca sáng", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsActiveByName(context.Background(), "Ca sáng", "s1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepositoryCreateAndToggle(t *testing.T) {
	db, mock, cleanup := newShiftRepoMock(t)
	defer cleanup()
	repo := NewShiftRepository(db)

	mock.ExpectExec("INSERT INTO shifts").
		WithArgs(sqlmock.AnyArg(), "Ca đêm", "22:00", "06:00", sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	shift := &models.Shift{Name: "Ca đêm", StartTime: "22:00", EndTime: "06:00", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), shift))
	assert.NotEmpty(t, shift.ID)

	mock.ExpectExec("UPDATE shifts SET is_active").
		WithArgs("s1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SetActive(context.Background(), "s1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
