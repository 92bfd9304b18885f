package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k25dtcn010/project-base/internal/models"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRows(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "check_in_time", "check_out_time", "location", "note", "is_missing_check_out", "manager_confirmed_by", "manager_confirmed_at", "created_at", "updated_at"}).
		AddRow(id, "emp-1", time.Now(), nil, nil, nil, false, nil, nil, time.Now(), time.Now())
}

func TestAttendanceRepositoryFindLatestOpen(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, check_in_time, check_out_time, location, note, is_missing_check_out, manager_confirmed_by, manager_confirmed_at, created_at, updated_at FROM attendances WHERE employee_id = $1 AND check_out_time IS NULL ORDER BY check_in_time DESC LIMIT 1")).
		WithArgs("emp-1").
		WillReturnRows(attendanceRows("att-1"))

	attendance, err := repo.FindLatestOpen(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "att-1", attendance.ID)
	assert.Nil(t, attendance.CheckOutTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindOpenTodayNoRows(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	dayStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	mock.ExpectQuery("SELECT .+ FROM attendances WHERE employee_id").
		WithArgs("emp-1", dayStart, dayEnd).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOpenToday(context.Background(), "emp-1", dayStart, dayEnd)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "employee_id", "check_in_time", "check_out_time", "location", "note", "is_missing_check_out", "manager_confirmed_by", "manager_confirmed_at", "created_at", "updated_at", "employee_code", "employee_name", "department"}).
		AddRow("att-1", "emp-1", time.Now(), nil, nil, nil, false, nil, nil, time.Now(), time.Now(), "NV001", "Nguyen Van A", nil)
	mock.ExpectQuery("SELECT a.id, .+ FROM attendances a JOIN employees e ON e.id = a.employee_id WHERE a.employee_id = .+ ORDER BY a.check_in_time DESC LIMIT 20 OFFSET 0").
		WithArgs("emp-1", from).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM attendances a JOIN employees e`).
		WithArgs("emp-1", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{EmployeeID: "emp-1", From: &from})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceShifts(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_shifts").
		WithArgs("att-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO attendance_shifts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance_shifts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	workDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	segments := []models.AttendanceShift{
		{AttendanceID: "att-1", ShiftID: "s1", WorkDate: workDate, DurationMinutes: 480, OverlapPercentage: 88.9, ShiftType: models.ShiftTypePrimary},
		{AttendanceID: "att-1", ShiftID: "s2", WorkDate: workDate, DurationMinutes: 60, OverlapPercentage: 12.5, ShiftType: models.ShiftTypeBoundary},
	}
	require.NoError(t, repo.ReplaceShifts(context.Background(), "att-1", segments))
	assert.NotEmpty(t, segments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceShiftsRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_shifts").
		WithArgs("att-1").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.ReplaceShifts(context.Background(), "att-1", nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryApproveMatchingShifts(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	workDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE attendance_shifts SET is_approved = TRUE").
		WithArgs("emp-1", "shift-1", workDate, "mgr-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := repo.ApproveMatchingShifts(context.Background(), "emp-1", "shift-1", workDate, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
