package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
)

type mockAttendanceRepo struct {
	attendances map[string]models.Attendance
	openToday   *models.Attendance
	latestOpen  *models.Attendance
	created     *models.Attendance
	updated     *models.Attendance
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if a, ok := m.attendances[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindDetailByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	if a, ok := m.attendances[id]; ok {
		return &models.AttendanceDetail{Attendance: a, EmployeeCode: "NV001", EmployeeName: "Nguyen Van A"}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindOpenToday(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (*models.Attendance, error) {
	if m.openToday != nil {
		return m.openToday, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) FindLatestOpen(ctx context.Context, employeeID string) (*models.Attendance, error) {
	if m.latestOpen != nil {
		return m.latestOpen, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	attendance.ID = "att-new"
	m.created = attendance
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, attendance *models.Attendance) error {
	m.updated = attendance
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return nil, 0, nil
}

func (m *mockAttendanceRepo) ListShifts(ctx context.Context, attendanceID string) ([]models.AttendanceShiftDetail, error) {
	return nil, nil
}

type mockEmployeeReader struct {
	employees map[string]*models.Employee
}

func (m *mockEmployeeReader) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type mockAttendanceAnalyzer struct {
	analyzed []string
}

func (m *mockAttendanceAnalyzer) Analyze(ctx context.Context, attendanceID string) (*AnalysisResult, error) {
	m.analyzed = append(m.analyzed, attendanceID)
	return &AnalysisResult{AttendanceID: attendanceID}, nil
}

func activeEmployees() *mockEmployeeReader {
	return &mockEmployeeReader{employees: map[string]*models.Employee{
		"emp-1": {ID: "emp-1", EmployeeCode: "NV001", FullName: "Nguyen Van A", Active: true},
	}}
}

func TestAttendanceServiceCheckIn(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, activeEmployees(), nil, hcm, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 8, 50, 0, 0, hcm) }

	attendance, err := svc.CheckIn(context.Background(), CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, "att-new", attendance.ID)
	assert.Nil(t, attendance.CheckOutTime)
	assert.Equal(t, 8, attendance.CheckInTime.Hour())
}

func TestAttendanceServiceCheckInRejectsSameDayOpen(t *testing.T) {
	repo := &mockAttendanceRepo{openToday: &models.Attendance{ID: "att-open"}}
	svc := NewAttendanceService(repo, activeEmployees(), nil, hcm, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 8, 50, 0, 0, hcm) }

	_, err := svc.CheckIn(context.Background(), CheckInRequest{EmployeeID: "emp-1"})
	require.Error(t, err)
	assert.Nil(t, repo.created)
}

func TestAttendanceServiceCheckInRejectsInactiveEmployee(t *testing.T) {
	employees := &mockEmployeeReader{employees: map[string]*models.Employee{
		"emp-2": {ID: "emp-2", Active: false},
	}}
	svc := NewAttendanceService(&mockAttendanceRepo{}, employees, nil, hcm, validator.New(), zap.NewNop())

	_, err := svc.CheckIn(context.Background(), CheckInRequest{EmployeeID: "emp-2"})
	require.Error(t, err)
}

func TestAttendanceServiceCheckOutTriggersAnalysis(t *testing.T) {
	open := &models.Attendance{ID: "att-1", EmployeeID: "emp-1", CheckInTime: time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)}
	repo := &mockAttendanceRepo{latestOpen: open}
	analysis := &mockAttendanceAnalyzer{}
	svc := NewAttendanceService(repo, activeEmployees(), analysis, hcm, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 17, 40, 0, 0, hcm) }

	attendance, err := svc.CheckOut(context.Background(), CheckOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.NotNil(t, attendance.CheckOutTime)
	assert.Equal(t, 17, attendance.CheckOutTime.Hour())
	assert.Equal(t, []string{"att-1"}, analysis.analyzed)
	assert.NotNil(t, repo.updated)
}

func TestAttendanceServiceCheckOutWithoutOpenAttendance(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, activeEmployees(), nil, hcm, validator.New(), zap.NewNop())

	_, err := svc.CheckOut(context.Background(), CheckOutRequest{EmployeeID: "emp-1"})
	require.Error(t, err)
}

func TestAttendanceServiceConfirmCheckOut(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	repo := &mockAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": {ID: "att-1", EmployeeID: "emp-1", CheckInTime: checkIn, IsMissingCheckOut: true},
	}}
	analysis := &mockAttendanceAnalyzer{}
	svc := NewAttendanceService(repo, activeEmployees(), analysis, hcm, validator.New(), zap.NewNop())

	attendance, err := svc.ConfirmCheckOut(context.Background(), ConfirmCheckOutRequest{
		AttendanceID: "att-1",
		CheckOutTime: time.Date(2024, 3, 4, 18, 0, 0, 0, hcm),
		ManagerID:    "mgr-1",
	})
	require.NoError(t, err)
	require.NotNil(t, attendance.CheckOutTime)
	assert.False(t, attendance.IsMissingCheckOut)
	require.NotNil(t, attendance.ManagerConfirmedBy)
	assert.Equal(t, "mgr-1", *attendance.ManagerConfirmedBy)
	assert.Equal(t, []string{"att-1"}, analysis.analyzed)
}

func TestAttendanceServiceConfirmCheckOutRejectsClosedAttendance(t *testing.T) {
	checkOut := time.Date(2024, 3, 4, 18, 0, 0, 0, hcm)
	repo := &mockAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": {ID: "att-1", CheckInTime: time.Date(2024, 3, 4, 8, 50, 0, 0, hcm), CheckOutTime: &checkOut},
	}}
	svc := NewAttendanceService(repo, activeEmployees(), nil, hcm, validator.New(), zap.NewNop())

	_, err := svc.ConfirmCheckOut(context.Background(), ConfirmCheckOutRequest{
		AttendanceID: "att-1",
		CheckOutTime: time.Date(2024, 3, 4, 19, 0, 0, 0, hcm),
		ManagerID:    "mgr-1",
	})
	require.Error(t, err)
}

func TestAttendanceServiceConfirmCheckOutRejectsInvertedInterval(t *testing.T) {
	repo := &mockAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": {ID: "att-1", CheckInTime: time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)},
	}}
	svc := NewAttendanceService(repo, activeEmployees(), nil, hcm, validator.New(), zap.NewNop())

	_, err := svc.ConfirmCheckOut(context.Background(), ConfirmCheckOutRequest{
		AttendanceID: "att-1",
		CheckOutTime: time.Date(2024, 3, 4, 8, 0, 0, 0, hcm),
		ManagerID:    "mgr-1",
	})
	require.Error(t, err)
}
