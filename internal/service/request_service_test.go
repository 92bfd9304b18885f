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

type mockRequestRepo struct {
	requests map[string]models.AttendanceRequest
	updated  *models.AttendanceRequest
	created  *models.AttendanceRequest
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*models.AttendanceRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) FindDetailByID(ctx context.Context, id string) (*models.AttendanceRequestDetail, error) {
	if r, ok := m.requests[id]; ok {
		return &models.AttendanceRequestDetail{AttendanceRequest: r}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) ListPending(ctx context.Context) ([]models.AttendanceRequestDetail, error) {
	var list []models.AttendanceRequestDetail
	for _, r := range m.requests {
		if r.Status == models.RequestStatusPending {
			list = append(list, models.AttendanceRequestDetail{AttendanceRequest: r})
		}
	}
	return list, nil
}

func (m *mockRequestRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRequestDetail, error) {
	return nil, nil
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.AttendanceRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.AttendanceRequest)
	}
	request.ID = "req-new"
	m.requests[request.ID] = *request
	m.created = request
	return nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, request *models.AttendanceRequest) error {
	m.requests[request.ID] = *request
	m.updated = request
	return nil
}

type mockScheduleCreator struct {
	created *models.ShiftSchedule
}

func (m *mockScheduleCreator) Create(ctx context.Context, schedule *models.ShiftSchedule) error {
	schedule.ID = "sched-new"
	m.created = schedule
	return nil
}

type mockSegmentApprover struct {
	approvedCount int
	employeeID    string
	shiftID       string
	workDate      time.Time
	managerID     string
}

func (m *mockSegmentApprover) ApproveMatchingShifts(ctx context.Context, employeeID, shiftID string, workDate time.Time, managerID string) (int, error) {
	m.employeeID = employeeID
	m.shiftID = shiftID
	m.workDate = workDate
	m.managerID = managerID
	return m.approvedCount, nil
}

type mockShiftReader struct {
	shifts map[string]*models.Shift
}

func (m *mockShiftReader) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func requestServiceFixture(repo *mockRequestRepo, schedules *mockScheduleCreator, segments *mockSegmentApprover) *RequestService {
	shifts := &mockShiftReader{shifts: map[string]*models.Shift{
		"shift-1": {ID: "shift-1", Name: "Ca hành chính", StartTime: "09:00", EndTime: "18:00", IsActive: true},
	}}
	return NewRequestService(repo, schedules, segments, shifts, activeEmployees(), validator.New(), zap.NewNop())
}

func pendingRequestFixture() models.AttendanceRequest {
	return models.AttendanceRequest{
		ID:            "req-1",
		EmployeeID:    "emp-1",
		ShiftID:       "shift-1",
		RequestedDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		FromTime:      time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		ToTime:        time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
		Reason:        "Làm bù ca",
		Status:        models.RequestStatusPending,
	}
}

func TestRequestServiceCreate(t *testing.T) {
	repo := &mockRequestRepo{}
	svc := requestServiceFixture(repo, &mockScheduleCreator{}, &mockSegmentApprover{})

	request, err := svc.Create(context.Background(), CreateRequestRequest{
		EmployeeID:    "emp-1",
		ShiftID:       "shift-1",
		RequestedDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		FromTime:      time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		ToTime:        time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
		Reason:        "Làm bù ca",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.NotNil(t, repo.created)
}

func TestRequestServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc := requestServiceFixture(&mockRequestRepo{}, &mockScheduleCreator{}, &mockSegmentApprover{})

	_, err := svc.Create(context.Background(), CreateRequestRequest{
		EmployeeID:    "emp-1",
		ShiftID:       "shift-1",
		RequestedDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		FromTime:      time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
		ToTime:        time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Reason:        "Làm bù ca",
	})
	require.Error(t, err)
}

func TestRequestServiceApprove(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.AttendanceRequest{"req-1": pendingRequestFixture()}}
	schedules := &mockScheduleCreator{}
	segments := &mockSegmentApprover{approvedCount: 2}
	svc := requestServiceFixture(repo, schedules, segments)

	result, err := svc.Approve(context.Background(), "req-1", "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, result.Request.Status)
	assert.Equal(t, 2, result.SegmentsApproved)

	require.NotNil(t, schedules.created)
	assert.Equal(t, "emp-1", schedules.created.EmployeeID)
	assert.Equal(t, "shift-1", schedules.created.ShiftID)
	assert.Equal(t, schedules.created.ScheduledFromDate, schedules.created.ScheduledToDate)
	assert.Equal(t, "mgr-1", schedules.created.CreatedBy)

	assert.Equal(t, "emp-1", segments.employeeID)
	assert.Equal(t, "shift-1", segments.shiftID)
	assert.Equal(t, "mgr-1", segments.managerID)
}

func TestRequestServiceApproveRejectsProcessedRequest(t *testing.T) {
	processed := pendingRequestFixture()
	processed.Status = models.RequestStatusApproved
	repo := &mockRequestRepo{requests: map[string]models.AttendanceRequest{"req-1": processed}}
	schedules := &mockScheduleCreator{}
	svc := requestServiceFixture(repo, schedules, &mockSegmentApprover{})

	_, err := svc.Approve(context.Background(), "req-1", "mgr-1")
	require.Error(t, err)
	assert.Nil(t, schedules.created)
}

func TestRequestServiceReject(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.AttendanceRequest{"req-1": pendingRequestFixture()}}
	svc := requestServiceFixture(repo, &mockScheduleCreator{}, &mockSegmentApprover{})

	request, err := svc.Reject(context.Background(), "req-1", "mgr-1", "Không có lịch làm việc")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, request.Status)
	require.NotNil(t, request.RejectionReason)
	assert.Equal(t, "Không có lịch làm việc", *request.RejectionReason)
}
