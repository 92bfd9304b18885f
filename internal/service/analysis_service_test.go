package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/analyzer"
	"github.com/k25dtcn010/project-base/internal/models"
)

var hcm = time.FixedZone("ICT", 7*3600)

type mockAnalysisAttendanceRepo struct {
	mu          sync.Mutex
	attendances map[string]models.Attendance
	replaced    map[string][]models.AttendanceShift
	analyzable  []string
}

func (m *mockAnalysisAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if a, ok := m.attendances[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnalysisAttendanceRepo) ReplaceShifts(ctx context.Context, attendanceID string, shifts []models.AttendanceShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaced == nil {
		m.replaced = make(map[string][]models.AttendanceShift)
	}
	m.replaced[attendanceID] = shifts
	return nil
}

func (m *mockAnalysisAttendanceRepo) ListAnalyzableIDs(ctx context.Context) ([]string, error) {
	return m.analyzable, nil
}

type mockShiftProvider struct {
	shifts []models.Shift
}

func (m *mockShiftProvider) ActiveShifts(ctx context.Context) ([]models.Shift, error) {
	return m.shifts, nil
}

func officeShiftFixture() models.Shift {
	return models.Shift{ID: "shift-office", Name: "Ca hành chính", StartTime: "09:00", EndTime: "18:00", IsActive: true}
}

func attendanceFixture(id string, checkIn time.Time, checkOut *time.Time) models.Attendance {
	return models.Attendance{ID: id, EmployeeID: "emp-1", CheckInTime: checkIn, CheckOutTime: checkOut}
}

func TestAnalysisServiceAnalyzePersistsSegments(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	checkOut := time.Date(2024, 3, 4, 17, 40, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": attendanceFixture("att-1", checkIn, &checkOut),
	}}
	shifts := &mockShiftProvider{shifts: []models.Shift{officeShiftFixture()}}
	svc := NewAnalysisService(repo, shifts, hcm, zap.NewNop(), nil)

	result, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Equal(t, analyzer.OutcomeAnalyzed, result.Outcome)
	require.Len(t, result.Segments, 1)

	seg := result.Segments[0]
	assert.Equal(t, "att-1", seg.AttendanceID)
	assert.Equal(t, "shift-office", seg.ShiftID)
	assert.Equal(t, 520, seg.DurationMinutes)
	assert.Equal(t, 0, seg.LateMinutes)
	assert.Equal(t, 20, seg.EarlyLeaveMinutes)
	assert.Equal(t, models.ShiftTypePrimary, seg.ShiftType)
	assert.Equal(t, result.Segments, repo.replaced["att-1"])
}

func TestAnalysisServiceAnalyzeSkipsOpenAttendance(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{attendances: map[string]models.Attendance{
		"att-open": attendanceFixture("att-open", checkIn, nil),
	}}
	shifts := &mockShiftProvider{shifts: []models.Shift{officeShiftFixture()}}
	svc := NewAnalysisService(repo, shifts, hcm, zap.NewNop(), nil)

	result, err := svc.Analyze(context.Background(), "att-open")
	require.NoError(t, err)
	assert.Equal(t, analyzer.OutcomeNoCheckOut, result.Outcome)
	assert.Empty(t, result.Segments)
	assert.Empty(t, repo.replaced)
}

func TestAnalysisServiceAnalyzeSkipsEmptyCatalog(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	checkOut := time.Date(2024, 3, 4, 17, 40, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": attendanceFixture("att-1", checkIn, &checkOut),
	}}
	svc := NewAnalysisService(repo, &mockShiftProvider{}, hcm, zap.NewNop(), nil)

	result, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Equal(t, analyzer.OutcomeNoActiveShifts, result.Outcome)
	assert.Empty(t, repo.replaced["att-1"])
}

func TestAnalysisServiceAnalyzeClearsSegmentsWhenCatalogEmptied(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	checkOut := time.Date(2024, 3, 4, 17, 40, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": attendanceFixture("att-1", checkIn, &checkOut),
	}}
	shifts := &mockShiftProvider{shifts: []models.Shift{officeShiftFixture()}}
	svc := NewAnalysisService(repo, shifts, hcm, zap.NewNop(), nil)

	first, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)
	require.Len(t, first.Segments, 1)
	require.Len(t, repo.replaced["att-1"], 1)

	shifts.shifts = nil
	second, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Equal(t, analyzer.OutcomeNoActiveShifts, second.Outcome)
	assert.Contains(t, repo.replaced, "att-1")
	assert.Empty(t, repo.replaced["att-1"])
}

func TestAnalysisServiceAnalyzeNotFound(t *testing.T) {
	svc := NewAnalysisService(&mockAnalysisAttendanceRepo{}, &mockShiftProvider{}, hcm, zap.NewNop(), nil)

	_, err := svc.Analyze(context.Background(), "missing")
	require.Error(t, err)
}

func TestAnalysisServiceAnalyzeReplacesPriorSegments(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	checkOut := time.Date(2024, 3, 4, 17, 40, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{attendances: map[string]models.Attendance{
		"att-1": attendanceFixture("att-1", checkIn, &checkOut),
	}}
	shifts := &mockShiftProvider{shifts: []models.Shift{officeShiftFixture()}}
	svc := NewAnalysisService(repo, shifts, hcm, zap.NewNop(), nil)

	first, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "att-1")
	require.NoError(t, err)

	assert.Equal(t, len(first.Segments), len(second.Segments))
	assert.Equal(t, second.Segments, repo.replaced["att-1"])
}

func TestAnalysisServiceReanalyzeAll(t *testing.T) {
	checkIn := time.Date(2024, 3, 4, 8, 50, 0, 0, hcm)
	checkOut := time.Date(2024, 3, 4, 17, 40, 0, 0, hcm)
	repo := &mockAnalysisAttendanceRepo{
		attendances: map[string]models.Attendance{
			"att-1": attendanceFixture("att-1", checkIn, &checkOut),
			"att-2": attendanceFixture("att-2", checkIn, nil),
		},
		analyzable: []string{"att-1", "att-2", "att-missing"},
	}
	shifts := &mockShiftProvider{shifts: []models.Shift{officeShiftFixture()}}
	svc := NewAnalysisService(repo, shifts, hcm, zap.NewNop(), nil)
	svc.ConfigureWorkers(2, 1, time.Millisecond)

	summary, err := svc.ReanalyzeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Analyzed)
	assert.Equal(t, 1, summary.SkippedNoCheckOut)
	assert.Equal(t, 1, summary.Failed)
}
