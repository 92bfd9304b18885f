package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
)

type attendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	FindDetailByID(ctx context.Context, id string) (*models.AttendanceDetail, error)
	FindOpenToday(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (*models.Attendance, error)
	FindLatestOpen(ctx context.Context, employeeID string) (*models.Attendance, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	Update(ctx context.Context, attendance *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	ListShifts(ctx context.Context, attendanceID string) ([]models.AttendanceShiftDetail, error)
}

type attendanceEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type attendanceAnalyzer interface {
	Analyze(ctx context.Context, attendanceID string) (*AnalysisResult, error)
}

// CheckInRequest opens an attendance for an employee.
type CheckInRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Location   *string `json:"location"`
	Note       *string `json:"note"`
}

// CheckOutRequest closes the employee's open attendance.
type CheckOutRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
}

// ConfirmCheckOutRequest lets a manager close an attendance whose check-out
// was never recorded.
type ConfirmCheckOutRequest struct {
	AttendanceID string    `json:"attendance_id" validate:"required"`
	CheckOutTime time.Time `json:"check_out_time" validate:"required"`
	ManagerID    string    `json:"manager_id" validate:"required"`
}

// AttendanceService handles the check-in/check-out workflow. Closing an
// attendance triggers segment analysis; an analysis failure is logged but
// never blocks the check-out itself.
type AttendanceService struct {
	repo         attendanceRepository
	employeeRepo attendanceEmployeeRepository
	analysis     attendanceAnalyzer
	loc          *time.Location
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewAttendanceService creates a new attendance service instance.
func NewAttendanceService(repo attendanceRepository, employeeRepo attendanceEmployeeRepository, analysis attendanceAnalyzer, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:         repo,
		employeeRepo: employeeRepo,
		analysis:     analysis,
		loc:          loc,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// CheckIn opens a new attendance. An employee with an open attendance from
// the same local day cannot check in again.
func (s *AttendanceService) CheckIn(ctx context.Context, req CheckInRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	employee, err := s.employeeRepo.FindByID(ctx, req.EmployeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if !employee.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "employee is inactive")
	}

	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	if _, err := s.repo.FindOpenToday(ctx, req.EmployeeID, dayStart, dayEnd); err == nil {
		return nil, appErrors.ErrAlreadyCheckedIn
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check open attendance")
	}

	attendance := &models.Attendance{
		EmployeeID:  req.EmployeeID,
		CheckInTime: now,
		Location:    req.Location,
		Note:        req.Note,
	}
	if err := s.repo.Create(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}

	s.logger.Info("employee checked in",
		zap.String("attendance_id", attendance.ID),
		zap.String("employee_id", req.EmployeeID))
	return attendance, nil
}

// CheckOut closes the employee's most recent open attendance and triggers
// segment analysis on the completed interval.
func (s *AttendanceService) CheckOut(ctx context.Context, req CheckOutRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-out payload")
	}

	attendance, err := s.repo.FindLatestOpen(ctx, req.EmployeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrNoOpenAttendance
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load open attendance")
	}

	now := s.now().In(s.loc)
	attendance.CheckOutTime = &now
	attendance.IsMissingCheckOut = false
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close attendance")
	}

	s.runAnalysis(ctx, attendance.ID)

	s.logger.Info("employee checked out",
		zap.String("attendance_id", attendance.ID),
		zap.String("employee_id", req.EmployeeID))
	return attendance, nil
}

// ConfirmCheckOut records a manager-supplied check-out time on an attendance
// that was left open, then triggers analysis.
func (s *AttendanceService) ConfirmCheckOut(ctx context.Context, req ConfirmCheckOutRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}

	attendance, err := s.repo.FindByID(ctx, req.AttendanceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if attendance.CheckOutTime != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already has a check-out time")
	}

	checkOut := req.CheckOutTime.In(s.loc)
	if !checkOut.After(attendance.CheckInTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "check-out time must be after check-in time")
	}

	now := s.now().In(s.loc)
	attendance.CheckOutTime = &checkOut
	attendance.IsMissingCheckOut = false
	attendance.ManagerConfirmedBy = &req.ManagerID
	attendance.ManagerConfirmedAt = &now
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm check-out")
	}

	s.runAnalysis(ctx, attendance.ID)

	s.logger.Info("check-out confirmed by manager",
		zap.String("attendance_id", attendance.ID),
		zap.String("manager_id", req.ManagerID))
	return attendance, nil
}

// Get returns an attendance together with its reconciled segments.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.AttendanceWithShifts, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	shifts, err := s.repo.ListShifts(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance segments")
	}

	return &models.AttendanceWithShifts{AttendanceDetail: *detail, Shifts: shifts}, nil
}

// History returns an employee's paginated attendance history.
func (s *AttendanceService) History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	if filter.EmployeeID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance history")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

func (s *AttendanceService) runAnalysis(ctx context.Context, attendanceID string) {
	if s.analysis == nil {
		return
	}
	if _, err := s.analysis.Analyze(ctx, attendanceID); err != nil {
		s.logger.Error("attendance analysis failed",
			zap.String("attendance_id", attendanceID),
			zap.Error(err))
	}
}
