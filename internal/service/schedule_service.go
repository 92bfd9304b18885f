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

type scheduleRepository interface {
	List(ctx context.Context, filter models.ShiftScheduleFilter) ([]models.ShiftScheduleDetail, error)
	FindByID(ctx context.Context, id string) (*models.ShiftSchedule, error)
	FindDetailByID(ctx context.Context, id string) (*models.ShiftScheduleDetail, error)
	ListByEmployee(ctx context.Context, employeeID string, startDate, endDate *time.Time) ([]models.ShiftScheduleDetail, error)
	Create(ctx context.Context, schedule *models.ShiftSchedule) error
	Update(ctx context.Context, schedule *models.ShiftSchedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleShiftRepository interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
}

type scheduleEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// CreateScheduleRequest assigns an employee to a shift over a date range.
type CreateScheduleRequest struct {
	EmployeeID        string    `json:"employee_id" validate:"required"`
	ShiftID           string    `json:"shift_id" validate:"required"`
	ScheduledFromDate time.Time `json:"scheduled_from_date" validate:"required"`
	ScheduledToDate   time.Time `json:"scheduled_to_date" validate:"required"`
	Note              *string   `json:"note"`
	CreatedBy         string    `json:"created_by" validate:"required"`
}

// UpdateScheduleRequest updates mutable fields on a schedule.
type UpdateScheduleRequest struct {
	ShiftID           string    `json:"shift_id" validate:"required"`
	ScheduledFromDate time.Time `json:"scheduled_from_date" validate:"required"`
	ScheduledToDate   time.Time `json:"scheduled_to_date" validate:"required"`
	Note              *string   `json:"note"`
}

// ScheduleService manages planned shift assignments.
type ScheduleService struct {
	repo         scheduleRepository
	shiftRepo    scheduleShiftRepository
	employeeRepo scheduleEmployeeRepository
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewScheduleService creates a new schedule service instance.
func NewScheduleService(repo scheduleRepository, shiftRepo scheduleShiftRepository, employeeRepo scheduleEmployeeRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, shiftRepo: shiftRepo, employeeRepo: employeeRepo, validator: validate, logger: logger}
}

// List returns schedules intersecting the filter's window.
func (s *ScheduleService) List(ctx context.Context, filter models.ShiftScheduleFilter) ([]models.ShiftScheduleDetail, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, nil
}

// Get returns a schedule by ID with shift and employee metadata.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ShiftScheduleDetail, error) {
	schedule, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// ListByEmployee returns an employee's schedules within an optional window.
func (s *ScheduleService) ListByEmployee(ctx context.Context, employeeID string, startDate, endDate *time.Time) ([]models.ShiftScheduleDetail, error) {
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	schedules, err := s.repo.ListByEmployee(ctx, employeeID, startDate, endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employee schedules")
	}
	return schedules, nil
}

// Create assigns an employee to a shift over a date range.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ShiftSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.ScheduledToDate.Before(req.ScheduledFromDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_to_date must not precede scheduled_from_date")
	}

	if _, err := s.employeeRepo.FindByID(ctx, req.EmployeeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	shift, err := s.shiftRepo.FindByID(ctx, req.ShiftID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	if !shift.IsActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "shift is inactive")
	}

	schedule := &models.ShiftSchedule{
		EmployeeID:        req.EmployeeID,
		ShiftID:           req.ShiftID,
		ScheduledFromDate: req.ScheduledFromDate,
		ScheduledToDate:   req.ScheduledToDate,
		Note:              req.Note,
		CreatedBy:         req.CreatedBy,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}

	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("employee_id", schedule.EmployeeID),
		zap.String("shift_id", schedule.ShiftID))
	return schedule, nil
}

// Update modifies an existing schedule.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ShiftSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.ScheduledToDate.Before(req.ScheduledFromDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_to_date must not precede scheduled_from_date")
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	if _, err := s.shiftRepo.FindByID(ctx, req.ShiftID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}

	schedule.ShiftID = req.ShiftID
	schedule.ScheduledFromDate = req.ScheduledFromDate
	schedule.ScheduledToDate = req.ScheduledToDate
	schedule.Note = req.Note
	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}

	s.logger.Info("schedule updated", zap.String("schedule_id", schedule.ID))
	return schedule, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}

	s.logger.Info("schedule deleted", zap.String("schedule_id", id))
	return nil
}
