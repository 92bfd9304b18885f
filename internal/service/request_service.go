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

type requestRepository interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.AttendanceRequestDetail, error)
	ListPending(ctx context.Context) ([]models.AttendanceRequestDetail, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRequestDetail, error)
	Create(ctx context.Context, request *models.AttendanceRequest) error
	UpdateStatus(ctx context.Context, request *models.AttendanceRequest) error
}

type requestScheduleCreator interface {
	Create(ctx context.Context, schedule *models.ShiftSchedule) error
}

type requestSegmentApprover interface {
	ApproveMatchingShifts(ctx context.Context, employeeID, shiftID string, workDate time.Time, managerID string) (int, error)
}

// CreateRequestRequest proposes working a shift on a given date.
type CreateRequestRequest struct {
	EmployeeID    string    `json:"employee_id" validate:"required"`
	ShiftID       string    `json:"shift_id" validate:"required"`
	RequestedDate time.Time `json:"requested_date" validate:"required"`
	FromTime      time.Time `json:"from_time" validate:"required"`
	ToTime        time.Time `json:"to_time" validate:"required"`
	Reason        string    `json:"reason" validate:"required"`
}

// ApprovalResult reports a request approval and the number of attendance
// segments auto-approved alongside it.
type ApprovalResult struct {
	Request          *models.AttendanceRequest `json:"request"`
	SegmentsApproved int                       `json:"segments_approved"`
}

// RequestService manages attendance requests. Approving a request creates a
// one-day schedule for the requested shift and auto-approves any matching
// attendance segments the employee already produced.
type RequestService struct {
	repo         requestRepository
	scheduleRepo requestScheduleCreator
	segmentRepo  requestSegmentApprover
	shiftRepo    scheduleShiftRepository
	employeeRepo scheduleEmployeeRepository
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewRequestService creates a new request service instance.
func NewRequestService(repo requestRepository, scheduleRepo requestScheduleCreator, segmentRepo requestSegmentApprover, shiftRepo scheduleShiftRepository, employeeRepo scheduleEmployeeRepository, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		segmentRepo:  segmentRepo,
		shiftRepo:    shiftRepo,
		employeeRepo: employeeRepo,
		validator:    validate,
		logger:       logger,
	}
}

// Create files a new pending request.
func (s *RequestService) Create(ctx context.Context, req CreateRequestRequest) (*models.AttendanceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if !req.ToTime.After(req.FromTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_time must be after from_time")
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

	request := &models.AttendanceRequest{
		EmployeeID:    req.EmployeeID,
		ShiftID:       req.ShiftID,
		RequestedDate: req.RequestedDate,
		FromTime:      req.FromTime,
		ToTime:        req.ToTime,
		Reason:        req.Reason,
		Status:        models.RequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.logger.Info("attendance request created",
		zap.String("request_id", request.ID),
		zap.String("employee_id", request.EmployeeID))
	return request, nil
}

// Get returns a request with employee and shift metadata.
func (s *RequestService) Get(ctx context.Context, id string) (*models.AttendanceRequestDetail, error) {
	request, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// ListPending returns all pending requests, newest first.
func (s *RequestService) ListPending(ctx context.Context) ([]models.AttendanceRequestDetail, error) {
	requests, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	return requests, nil
}

// ListByEmployee returns an employee's requests, newest first.
func (s *RequestService) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRequestDetail, error) {
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	requests, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employee requests")
	}
	return requests, nil
}

// Approve grants a pending request: a one-day schedule is created for the
// requested shift and matching unapproved segments are approved in bulk.
func (s *RequestService) Approve(ctx context.Context, id, managerID string) (*ApprovalResult, error) {
	request, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request.Status = models.RequestStatusApproved
	request.ApprovedBy = &managerID
	request.ApprovedAt = &now
	if err := s.repo.UpdateStatus(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
	}

	note := "Approved attendance request " + request.ID
	schedule := &models.ShiftSchedule{
		EmployeeID:        request.EmployeeID,
		ShiftID:           request.ShiftID,
		ScheduledFromDate: request.RequestedDate,
		ScheduledToDate:   request.RequestedDate,
		Note:              &note,
		CreatedBy:         managerID,
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule for approved request")
	}

	approved, err := s.segmentRepo.ApproveMatchingShifts(ctx, request.EmployeeID, request.ShiftID, request.RequestedDate, managerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve matching segments")
	}

	s.logger.Info("attendance request approved",
		zap.String("request_id", request.ID),
		zap.String("manager_id", managerID),
		zap.Int("segments_approved", approved))
	return &ApprovalResult{Request: request, SegmentsApproved: approved}, nil
}

// Reject denies a pending request with a reason.
func (s *RequestService) Reject(ctx context.Context, id, managerID, reason string) (*models.AttendanceRequest, error) {
	request, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request.Status = models.RequestStatusRejected
	request.ApprovedBy = &managerID
	request.ApprovedAt = &now
	request.RejectionReason = &reason
	if err := s.repo.UpdateStatus(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}

	s.logger.Info("attendance request rejected",
		zap.String("request_id", request.ID),
		zap.String("manager_id", managerID))
	return request, nil
}

func (s *RequestService) loadPending(ctx context.Context, id string) (*models.AttendanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been processed")
	}
	return request, nil
}
