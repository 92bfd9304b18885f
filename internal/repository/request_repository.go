package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/k25dtcn010/project-base/internal/models"
)

// RequestRepository handles persistence for attendance requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository instantiates a request repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestDetailColumns = "ar.id, ar.employee_id, ar.shift_id, ar.requested_date, ar.from_time, ar.to_time, ar.reason, ar.status, ar.approved_by, ar.approved_at, ar.rejection_reason, ar.created_at, ar.updated_at, e.employee_code, e.full_name AS employee_name, e.department, s.name AS shift_name, s.start_time AS shift_start_time, s.end_time AS shift_end_time"

const requestJoin = "FROM attendance_requests ar JOIN employees e ON e.id = ar.employee_id JOIN shifts s ON s.id = ar.shift_id"

// FindByID loads a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRequest, error) {
	const query = `SELECT id, employee_id, shift_id, requested_date, from_time, to_time, reason, status, approved_by, approved_at, rejection_reason, created_at, updated_at FROM attendance_requests WHERE id = $1`
	var request models.AttendanceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindDetailByID loads a request joined with employee and shift metadata.
func (r *RequestRepository) FindDetailByID(ctx context.Context, id string) (*models.AttendanceRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ar.id = $1", requestDetailColumns, requestJoin)
	var detail models.AttendanceRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListPending returns every pending request, newest first.
func (r *RequestRepository) ListPending(ctx context.Context) ([]models.AttendanceRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ar.status = $1 ORDER BY ar.created_at DESC", requestDetailColumns, requestJoin)
	var requests []models.AttendanceRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, models.RequestStatusPending); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

// ListByEmployee returns an employee's requests, newest first.
func (r *RequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ar.employee_id = $1 ORDER BY ar.created_at DESC", requestDetailColumns, requestJoin)
	var requests []models.AttendanceRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, employeeID); err != nil {
		return nil, fmt.Errorf("list employee requests: %w", err)
	}
	return requests, nil
}

// Create inserts a new request record.
func (r *RequestRepository) Create(ctx context.Context, request *models.AttendanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO attendance_requests (id, employee_id, shift_id, requested_date, from_time, to_time, reason, status, approved_by, approved_at, rejection_reason, created_at, updated_at) VALUES (:id, :employee_id, :shift_id, :requested_date, :from_time, :to_time, :reason, :status, :approved_by, :approved_at, :rejection_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create attendance request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a request and records who processed it.
func (r *RequestRepository) UpdateStatus(ctx context.Context, request *models.AttendanceRequest) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance_requests SET status = :status, approved_by = :approved_by, approved_at = :approved_at, rejection_reason = :rejection_reason, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("update attendance request: %w", err)
	}
	return nil
}
