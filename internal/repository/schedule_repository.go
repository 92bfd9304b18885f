package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/k25dtcn010/project-base/internal/models"
)

// ScheduleRepository handles persistence for shift schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository instantiates a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleDetailColumns = "ss.id, ss.employee_id, ss.shift_id, ss.scheduled_from_date, ss.scheduled_to_date, ss.note, ss.created_by, ss.created_at, ss.updated_at, s.name AS shift_name, s.start_time AS shift_start_time, s.end_time AS shift_end_time, e.employee_code, e.full_name AS employee_name, e.department"

const scheduleJoin = "FROM shift_schedules ss JOIN shifts s ON s.id = ss.shift_id JOIN employees e ON e.id = ss.employee_id"

// List returns schedules matching the filter; date bounds select schedules
// whose range intersects the requested window.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ShiftScheduleFilter) ([]models.ShiftScheduleDetail, error) {
	base := scheduleJoin + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("ss.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.ShiftID != "" {
		conditions = append(conditions, fmt.Sprintf("ss.shift_id = $%d", len(args)+1))
		args = append(args, filter.ShiftID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("ss.scheduled_to_date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("ss.scheduled_from_date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY ss.created_at DESC", scheduleDetailColumns, base)

	var schedules []models.ShiftScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list shift schedules: %w", err)
	}
	return schedules, nil
}

// FindByID loads a schedule by identifier.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ShiftSchedule, error) {
	const query = `SELECT id, employee_id, shift_id, scheduled_from_date, scheduled_to_date, note, created_by, created_at, updated_at FROM shift_schedules WHERE id = $1`
	var schedule models.ShiftSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindDetailByID loads a schedule joined with shift and employee metadata.
func (r *ScheduleRepository) FindDetailByID(ctx context.Context, id string) (*models.ShiftScheduleDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ss.id = $1", scheduleDetailColumns, scheduleJoin)
	var detail models.ShiftScheduleDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByEmployee returns an employee's schedules ordered by start date.
func (r *ScheduleRepository) ListByEmployee(ctx context.Context, employeeID string, startDate, endDate *time.Time) ([]models.ShiftScheduleDetail, error) {
	filter := models.ShiftScheduleFilter{EmployeeID: employeeID, StartDate: startDate, EndDate: endDate}
	base := scheduleJoin + " WHERE ss.employee_id = $1"
	args := []interface{}{filter.EmployeeID}

	if filter.StartDate != nil {
		base += fmt.Sprintf(" AND ss.scheduled_to_date >= $%d", len(args)+1)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		base += fmt.Sprintf(" AND ss.scheduled_from_date <= $%d", len(args)+1)
		args = append(args, *filter.EndDate)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY ss.scheduled_from_date ASC", scheduleDetailColumns, base)

	var schedules []models.ShiftScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list employee schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.ShiftSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO shift_schedules (id, employee_id, shift_id, scheduled_from_date, scheduled_to_date, note, created_by, created_at, updated_at) VALUES (:id, :employee_id, :shift_id, :scheduled_from_date, :scheduled_to_date, :note, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create shift schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.ShiftSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shift_schedules SET shift_id = :shift_id, scheduled_from_date = :scheduled_from_date, scheduled_to_date = :scheduled_to_date, note = :note, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update shift schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule permanently.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shift_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete shift schedule: %w", err)
	}
	return nil
}
