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

// AttendanceRepository handles persistence for attendance intervals and
// their reconciled shift segments.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository instantiates an attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, employee_id, check_in_time, check_out_time, location, note, is_missing_check_out, manager_confirmed_by, manager_confirmed_at, created_at, updated_at"

// FindByID loads an attendance record by identifier.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendances WHERE id = $1", attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// FindDetailByID loads an attendance record joined with employee metadata.
func (r *AttendanceRepository) FindDetailByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	const query = `SELECT a.id, a.employee_id, a.check_in_time, a.check_out_time, a.location, a.note, a.is_missing_check_out, a.manager_confirmed_by, a.manager_confirmed_at, a.created_at, a.updated_at, e.employee_code, e.full_name AS employee_name, e.department FROM attendances a JOIN employees e ON e.id = a.employee_id WHERE a.id = $1`
	var detail models.AttendanceDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindOpenToday returns today's open attendance (no check-out) for the
// employee, if any. dayStart/dayEnd bound the local calendar day.
func (r *AttendanceRepository) FindOpenToday(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (*models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendances WHERE employee_id = $1 AND check_in_time >= $2 AND check_in_time < $3 AND check_out_time IS NULL LIMIT 1", attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, employeeID, dayStart, dayEnd); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// FindLatestOpen returns the employee's most recent attendance without a
// check-out time.
func (r *AttendanceRepository) FindLatestOpen(ctx context.Context, employeeID string) (*models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendances WHERE employee_id = $1 AND check_out_time IS NULL ORDER BY check_in_time DESC LIMIT 1", attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, employeeID); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = now
	}
	attendance.UpdatedAt = now

	const query = `INSERT INTO attendances (id, employee_id, check_in_time, check_out_time, location, note, is_missing_check_out, manager_confirmed_by, manager_confirmed_at, created_at, updated_at) VALUES (:id, :employee_id, :check_in_time, :check_out_time, :location, :note, :is_missing_check_out, :manager_confirmed_by, :manager_confirmed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update modifies an existing attendance record.
func (r *AttendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	attendance.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendances SET check_in_time = :check_in_time, check_out_time = :check_out_time, location = :location, note = :note, is_missing_check_out = :is_missing_check_out, manager_confirmed_by = :manager_confirmed_by, manager_confirmed_at = :manager_confirmed_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// List returns an employee's attendance history with optional date bounds.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	base := "FROM attendances a JOIN employees e ON e.id = a.employee_id WHERE a.employee_id = $1"
	args := []interface{}{filter.EmployeeID}

	var conditions []string
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.check_in_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.check_in_time <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT a.id, a.employee_id, a.check_in_time, a.check_out_time, a.location, a.note, a.is_missing_check_out, a.manager_confirmed_by, a.manager_confirmed_at, a.created_at, a.updated_at, e.employee_code, e.full_name AS employee_name, e.department %s ORDER BY a.check_in_time DESC LIMIT %d OFFSET %d", base, size, offset)

	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendances: %w", err)
	}

	return records, total, nil
}

// ListAnalyzableIDs returns the IDs of every attendance with a check-out
// time, oldest first. Used by the batch re-analysis driver.
func (r *AttendanceRepository) ListAnalyzableIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM attendances WHERE check_out_time IS NOT NULL ORDER BY check_in_time ASC`); err != nil {
		return nil, fmt.Errorf("list analyzable attendances: %w", err)
	}
	return ids, nil
}

// ListShifts returns the reconciled segments of an attendance ordered by
// work date.
func (r *AttendanceRepository) ListShifts(ctx context.Context, attendanceID string) ([]models.AttendanceShiftDetail, error) {
	const query = `SELECT ash.id, ash.attendance_id, ash.shift_id, ash.work_date, ash.actual_start_time, ash.actual_end_time, ash.duration_minutes, ash.late_minutes, ash.early_leave_minutes, ash.overlap_percentage, ash.shift_type, ash.note, ash.is_approved, ash.approved_by, ash.approved_at, ash.created_at, s.name AS shift_name, s.start_time AS shift_start_time, s.end_time AS shift_end_time FROM attendance_shifts ash JOIN shifts s ON s.id = ash.shift_id WHERE ash.attendance_id = $1 ORDER BY ash.work_date ASC, ash.actual_start_time ASC`
	var shifts []models.AttendanceShiftDetail
	if err := r.db.SelectContext(ctx, &shifts, query, attendanceID); err != nil {
		return nil, fmt.Errorf("list attendance shifts: %w", err)
	}
	return shifts, nil
}

// ReplaceShifts deletes every prior segment of an attendance and inserts
// the freshly computed set in one transaction, keeping re-analysis
// idempotent.
func (r *AttendanceRepository) ReplaceShifts(ctx context.Context, attendanceID string, shifts []models.AttendanceShift) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace shifts tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_shifts WHERE attendance_id = $1`, attendanceID); err != nil {
		return fmt.Errorf("delete attendance shifts: %w", err)
	}

	const insert = `INSERT INTO attendance_shifts (id, attendance_id, shift_id, work_date, actual_start_time, actual_end_time, duration_minutes, late_minutes, early_leave_minutes, overlap_percentage, shift_type, note, is_approved, approved_by, approved_at, created_at) VALUES (:id, :attendance_id, :shift_id, :work_date, :actual_start_time, :actual_end_time, :duration_minutes, :late_minutes, :early_leave_minutes, :overlap_percentage, :shift_type, :note, :is_approved, :approved_by, :approved_at, :created_at)`
	for i := range shifts {
		if shifts[i].ID == "" {
			shifts[i].ID = uuid.NewString()
		}
		if shifts[i].CreatedAt.IsZero() {
			shifts[i].CreatedAt = time.Now().UTC()
		}
		if _, err = tx.NamedExecContext(ctx, insert, shifts[i]); err != nil {
			return fmt.Errorf("insert attendance shift: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace shifts tx: %w", err)
	}
	return nil
}

// ApproveMatchingShifts approves every unapproved segment of the employee
// for the given shift and work date, returning the number of rows updated.
func (r *AttendanceRepository) ApproveMatchingShifts(ctx context.Context, employeeID, shiftID string, workDate time.Time, managerID string) (int, error) {
	const query = `UPDATE attendance_shifts SET is_approved = TRUE, approved_by = $4, approved_at = $5 WHERE shift_id = $2 AND work_date = $3 AND is_approved = FALSE AND attendance_id IN (SELECT id FROM attendances WHERE employee_id = $1)`
	res, err := r.db.ExecContext(ctx, query, employeeID, shiftID, workDate, managerID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("approve matching shifts: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("approve matching shifts rows: %w", err)
	}
	return int(count), nil
}
