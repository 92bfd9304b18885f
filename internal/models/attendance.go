package models

import "time"

// Attendance is one employee's check-in-to-check-out span. CheckOutTime is
// nil while the attendance is still open.
type Attendance struct {
	ID                 string     `db:"id" json:"id"`
	EmployeeID         string     `db:"employee_id" json:"employee_id"`
	CheckInTime        time.Time  `db:"check_in_time" json:"check_in_time"`
	CheckOutTime       *time.Time `db:"check_out_time" json:"check_out_time,omitempty"`
	Location           *string    `db:"location" json:"location,omitempty"`
	Note               *string    `db:"note" json:"note,omitempty"`
	IsMissingCheckOut  bool       `db:"is_missing_check_out" json:"is_missing_check_out"`
	ManagerConfirmedBy *string    `db:"manager_confirmed_by" json:"manager_confirmed_by,omitempty"`
	ManagerConfirmedAt *time.Time `db:"manager_confirmed_at" json:"manager_confirmed_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// AttendanceDetail extends an attendance row with employee metadata.
type AttendanceDetail struct {
	Attendance
	EmployeeCode string  `db:"employee_code" json:"employee_code"`
	EmployeeName string  `db:"employee_name" json:"employee_name"`
	Department   *string `db:"department" json:"department,omitempty"`
}

// AttendanceShift is one reconciled segment: the portion of an attendance
// interval that falls within one shift's window on one calendar day.
type AttendanceShift struct {
	ID                string     `db:"id" json:"id"`
	AttendanceID      string     `db:"attendance_id" json:"attendance_id"`
	ShiftID           string     `db:"shift_id" json:"shift_id"`
	WorkDate          time.Time  `db:"work_date" json:"work_date"`
	ActualStartTime   time.Time  `db:"actual_start_time" json:"actual_start_time"`
	ActualEndTime     time.Time  `db:"actual_end_time" json:"actual_end_time"`
	DurationMinutes   int        `db:"duration_minutes" json:"duration_minutes"`
	LateMinutes       int        `db:"late_minutes" json:"late_minutes"`
	EarlyLeaveMinutes int        `db:"early_leave_minutes" json:"early_leave_minutes"`
	OverlapPercentage float64    `db:"overlap_percentage" json:"overlap_percentage"`
	ShiftType         ShiftType  `db:"shift_type" json:"shift_type"`
	Note              string     `db:"note" json:"note"`
	IsApproved        bool       `db:"is_approved" json:"is_approved"`
	ApprovedBy        *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// AttendanceShiftDetail joins segment rows with their shift definition.
type AttendanceShiftDetail struct {
	AttendanceShift
	ShiftName      string `db:"shift_name" json:"shift_name"`
	ShiftStartTime string `db:"shift_start_time" json:"shift_start_time"`
	ShiftEndTime   string `db:"shift_end_time" json:"shift_end_time"`
}

// AttendanceFilter scopes attendance history queries.
type AttendanceFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// AttendanceWithShifts bundles an attendance record with its segments.
type AttendanceWithShifts struct {
	AttendanceDetail
	Shifts []AttendanceShiftDetail `json:"shifts"`
}
