package models

import "time"

// ShiftSchedule assigns an employee to a shift over a date range.
type ShiftSchedule struct {
	ID                string    `db:"id" json:"id"`
	EmployeeID        string    `db:"employee_id" json:"employee_id"`
	ShiftID           string    `db:"shift_id" json:"shift_id"`
	ScheduledFromDate time.Time `db:"scheduled_from_date" json:"scheduled_from_date"`
	ScheduledToDate   time.Time `db:"scheduled_to_date" json:"scheduled_to_date"`
	Note              *string   `db:"note" json:"note,omitempty"`
	CreatedBy         string    `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ShiftScheduleDetail joins schedule rows with shift and employee metadata.
type ShiftScheduleDetail struct {
	ShiftSchedule
	ShiftName      string  `db:"shift_name" json:"shift_name"`
	ShiftStartTime string  `db:"shift_start_time" json:"shift_start_time"`
	ShiftEndTime   string  `db:"shift_end_time" json:"shift_end_time"`
	EmployeeCode   string  `db:"employee_code" json:"employee_code"`
	EmployeeName   string  `db:"employee_name" json:"employee_name"`
	Department     *string `db:"department" json:"department,omitempty"`
}

// ShiftScheduleFilter scopes schedule queries. StartDate/EndDate select
// schedules whose range intersects [StartDate, EndDate].
type ShiftScheduleFilter struct {
	EmployeeID string
	ShiftID    string
	StartDate  *time.Time
	EndDate    *time.Time
}
