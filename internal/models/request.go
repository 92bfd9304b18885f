package models

import "time"

// RequestStatus tracks the lifecycle of an attendance request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// AttendanceRequest is a worker's proposal to work a shift on a given date,
// pending manager approval.
type AttendanceRequest struct {
	ID              string        `db:"id" json:"id"`
	EmployeeID      string        `db:"employee_id" json:"employee_id"`
	ShiftID         string        `db:"shift_id" json:"shift_id"`
	RequestedDate   time.Time     `db:"requested_date" json:"requested_date"`
	FromTime        time.Time     `db:"from_time" json:"from_time"`
	ToTime          time.Time     `db:"to_time" json:"to_time"`
	Reason          string        `db:"reason" json:"reason"`
	Status          RequestStatus `db:"status" json:"status"`
	ApprovedBy      *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// AttendanceRequestDetail joins a request with employee and shift metadata.
type AttendanceRequestDetail struct {
	AttendanceRequest
	EmployeeCode   string  `db:"employee_code" json:"employee_code"`
	EmployeeName   string  `db:"employee_name" json:"employee_name"`
	Department     *string `db:"department" json:"department,omitempty"`
	ShiftName      string  `db:"shift_name" json:"shift_name"`
	ShiftStartTime string  `db:"shift_start_time" json:"shift_start_time"`
	ShiftEndTime   string  `db:"shift_end_time" json:"shift_end_time"`
}
