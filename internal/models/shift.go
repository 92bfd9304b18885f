package models

import "time"

// ShiftType classifies how substantially an attendance interval occupies a shift.
type ShiftType string

const (
	// ShiftTypePrimary marks a segment covering at least 25% of the shift duration.
	ShiftTypePrimary ShiftType = "primary"
	// ShiftTypeBoundary marks an incidental segment below the 25% threshold.
	ShiftTypeBoundary ShiftType = "boundary"
	// ShiftTypeOvertime is reserved; no classification rule produces it yet.
	ShiftTypeOvertime ShiftType = "overtime"
)

// Valid returns true when the shift type is a supported value.
func (t ShiftType) Valid() bool {
	switch t {
	case ShiftTypePrimary, ShiftTypeBoundary, ShiftTypeOvertime:
		return true
	default:
		return false
	}
}

// Shift is a named recurring daily time-of-day window attendance is measured
// against. StartTime and EndTime are wall-clock "HH:mm" strings; a shift whose
// end is not after its start crosses midnight into the following day.
type Shift struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CrossesMidnight reports whether the shift's effective end instant falls on
// the following calendar day. "HH:mm" is fixed width, so the lexicographic
// comparison matches the numeric one.
func (s Shift) CrossesMidnight() bool {
	return s.EndTime <= s.StartTime
}
