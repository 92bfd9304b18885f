package models

import "time"

// Employee represents a member of the company roster.
type Employee struct {
	ID           string     `db:"id" json:"id"`
	EmployeeCode string     `db:"employee_code" json:"employee_code"`
	FullName     string     `db:"full_name" json:"full_name"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	Position     *string    `db:"position" json:"position,omitempty"`
	Role         *string    `db:"role" json:"role,omitempty"`
	Department   *string    `db:"department" json:"department,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Education    *string    `db:"education" json:"education,omitempty"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter scopes roster queries.
type EmployeeFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// EmployeeImportResult summarises a CSV roster import.
type EmployeeImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
