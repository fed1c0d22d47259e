package model

import "time"

// TimeEntry is one normalized timesheet record: an employee worked some hours
// on a job on a date. Immutable once produced.
type TimeEntry struct {
	EmployeeID   string    `json:"employeeId"`   // normalized identity key
	EmployeeName string    `json:"employeeName"` // display spelling from the row
	Date         time.Time `json:"date"`         // midnight UTC
	JobRef       string    `json:"jobRef"`       // normalized job key
	JobName      string    `json:"jobName"`      // display form from the sheet
	Hours        float64   `json:"hours"`        // always >= 0
	SourceRow    int       `json:"sourceRow"`
}

// JobEntry is one normalized job-sheet record: hours allocated to a job on a
// date, optionally attributed to an employee. Immutable once produced.
type JobEntry struct {
	JobRef         string    `json:"jobRef"`
	JobName        string    `json:"jobName"`
	Date           time.Time `json:"date"`
	AllocatedHours float64   `json:"allocatedHours"` // always >= 0
	EmployeeID     string    `json:"employeeId,omitempty"`
	EmployeeName   string    `json:"employeeName,omitempty"`
	Trucks         string    `json:"trucks,omitempty"`
	Description    string    `json:"description,omitempty"`
	SourceRow      int       `json:"sourceRow"`
}

// SkippedRow records a source row dropped during normalization. Skips are
// accumulated into the run summary, never turned into errors.
type SkippedRow struct {
	Sheet     string `json:"sheet"`
	SourceRow int    `json:"sourceRow"`
	Reason    string `json:"reason"`
}

// DateKey formats a work date the way every grouping key and report cell
// renders it.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
