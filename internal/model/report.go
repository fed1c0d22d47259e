package model

import "time"

// MatchStatus is the reconciliation outcome for one (employee, date, job) key.
type MatchStatus string

const (
	StatusMatched  MatchStatus = "Matched"
	StatusTimeOnly MatchStatus = "TimeOnly"
	StatusJobOnly  MatchStatus = "JobOnly"
)

// Match is one reconciled key: summed time-side hours, summed job-side
// allocation, and the outcome tag. TimeOnly matches have no allocation;
// JobOnly matches have no time hours and usually no employee.
type Match struct {
	EmployeeID     string
	EmployeeName   string
	JobRef         string
	JobName        string
	Date           time.Time
	Status         MatchStatus
	Hours          float64 // time-side total for the key
	AllocatedHours float64 // job-side total for the key
	Trucks         string
	Description    string
	TimeRows       []int // contributing timesheet source rows
	JobRows        []int // contributing job-sheet source rows
}

// MatchResult is the full reconciliation output for one run.
type MatchResult struct {
	Matches []Match
	// NameVariants lists, per employee key, the distinct source spellings
	// that merged into it — recorded whenever more than one spelling was
	// seen, so a reviewer can audit the merge.
	NameVariants map[string][]string
}

// AggregateRow is one line of the combined breakdown, grouping key
// (EmployeeID, JobRef, Date). The sum of TotalHours per employee and date
// equals the sum of that employee's raw timesheet hours for the date.
type AggregateRow struct {
	EmployeeID     string
	EmployeeName   string
	JobRef         string
	JobName        string
	Date           time.Time
	TotalHours     float64
	AllocatedHours float64
	Status         MatchStatus
	Trucks         string
	Description    string
}

// EmployeeTotal is the per-employee summary line (hours across all jobs).
type EmployeeTotal struct {
	EmployeeID string
	Name       string
	Hours      float64
	Spellings  []string // distinct merged source spellings, when more than one
}

// JobTotal is the per-job summary line (hours across all employees).
// Unmatched time entries never enter a job total; they live in the
// employee totals and the anomaly list.
type JobTotal struct {
	JobRef         string
	JobName        string
	Hours          float64 // matched time-side hours for the job
	AllocatedHours float64 // job-sheet allocation for the job
	Employees      int     // distinct employees with matched hours
}

// Aggregation is the folded result handed to the report builder.
type Aggregation struct {
	Rows      []AggregateRow // Matched + TimeOnly breakdown rows
	Anomalies []AggregateRow // TimeOnly + JobOnly rows for manual review
	Employees []EmployeeTotal
	Jobs      []JobTotal

	TimeOnlyCount int
	JobOnlyCount  int
	NameVariants  map[string][]string
}

// ReportSheet is one rendered output sheet: a name and printable rows.
type ReportSheet struct {
	Name string
	Rows [][]string
}

// CombinedReport is the in-memory form of the output workbook. It is built
// once, fully ordered, and never mutated after serialization.
type CombinedReport struct {
	Sheets []ReportSheet
}

// RunSummary is returned to the caller after a run for user-facing display.
type RunSummary struct {
	RunID string `json:"runId"`

	TimesheetRows int `json:"timesheetRows"` // raw rows read
	JobSheetRows  int `json:"jobSheetRows"`
	TimeEntries   int `json:"timeEntries"` // normalized entries
	JobEntries    int `json:"jobEntries"`

	Matched  int `json:"matched"`
	TimeOnly int `json:"timeOnly"`
	JobOnly  int `json:"jobOnly"`

	Skipped      []SkippedRow        `json:"skipped,omitempty"`
	NameVariants map[string][]string `json:"nameVariants,omitempty"`

	OutputPath    string   `json:"outputPath"`
	Intermediates []string `json:"intermediates,omitempty"`
	Duration      string   `json:"duration"`
}
