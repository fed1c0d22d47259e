package parser

import (
	"fmt"
	"strings"

	"github.com/rbastia/amadaily/internal/model"
)

// JobSheetNormalizer turns raw job-sheet rows into validated job entries.
// The job sheet is messier than the timesheet: allocations may arrive
// without an employee, truck IDs may be concatenated, and formula spillover
// produces noise job labels.
type JobSheetNormalizer struct {
	DefaultYear int
	Window      DateWindow
}

// Normalize processes every raw row in order. A row survives with a real job
// label, a plausible date and positive allocated hours; the employee is
// optional and left blank when absent.
func (n *JobSheetNormalizer) Normalize(rows []model.RawRow) ([]model.JobEntry, []model.SkippedRow) {
	var (
		entries []model.JobEntry
		skipped []model.SkippedRow
	)
	skip := func(row int, reason string) {
		skipped = append(skipped, model.SkippedRow{Sheet: JobSheetSheet, SourceRow: row, Reason: reason})
	}
	if len(rows) == 0 {
		return entries, skipped
	}

	headers := rows[0].Headers
	jobCol := findColumn(headers, "Job", "Job Name", "Job #", "Job Number", "Project")
	dateCol := findColumn(headers, "Date", "Work Date", "Day")
	hoursCol := findColumn(headers, "Hours", "Hrs", "Allocated Hours", "Man Hours")
	empCol := findColumn(headers, "Employee", "Employee Name", "Name", "Worker")
	truckCol := findColumn(headers, "Truck", "Trucks", "Trk", "Truck #")
	descCol := findColumn(headers, "Description", "Notes", "Work Description", "Scope")

	for _, row := range rows {
		rawJob := strings.TrimSpace(row.Get(jobCol).Text)
		if jobCol == "" || rawJob == "" {
			skip(row.Index, "no job recorded")
			continue
		}
		if IsNoiseJob(rawJob) {
			skip(row.Index, fmt.Sprintf("noise job label %q", rawJob))
			continue
		}

		date, ok := resolveDate(row.Get(dateCol), n.DefaultYear)
		if !ok {
			skip(row.Index, fmt.Sprintf("unparseable date %q", row.Get(dateCol).Text))
			continue
		}
		if !n.Window.Contains(date) {
			skip(row.Index, fmt.Sprintf("date %s outside report window", model.DateKey(date)))
			continue
		}

		hours, ok := ParseHours(row.Get(hoursCol))
		if !ok || hours == 0 {
			skip(row.Index, "no hours recorded")
			continue
		}
		if hours < 0 {
			skip(row.Index, fmt.Sprintf("negative hours %v", hours))
			continue
		}

		entry := model.JobEntry{
			JobRef:         NormalizeJobRef(rawJob),
			JobName:        rawJob,
			Date:           date,
			AllocatedHours: hours,
			Trucks:         SplitTruckIDs(row.Get(truckCol).Text),
			Description:    strings.TrimSpace(row.Get(descCol).Text),
			SourceRow:      row.Index,
		}
		if rawName := strings.TrimSpace(row.Get(empCol).Text); rawName != "" {
			entry.EmployeeID = NormalizeName(rawName)
			entry.EmployeeName = DisplayName(rawName)
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}
