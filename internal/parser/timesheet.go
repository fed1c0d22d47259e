package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/rbastia/amadaily/internal/model"
)

// TimesheetNormalizer turns raw Timesheet rows into validated time entries.
// Bad rows are skipped with a reason, never fatal.
type TimesheetNormalizer struct {
	DefaultYear int
	Window      DateWindow
}

// Normalize processes every raw row in order. A row survives only with a
// resolvable employee, a plausible date, a real job label and positive hours.
func (n *TimesheetNormalizer) Normalize(rows []model.RawRow) ([]model.TimeEntry, []model.SkippedRow) {
	var (
		entries []model.TimeEntry
		skipped []model.SkippedRow
	)
	skip := func(row int, reason string) {
		skipped = append(skipped, model.SkippedRow{Sheet: TimesheetSheet, SourceRow: row, Reason: reason})
	}
	if len(rows) == 0 {
		return entries, skipped
	}

	headers := rows[0].Headers
	empCol := findColumn(headers, "Employee", "Employee Name", "Name", "Worker")
	dateCol := findColumn(headers, "Date", "Work Date", "Day")
	jobCol := findColumn(headers, "Job", "Job Name", "Job #", "Job Number", "Project")
	hoursCol := findColumn(headers, "Hours", "Hrs", "Total Hours", "Time")

	for _, row := range rows {
		rawName := strings.TrimSpace(row.Get(empCol).Text)
		if empCol == "" || rawName == "" {
			skip(row.Index, "no employee name")
			continue
		}
		empID := NormalizeName(rawName)
		// Company banner rows repeat "AMA ..." in the employee column.
		if empID == "ama" || strings.HasPrefix(empID, "ama ") {
			skip(row.Index, "company header row")
			continue
		}
		date, ok := n.parseDateCell(row.Get(dateCol))
		if !ok {
			skip(row.Index, fmt.Sprintf("unparseable date %q", row.Get(dateCol).Text))
			continue
		}
		if !n.Window.Contains(date) {
			skip(row.Index, fmt.Sprintf("date %s outside report window", model.DateKey(date)))
			continue
		}

		rawJob := strings.TrimSpace(row.Get(jobCol).Text)
		if jobCol == "" || rawJob == "" {
			skip(row.Index, "no job recorded")
			continue
		}
		if IsNoiseJob(rawJob) {
			skip(row.Index, fmt.Sprintf("noise job label %q", rawJob))
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

		entries = append(entries, model.TimeEntry{
			EmployeeID:   empID,
			EmployeeName: DisplayName(rawName),
			Date:         date,
			JobRef:       NormalizeJobRef(rawJob),
			JobName:      rawJob,
			Hours:        hours,
			SourceRow:    row.Index,
		})
	}
	return entries, skipped
}

func (n *TimesheetNormalizer) parseDateCell(c model.CellValue) (time.Time, bool) {
	return resolveDate(c, n.DefaultYear)
}

// resolveDate prefers the reader's typed date and falls back to text parsing
// with the report's default year.
func resolveDate(c model.CellValue, defaultYear int) (time.Time, bool) {
	if c.Kind == model.CellDate {
		return c.Time, true
	}
	return ParseDate(c.Text, defaultYear)
}
