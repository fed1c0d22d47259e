package combine

import (
	"testing"

	"github.com/rbastia/amadaily/internal/model"
)

func TestAggregate_TotalsAndAnomalies(t *testing.T) {
	t.Parallel()

	times := []model.TimeEntry{
		timeEntry("jane doe", 8, "job 104", 8, 2),
		timeEntry("jane doe", 9, "job 105", 6, 3),
		timeEntry("john roe", 8, "job 104", 4, 4),
	}
	jobs := []model.JobEntry{
		jobEntry("job 104", 8, 12, "", 2), // ambiguous: two employees on job 104 that day
		jobEntry("job 999", 8, 5, "", 3),  // no time at all
	}
	agg := Aggregate(Reconcile(times, jobs))

	// Employee totals reconcile against raw timesheet hours.
	byName := map[string]float64{}
	for _, e := range agg.Employees {
		byName[e.Name] = e.Hours
	}
	if byName["jane doe"] != 14 || byName["john roe"] != 4 {
		t.Fatalf("employee totals: %+v", agg.Employees)
	}

	// Both allocations are unattributable, so everything on the time side is
	// TimeOnly and both job rows are anomalies.
	if agg.TimeOnlyCount != 3 {
		t.Fatalf("time-only count: %d", agg.TimeOnlyCount)
	}
	if agg.JobOnlyCount != 2 {
		t.Fatalf("job-only count: %d", agg.JobOnlyCount)
	}
	if len(agg.Anomalies) != 5 {
		t.Fatalf("anomalies: %d", len(agg.Anomalies))
	}

	// JobOnly rows never create employee totals.
	for _, e := range agg.Employees {
		if e.EmployeeID == "" {
			t.Fatalf("phantom employee from job-only row: %+v", e)
		}
	}
}

func TestAggregate_JobTotals(t *testing.T) {
	t.Parallel()

	times := []model.TimeEntry{
		timeEntry("jane doe", 8, "job 104", 5, 2), // matched below
		timeEntry("john roe", 8, "job 104", 3, 3), // time-only
	}
	jobs := []model.JobEntry{
		jobEntry("job 104", 8, 8, "jane doe", 2),
	}
	agg := Aggregate(Reconcile(times, jobs))

	if len(agg.Jobs) != 1 {
		t.Fatalf("jobs: %+v", agg.Jobs)
	}
	j := agg.Jobs[0]
	if j.Hours != 5 || j.AllocatedHours != 8 || j.Employees != 1 {
		t.Fatalf("job total must count matched work only: %+v", j)
	}
}

func TestAggregate_TimeOnlyExcludedFromJobTotals(t *testing.T) {
	t.Parallel()

	times := []model.TimeEntry{
		timeEntry("jane doe", 8, "job 104", 5, 2),
		timeEntry("jane doe", 9, "job 104", 7, 3), // no allocation that day
	}
	jobs := []model.JobEntry{
		jobEntry("job 104", 8, 5, "jane doe", 2),
	}
	agg := Aggregate(Reconcile(times, jobs))

	if len(agg.Jobs) != 1 || agg.Jobs[0].Hours != 5 {
		t.Fatalf("time-only hours leaked into the job total: %+v", agg.Jobs)
	}

	// The unmatched hours still reach the employee total and the anomalies.
	if len(agg.Employees) != 1 || agg.Employees[0].Hours != 12 {
		t.Fatalf("employee total: %+v", agg.Employees)
	}
	if agg.TimeOnlyCount != 1 || len(agg.Anomalies) != 1 {
		t.Fatalf("anomalies: %+v", agg.Anomalies)
	}

	// A job backed only by time entries never appears in job totals.
	agg = Aggregate(Reconcile([]model.TimeEntry{timeEntry("jane doe", 8, "job 105", 4, 2)}, nil))
	if len(agg.Jobs) != 0 {
		t.Fatalf("unbacked job must not appear in totals: %+v", agg.Jobs)
	}
}

func TestAggregate_ConservationAcrossRows(t *testing.T) {
	t.Parallel()

	times := []model.TimeEntry{
		timeEntry("jane doe", 8, "job 104", 4.5, 2),
		timeEntry("jane doe", 8, "job 104", 3.5, 3),
		timeEntry("jane doe", 9, "job 105", 7, 4),
	}
	agg := Aggregate(Reconcile(times, nil))

	var in, out float64
	for _, e := range times {
		in += e.Hours
	}
	for _, r := range agg.Rows {
		out += r.TotalHours
	}
	if in != out {
		t.Fatalf("breakdown rows must conserve hours: in=%v out=%v", in, out)
	}
}
