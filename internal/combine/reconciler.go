// Package combine reconciles normalized timesheet and job-sheet entries and
// folds the result into report-ready aggregates.
package combine

import (
	"sort"
	"time"

	"github.com/rbastia/amadaily/internal/model"
)

type matchKey struct {
	EmployeeID string
	Date       string
	JobRef     string
}

type dayJobKey struct {
	Date   string
	JobRef string
}

// timeGroup accumulates the time side of one match key. Split entries for the
// same key are summed before any matching happens.
type timeGroup struct {
	name    string // first-seen display spelling
	jobName string
	when    time.Time
	hours   float64
	rows    []int
}

type jobGroup struct {
	name    string // employee display name, when attributed
	jobName string
	when    time.Time
	hours   float64
	trucks  string
	desc    string
	rows    []int
}

// Reconcile joins time entries against job entries on the
// (employee, date, job) key. Unattributed allocations are assigned to an
// employee only when exactly one distinct employee logged hours for that
// (date, job); ambiguous allocations stay JobOnly. Hours are conserved: the
// summed Hours of the result equals the summed Hours of the input.
func Reconcile(times []model.TimeEntry, jobs []model.JobEntry) model.MatchResult {
	spellings := make(map[string]map[string]bool)
	noteSpelling := func(id, name string) {
		if id == "" || name == "" {
			return
		}
		if spellings[id] == nil {
			spellings[id] = make(map[string]bool)
		}
		spellings[id][name] = true
	}

	// Sum the time side per key.
	timeGroups := make(map[matchKey]*timeGroup)
	timeOrder := make([]matchKey, 0, len(times))
	employeesPerDayJob := make(map[dayJobKey]map[string]bool)
	for _, t := range times {
		noteSpelling(t.EmployeeID, t.EmployeeName)
		k := matchKey{t.EmployeeID, model.DateKey(t.Date), t.JobRef}
		g, ok := timeGroups[k]
		if !ok {
			g = &timeGroup{name: t.EmployeeName, jobName: t.JobName, when: t.Date}
			timeGroups[k] = g
			timeOrder = append(timeOrder, k)
		}
		g.hours += t.Hours
		g.rows = append(g.rows, t.SourceRow)

		dj := dayJobKey{k.Date, k.JobRef}
		if employeesPerDayJob[dj] == nil {
			employeesPerDayJob[dj] = make(map[string]bool)
		}
		employeesPerDayJob[dj][t.EmployeeID] = true
	}

	// Sum the job side, attributing lone-candidate allocations first.
	jobGroups := make(map[matchKey]*jobGroup)
	jobOrder := make([]matchKey, 0, len(jobs))
	for _, j := range jobs {
		noteSpelling(j.EmployeeID, j.EmployeeName)
		empID := j.EmployeeID
		empName := j.EmployeeName
		if empID == "" {
			dj := dayJobKey{model.DateKey(j.Date), j.JobRef}
			if cands := employeesPerDayJob[dj]; len(cands) == 1 {
				for id := range cands {
					empID = id
				}
				empName = "" // display name comes from the time side
			}
		}
		k := matchKey{empID, model.DateKey(j.Date), j.JobRef}
		g, ok := jobGroups[k]
		if !ok {
			g = &jobGroup{name: empName, jobName: j.JobName, when: j.Date}
			jobGroups[k] = g
			jobOrder = append(jobOrder, k)
		}
		g.hours += j.AllocatedHours
		g.rows = append(g.rows, j.SourceRow)
		appendNote(&g.trucks, j.Trucks)
		appendNote(&g.desc, j.Description)
	}

	var matches []model.Match
	for _, k := range timeOrder {
		tg := timeGroups[k]
		m := model.Match{
			EmployeeID:   k.EmployeeID,
			EmployeeName: tg.name,
			JobRef:       k.JobRef,
			JobName:      tg.jobName,
			Date:         tg.when,
			Status:       model.StatusTimeOnly,
			Hours:        tg.hours,
			TimeRows:     tg.rows,
		}
		if jg, ok := jobGroups[k]; ok {
			m.Status = model.StatusMatched
			m.AllocatedHours = jg.hours
			m.Trucks = jg.trucks
			m.Description = jg.desc
			m.JobRows = jg.rows
			if m.JobName == "" {
				m.JobName = jg.jobName
			}
			delete(jobGroups, k)
		}
		matches = append(matches, m)
	}
	for _, k := range jobOrder {
		jg, ok := jobGroups[k]
		if !ok {
			continue // consumed by a match above
		}
		matches = append(matches, model.Match{
			EmployeeID:     k.EmployeeID,
			EmployeeName:   jg.name,
			JobRef:         k.JobRef,
			JobName:        jg.jobName,
			Date:           jg.when,
			Status:         model.StatusJobOnly,
			AllocatedHours: jg.hours,
			Trucks:         jg.trucks,
			Description:    jg.desc,
			JobRows:        jg.rows,
		})
	}

	sortMatches(matches)

	variants := make(map[string][]string)
	for id, set := range spellings {
		if len(set) < 2 {
			continue
		}
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		variants[id] = names
	}
	return model.MatchResult{Matches: matches, NameVariants: variants}
}

// sortMatches fixes the report order: employee name, then date, then job.
// Employee-less JobOnly rows sort by job name in the empty-name band.
func sortMatches(ms []model.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		an, bn := sortName(a), sortName(b)
		if an != bn {
			return an < bn
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.JobRef < b.JobRef
	})
}

func sortName(m model.Match) string {
	if m.EmployeeName != "" {
		return m.EmployeeName
	}
	return m.EmployeeID
}

func appendNote(dst *string, s string) {
	if s == "" {
		return
	}
	if *dst == "" {
		*dst = s
		return
	}
	if *dst == s {
		return
	}
	*dst += "; " + s
}
