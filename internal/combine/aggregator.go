package combine

import (
	"sort"

	"github.com/rbastia/amadaily/internal/model"
)

// Aggregate folds a reconciliation into the rows and totals the report
// renders. Breakdown rows carry only time-backed hours (Matched + TimeOnly),
// so per-employee totals always reconcile against the raw timesheet; JobOnly
// rows surface on the anomaly list instead.
func Aggregate(res model.MatchResult) model.Aggregation {
	agg := model.Aggregation{NameVariants: res.NameVariants}

	type empAcc struct {
		name  string
		hours float64
	}
	type jobAcc struct {
		name      string
		hours     float64
		allocated float64
		employees map[string]bool
	}
	emps := make(map[string]*empAcc)
	jobs := make(map[string]*jobAcc)

	for _, m := range res.Matches {
		row := model.AggregateRow{
			EmployeeID:     m.EmployeeID,
			EmployeeName:   m.EmployeeName,
			JobRef:         m.JobRef,
			JobName:        m.JobName,
			Date:           m.Date,
			TotalHours:     m.Hours,
			AllocatedHours: m.AllocatedHours,
			Status:         m.Status,
			Trucks:         m.Trucks,
			Description:    m.Description,
		}

		switch m.Status {
		case model.StatusJobOnly:
			agg.JobOnlyCount++
			agg.Anomalies = append(agg.Anomalies, row)
		case model.StatusTimeOnly:
			agg.TimeOnlyCount++
			agg.Rows = append(agg.Rows, row)
			agg.Anomalies = append(agg.Anomalies, row)
		default:
			agg.Rows = append(agg.Rows, row)
		}

		// Job totals carry matched work only: a time entry no job sheet
		// backs never contributes to any job's aggregate total, and a
		// JobOnly allocation contributes only to the allocated side.
		if m.Status != model.StatusTimeOnly {
			j, ok := jobs[m.JobRef]
			if !ok {
				j = &jobAcc{name: m.JobName, employees: make(map[string]bool)}
				jobs[m.JobRef] = j
			}
			j.allocated += m.AllocatedHours
			if m.Status == model.StatusMatched {
				j.hours += m.Hours
				j.employees[m.EmployeeID] = true
			}
		}

		// Employee totals still reconcile against the raw timesheet, so
		// TimeOnly hours belong here.
		if m.Status != model.StatusJobOnly {
			e, ok := emps[m.EmployeeID]
			if !ok {
				e = &empAcc{name: m.EmployeeName}
				emps[m.EmployeeID] = e
			}
			e.hours += m.Hours
		}
	}

	for id, e := range emps {
		agg.Employees = append(agg.Employees, model.EmployeeTotal{
			EmployeeID: id,
			Name:       e.name,
			Hours:      e.hours,
			Spellings:  res.NameVariants[id],
		})
	}
	sort.Slice(agg.Employees, func(i, j int) bool {
		return agg.Employees[i].Name < agg.Employees[j].Name
	})

	for ref, j := range jobs {
		agg.Jobs = append(agg.Jobs, model.JobTotal{
			JobRef:         ref,
			JobName:        j.name,
			Hours:          j.hours,
			AllocatedHours: j.allocated,
			Employees:      len(j.employees),
		})
	}
	sort.Slice(agg.Jobs, func(i, j int) bool {
		return agg.Jobs[i].JobName < agg.Jobs[j].JobName
	})

	return agg
}
