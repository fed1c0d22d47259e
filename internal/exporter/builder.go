// Package exporter renders a reconciled aggregation into the combined report
// workbook and writes intermediate entry dumps.
package exporter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rbastia/amadaily/internal/model"
)

var breakdownHeader = []string{
	"Employee", "Date", "Job", "Hours", "Allocated Hours", "Status", "Trucks", "Description",
}

// Builder lays out the in-memory report. The same aggregation always produces
// the same sheets in the same order.
type Builder struct {
	// SingleSheet collapses the report into one combined sheet instead of
	// the per-job layout with Summary and Anomalies sheets.
	SingleSheet bool
}

// Build renders the aggregation. Multi-sheet layout: one sheet per job in
// job-name order, then Summary, then Anomalies. Single-sheet layout: one
// Combined sheet holding every row including JobOnly anomalies.
func (b *Builder) Build(agg model.Aggregation) model.CombinedReport {
	if b.SingleSheet {
		return model.CombinedReport{Sheets: []model.ReportSheet{b.combinedSheet(agg)}}
	}

	var sheets []model.ReportSheet
	sheets = append(sheets, b.jobSheets(agg)...)
	sheets = append(sheets, b.summarySheet(agg), b.anomalySheet(agg))
	dedupeSheetNames(sheets)
	return model.CombinedReport{Sheets: sheets}
}

// combinedSheet stacks breakdown, summary and anomaly blocks into one sheet,
// each introduced by a section header row.
func (b *Builder) combinedSheet(agg model.Aggregation) model.ReportSheet {
	rows := [][]string{{"Breakdown"}, breakdownHeader}
	for _, r := range agg.Rows {
		rows = append(rows, breakdownRow(r))
	}

	rows = append(rows, nil, []string{"Summary"})
	rows = append(rows, b.summarySheet(agg).Rows...)

	rows = append(rows, nil, []string{"Anomalies"}, breakdownHeader)
	for _, r := range agg.Anomalies {
		rows = append(rows, breakdownRow(r))
	}
	return model.ReportSheet{Name: "Combined", Rows: rows}
}

func (b *Builder) jobSheets(agg model.Aggregation) []model.ReportSheet {
	byJob := make(map[string][][]string)
	names := make(map[string]string)
	var order []string
	for _, r := range agg.Rows {
		if _, ok := byJob[r.JobRef]; !ok {
			byJob[r.JobRef] = [][]string{breakdownHeader}
			names[r.JobRef] = r.JobName
			order = append(order, r.JobRef)
		}
		byJob[r.JobRef] = append(byJob[r.JobRef], breakdownRow(r))
	}
	sort.Slice(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })

	sheets := make([]model.ReportSheet, 0, len(order))
	for _, ref := range order {
		rows := byJob[ref]
		// The job's total counts matched work only; TimeOnly rows are
		// listed for context but never enter a job aggregate.
		var total float64
		for _, r := range agg.Rows {
			if r.JobRef == ref && r.Status == model.StatusMatched {
				total += r.TotalHours
			}
		}
		rows = append(rows, []string{"Total", "", "", formatHours(total), "", "", "", ""})
		sheets = append(sheets, model.ReportSheet{Name: sanitizeSheetName(names[ref]), Rows: rows})
	}
	return sheets
}

func (b *Builder) summarySheet(agg model.Aggregation) model.ReportSheet {
	rows := [][]string{{"Employee", "Total Hours", "Spellings Merged"}}
	var grand float64
	for _, e := range agg.Employees {
		rows = append(rows, []string{e.Name, formatHours(e.Hours), strings.Join(e.Spellings, " / ")})
		grand += e.Hours
	}
	rows = append(rows,
		[]string{"Total", formatHours(grand), ""},
		nil,
		[]string{"Job", "Hours", "Allocated Hours", "Employees"},
	)
	for _, j := range agg.Jobs {
		rows = append(rows, []string{
			j.JobName, formatHours(j.Hours), formatHours(j.AllocatedHours), strconv.Itoa(j.Employees),
		})
	}
	rows = append(rows,
		nil,
		[]string{"Unmatched time rows", strconv.Itoa(agg.TimeOnlyCount)},
		[]string{"Unmatched job rows", strconv.Itoa(agg.JobOnlyCount)},
	)
	return model.ReportSheet{Name: "Summary", Rows: rows}
}

func (b *Builder) anomalySheet(agg model.Aggregation) model.ReportSheet {
	rows := [][]string{breakdownHeader}
	for _, r := range agg.Anomalies {
		rows = append(rows, breakdownRow(r))
	}
	return model.ReportSheet{Name: "Anomalies", Rows: rows}
}

func breakdownRow(r model.AggregateRow) []string {
	return []string{
		r.EmployeeName,
		model.DateKey(r.Date),
		r.JobName,
		formatHours(r.TotalHours),
		formatHours(r.AllocatedHours),
		string(r.Status),
		r.Trucks,
		r.Description,
	}
}

func formatHours(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sanitizeSheetName makes a job name safe for Excel: forbidden characters
// stripped, 31-character limit enforced.
func sanitizeSheetName(name string) string {
	repl := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ", "'", " ")
	name = strings.TrimSpace(repl.Replace(name))
	if name == "" {
		name = "Sheet"
	}
	if len(name) > 31 {
		name = strings.TrimSpace(name[:31])
	}
	return name
}

// dedupeSheetNames suffixes collisions after sanitization, keeping the
// 31-character limit.
func dedupeSheetNames(sheets []model.ReportSheet) {
	seen := make(map[string]int, len(sheets))
	for i := range sheets {
		key := strings.ToLower(sheets[i].Name)
		seen[key]++
		if n := seen[key]; n > 1 {
			suffix := fmt.Sprintf(" (%d)", n)
			base := sheets[i].Name
			if len(base)+len(suffix) > 31 {
				base = strings.TrimSpace(base[:31-len(suffix)])
			}
			sheets[i].Name = base + suffix
		}
	}
}
