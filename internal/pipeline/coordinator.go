// Package pipeline drives one combine run end to end: read, normalize,
// reconcile, aggregate, render, write.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rbastia/amadaily/internal/combine"
	"github.com/rbastia/amadaily/internal/exporter"
	"github.com/rbastia/amadaily/internal/model"
	"github.com/rbastia/amadaily/internal/parser"
)

// State is one stage of a run. A run moves strictly forward; any stage may
// jump to StateFailed, and nothing leaves a terminal state.
type State string

const (
	StateReading     State = "Reading"
	StateNormalizing State = "Normalizing"
	StateReconciling State = "Reconciling"
	StateAggregating State = "Aggregating"
	StateRendering   State = "Rendering"
	StateDone        State = "Done"
	StateFailed      State = "Failed"
)

func allowedTransition(from, to State) bool {
	if to == StateFailed {
		return from != StateDone && from != StateFailed
	}
	switch from {
	case StateReading:
		return to == StateNormalizing
	case StateNormalizing:
		return to == StateReconciling
	case StateReconciling:
		return to == StateAggregating
	case StateAggregating:
		return to == StateRendering
	case StateRendering:
		return to == StateDone
	default:
		return false
	}
}

// EmptyInputError is returned when a sheet was present but no usable entry
// survived its normalization. An empty side is fatal: a report built from it
// would be silently misleading.
type EmptyInputError struct {
	TimesheetRows int
	JobSheetRows  int
	TimeEntries   int
	JobEntries    int
}

func (e *EmptyInputError) Error() string {
	switch {
	case e.TimeEntries == 0 && e.JobEntries == 0:
		return fmt.Sprintf("no usable entries: all %d timesheet rows and %d job-sheet rows skipped",
			e.TimesheetRows, e.JobSheetRows)
	case e.TimeEntries == 0:
		return fmt.Sprintf("no usable timesheet entries: all %d rows skipped", e.TimesheetRows)
	default:
		return fmt.Sprintf("no usable job-sheet entries: all %d rows skipped", e.JobSheetRows)
	}
}

// Options are the per-run knobs.
type Options struct {
	SingleSheet      bool
	ReportName       string // output stem; derived from input + dates when empty
	EmitIntermediate bool
	OutputDir        string
	TimesheetSheet   string // sheet-name overrides, defaults when empty
	JobSheetSheet    string
	DefaultYear      int // year for year-less dates; inferred from filename when 0
}

// Coordinator runs the pipeline. One coordinator handles one run at a time;
// the server serializes calls.
type Coordinator struct {
	log zerolog.Logger
}

// NewCoordinator builds a coordinator logging to the given logger.
func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{log: log}
}

// Run combines one workbook into a report, returning the run summary. Bad
// rows are reported in the summary, not errors; only structural problems
// (unreadable workbook, missing sheets, empty input, write failure) fail the
// run.
func (c *Coordinator) Run(inputPath string, opts Options) (*model.RunSummary, error) {
	runID := uuid.NewString()
	log := c.log.With().Str("run_id", runID).Str("input", filepath.Base(inputPath)).Logger()
	start := time.Now()

	state := StateReading
	advance := func(to State) {
		if !allowedTransition(state, to) {
			// Transition table bug, not a data problem.
			panic(fmt.Sprintf("pipeline transition %s -> %s", state, to))
		}
		state = to
		log.Debug().Str("state", string(to)).Msg("pipeline state")
	}
	fail := func(err error) (*model.RunSummary, error) {
		advance(StateFailed)
		log.Error().Err(err).Msg("run failed")
		return nil, err
	}

	timesheetName := opts.TimesheetSheet
	if timesheetName == "" {
		timesheetName = parser.TimesheetSheet
	}
	jobSheetName := opts.JobSheetSheet
	if jobSheetName == "" {
		jobSheetName = parser.JobSheetSheet
	}

	timeRows, jobRows, err := readSheets(inputPath, timesheetName, jobSheetName)
	if err != nil {
		return fail(err)
	}
	log.Info().Int("timesheet_rows", len(timeRows)).Int("job_rows", len(jobRows)).Msg("workbook read")

	advance(StateNormalizing)
	year := opts.DefaultYear
	if year == 0 {
		if y, ok := parser.InferYearFromFilename(filepath.Base(inputPath)); ok {
			year = y
		} else {
			year = time.Now().Year()
		}
	}
	window := parser.WindowForYear(year)

	tn := parser.TimesheetNormalizer{DefaultYear: year, Window: window}
	times, timeSkips := tn.Normalize(timeRows)
	jn := parser.JobSheetNormalizer{DefaultYear: year, Window: window}
	jobs, jobSkips := jn.Normalize(jobRows)
	skipped := append(timeSkips, jobSkips...)
	log.Info().
		Int("time_entries", len(times)).
		Int("job_entries", len(jobs)).
		Int("skipped", len(skipped)).
		Msg("normalized")

	if len(times) == 0 || len(jobs) == 0 {
		return fail(&EmptyInputError{
			TimesheetRows: len(timeRows),
			JobSheetRows:  len(jobRows),
			TimeEntries:   len(times),
			JobEntries:    len(jobs),
		})
	}

	advance(StateReconciling)
	result := combine.Reconcile(times, jobs)

	advance(StateAggregating)
	agg := combine.Aggregate(result)

	advance(StateRendering)
	builder := exporter.Builder{SingleSheet: opts.SingleSheet}
	report := builder.Build(agg)

	stem := opts.ReportName
	if stem == "" {
		stem = defaultReportName(inputPath, times, jobs)
	}

	// Intermediates land before the combined report so a write failure never
	// leaves a report without its backing dumps.
	var intermediates []string
	if opts.EmitIntermediate {
		tp := filepath.Join(opts.OutputDir, stem+"_time_entries.xlsx")
		jp := filepath.Join(opts.OutputDir, stem+"_job_entries.xlsx")
		if err := exporter.WriteTimeEntries(times, tp); err != nil {
			return fail(err)
		}
		if err := exporter.WriteJobEntries(jobs, jp); err != nil {
			return fail(err)
		}
		intermediates = []string{tp, jp}
	}

	outPath := filepath.Join(opts.OutputDir, stem+"_combined.xlsx")
	if err := exporter.WriteReport(report, outPath); err != nil {
		return fail(err)
	}

	advance(StateDone)
	summary := &model.RunSummary{
		RunID:         runID,
		TimesheetRows: len(timeRows),
		JobSheetRows:  len(jobRows),
		TimeEntries:   len(times),
		JobEntries:    len(jobs),
		Skipped:       skipped,
		NameVariants:  result.NameVariants,
		OutputPath:    outPath,
		Intermediates: intermediates,
		Duration:      time.Since(start).Round(time.Millisecond).String(),
	}
	for _, m := range result.Matches {
		switch m.Status {
		case model.StatusMatched:
			summary.Matched++
		case model.StatusTimeOnly:
			summary.TimeOnly++
		case model.StatusJobOnly:
			summary.JobOnly++
		}
	}
	log.Info().
		Str("output", outPath).
		Int("matched", summary.Matched).
		Int("time_only", summary.TimeOnly).
		Int("job_only", summary.JobOnly).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")
	return summary, nil
}

// readSheets opens the workbook, resolves both required sheets up front and
// streams them. The reader is fully closed before any output file is opened.
func readSheets(inputPath, timesheetName, jobSheetName string) (timeRows, jobRows []model.RawRow, err error) {
	r, err := parser.Open(inputPath)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	resolved, err := r.ResolveSheets(timesheetName, jobSheetName)
	if err != nil {
		return nil, nil, err
	}
	if timeRows, err = r.ReadSheet(resolved[timesheetName]); err != nil {
		return nil, nil, err
	}
	if jobRows, err = r.ReadSheet(resolved[jobSheetName]); err != nil {
		return nil, nil, err
	}
	return timeRows, jobRows, nil
}

// defaultReportName is the input stem plus the earliest work date, e.g.
// "Timesheet 9-7-25_20250907".
func defaultReportName(inputPath string, times []model.TimeEntry, jobs []model.JobEntry) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	var min time.Time
	for _, t := range times {
		if min.IsZero() || t.Date.Before(min) {
			min = t.Date
		}
	}
	for _, j := range jobs {
		if min.IsZero() || j.Date.Before(min) {
			min = j.Date
		}
	}
	if min.IsZero() {
		return stem
	}
	return stem + "_" + min.Format("20060102")
}
