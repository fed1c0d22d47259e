package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/rbastia/amadaily/internal/parser"
)

func writeInputWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			r := row
			if err := f.SetSheetRow(name, cell, &r); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func testCoordinator() *Coordinator {
	return NewCoordinator(zerolog.Nop())
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "Timesheet 9-7-25.xlsx")
	writeInputWorkbook(t, input, map[string][][]interface{}{
		"Timesheet": {
			{"Employee", "Date", "Job", "Hours"},
			{"Jane Doe", "Monday 9-8", "JOB-104", "4.5"},
			{"Jane Doe", "Monday 9-8", "JOB-104", "3.5"},
			{"John Roe", "9-9-25", "Main St Paving", "6"},
			{"Bad Row", "TBD", "JOB-104", "8"},
		},
		"New Formula Job Sheet": {
			{"Job", "Date", "Hours", "Employee", "Truck"},
			{"JOB-104", "9-8-25", "8", "", "125126"},
			{"JOB-999", "9-8-25", "5", "", ""},
		},
	})

	summary, err := testCoordinator().Run(input, Options{OutputDir: dir, EmitIntermediate: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.TimeEntries != 3 || summary.JobEntries != 2 {
		t.Fatalf("entry counts: %+v", summary)
	}
	if summary.Matched != 1 || summary.TimeOnly != 1 || summary.JobOnly != 1 {
		t.Fatalf("match counts: %+v", summary)
	}
	if len(summary.Skipped) != 1 {
		t.Fatalf("skips: %+v", summary.Skipped)
	}

	// Default name: input stem plus earliest work date.
	wantOut := filepath.Join(dir, "Timesheet 9-7-25_20250908_combined.xlsx")
	if summary.OutputPath != wantOut {
		t.Fatalf("output path: %q", summary.OutputPath)
	}
	if _, err := os.Stat(wantOut); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(summary.Intermediates) != 2 {
		t.Fatalf("intermediates: %v", summary.Intermediates)
	}
	for _, p := range summary.Intermediates {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("intermediate missing: %v", err)
		}
	}

	f, err := excelize.OpenFile(wantOut)
	if err != nil {
		t.Fatalf("reopen output: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	sheets := f.GetSheetList()
	if len(sheets) < 3 {
		t.Fatalf("expected per-job sheets plus Summary and Anomalies: %v", sheets)
	}
	if sheets[len(sheets)-2] != "Summary" || sheets[len(sheets)-1] != "Anomalies" {
		t.Fatalf("trailing sheets: %v", sheets)
	}
}

func TestRun_MissingSheetsFailFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "bad.xlsx")
	writeInputWorkbook(t, input, map[string][][]interface{}{
		"Sheet1": {{"nothing"}},
	})

	_, err := testCoordinator().Run(input, Options{OutputDir: dir})
	var notFound *parser.SheetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want SheetNotFoundError, got %v", err)
	}
	if len(notFound.Missing) != 2 {
		t.Fatalf("both sheets must be reported: %+v", notFound)
	}
	// Nothing written on failure.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "bad.xlsx" {
			t.Fatalf("unexpected output %s", e.Name())
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "empty 1-1-25.xlsx")
	writeInputWorkbook(t, input, map[string][][]interface{}{
		"Timesheet": {
			{"Employee", "Date", "Job", "Hours"},
			{"Jane Doe", "TBD", "JOB-104", "8"},
		},
		"New Formula Job Sheet": {
			{"Job", "Date", "Hours"},
			{"Column 3", "1-2-25", "8"},
		},
	})

	_, err := testCoordinator().Run(input, Options{OutputDir: dir})
	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("want EmptyInputError, got %v", err)
	}
	if empty.TimesheetRows != 1 || empty.JobSheetRows != 1 {
		t.Fatalf("row counts: %+v", empty)
	}
}

func TestRun_OneEmptySideIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "lopsided 9-7-25.xlsx")
	writeInputWorkbook(t, input, map[string][][]interface{}{
		"Timesheet": {
			{"Employee", "Date", "Job", "Hours"},
			{"Jane Doe", "9-8-25", "JOB-104", "8"},
		},
		"New Formula Job Sheet": {
			{"Job", "Date", "Hours"},
			{"Column 3", "9-8-25", "8"}, // noise label, whole side skips
		},
	})

	_, err := testCoordinator().Run(input, Options{OutputDir: dir})
	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("want EmptyInputError, got %v", err)
	}
	if empty.TimeEntries != 1 || empty.JobEntries != 0 {
		t.Fatalf("entry counts: %+v", empty)
	}
	if !strings.Contains(err.Error(), "job-sheet") {
		t.Fatalf("error must name the empty side: %v", err)
	}
	// No report written for a one-sided run.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "lopsided 9-7-25.xlsx" {
			t.Fatalf("unexpected output %s", e.Name())
		}
	}
}

func TestRun_SingleSheetAndExplicitName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "input 9-7-25.xlsx")
	writeInputWorkbook(t, input, map[string][][]interface{}{
		"Timesheet": {
			{"Employee", "Date", "Job", "Hours"},
			{"Jane Doe", "9-8-25", "JOB-104", "8"},
		},
		"New Formula Job Sheet": {
			{"Job", "Date", "Hours"},
			{"JOB-104", "9-8-25", "8"},
		},
	})

	summary, err := testCoordinator().Run(input, Options{
		OutputDir:   dir,
		SingleSheet: true,
		ReportName:  "weekly",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := filepath.Join(dir, "weekly_combined.xlsx")
	if summary.OutputPath != want {
		t.Fatalf("output path: %q", summary.OutputPath)
	}

	f, err := excelize.OpenFile(want)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Combined" {
		t.Fatalf("single-sheet output: %v", sheets)
	}
}

func TestAllowedTransitions(t *testing.T) {
	t.Parallel()

	ok := [][2]State{
		{StateReading, StateNormalizing},
		{StateNormalizing, StateReconciling},
		{StateReconciling, StateAggregating},
		{StateAggregating, StateRendering},
		{StateRendering, StateDone},
		{StateReading, StateFailed},
		{StateRendering, StateFailed},
	}
	for _, tr := range ok {
		if !allowedTransition(tr[0], tr[1]) {
			t.Fatalf("%s -> %s should be allowed", tr[0], tr[1])
		}
	}
	bad := [][2]State{
		{StateReading, StateReconciling},
		{StateDone, StateFailed},
		{StateFailed, StateFailed},
		{StateDone, StateReading},
		{StateNormalizing, StateReading},
	}
	for _, tr := range bad {
		if allowedTransition(tr[0], tr[1]) {
			t.Fatalf("%s -> %s should be rejected", tr[0], tr[1])
		}
	}
}
