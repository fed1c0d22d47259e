package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/rbastia/amadaily/internal/model"
)

// WriteError wraps an output failure with the path involved. The partial
// file never survives: rendering goes to a temp file that is renamed into
// place only on success.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteReport serializes the report workbook to path atomically.
func WriteReport(report model.CombinedReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := fillWorkbook(f, report.Sheets); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return saveAtomic(f, path)
}

// WriteTimeEntries dumps normalized time entries as an intermediate workbook.
func WriteTimeEntries(entries []model.TimeEntry, path string) error {
	rows := [][]string{{"Employee", "Date", "Job", "Hours", "Source Row"}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.EmployeeName, model.DateKey(e.Date), e.JobName,
			formatHours(e.Hours), fmt.Sprintf("%d", e.SourceRow),
		})
	}
	return writeSingleSheet("Time Entries", rows, path)
}

// WriteJobEntries dumps normalized job entries as an intermediate workbook.
func WriteJobEntries(entries []model.JobEntry, path string) error {
	rows := [][]string{{"Job", "Date", "Allocated Hours", "Employee", "Trucks", "Description", "Source Row"}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.JobName, model.DateKey(e.Date), formatHours(e.AllocatedHours),
			e.EmployeeName, e.Trucks, e.Description, fmt.Sprintf("%d", e.SourceRow),
		})
	}
	return writeSingleSheet("Job Entries", rows, path)
}

func writeSingleSheet(name string, rows [][]string, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := fillWorkbook(f, []model.ReportSheet{{Name: name, Rows: rows}}); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return saveAtomic(f, path)
}

func fillWorkbook(f *excelize.File, sheets []model.ReportSheet) error {
	for i, sheet := range sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it behind.
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return err
			}
		}
		if err := fillSheet(f, sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return nil
}

func fillSheet(f *excelize.File, sheet model.ReportSheet) error {
	widths := make([]float64, 0)
	for i, row := range sheet.Rows {
		if row == nil {
			continue // spacer row
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			if w := float64(len(v)) + 2; w > widths[j] {
				widths[j] = w
			}
		}
		if err := f.SetSheetRow(sheet.Name, cell, &vals); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
		return err
	}
	for j, w := range widths {
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// saveAtomic writes to a temp file in the target directory and renames into
// place, removing the temp file on any failure.
func saveAtomic(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".amadaily-*.xlsx")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
