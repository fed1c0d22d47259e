package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rbastia/amadaily/internal/model"
)

// Required source sheets. Lookup is case-insensitive with whitespace
// collapsed, so "timesheet" and "NEW FORMULA JOB SHEET " both resolve.
const (
	TimesheetSheet = "Timesheet"
	JobSheetSheet  = "New Formula Job Sheet"
)

// SheetNotFoundError reports every required sheet missing from the workbook,
// alongside the sheets it actually contains. Detected up front, before any
// row is parsed.
type SheetNotFoundError struct {
	Missing []string
	Present []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("workbook is missing required sheet(s) %s; found sheets: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// Reader wraps one open workbook and hands out typed raw rows per sheet.
// It makes a single forward pass over each sheet and never seeks back.
type Reader struct {
	file   *excelize.File
	source string
}

// Open opens a workbook from disk.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Reader{file: f, source: path}, nil
}

// OpenReader opens a workbook from a stream, e.g. an uploaded file.
func OpenReader(r io.Reader, source string) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", source, err)
	}
	return &Reader{file: f, source: source}, nil
}

// Close releases the underlying workbook.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Source returns the path or name the workbook was opened from.
func (r *Reader) Source() string {
	return r.source
}

// ResolveSheets maps each wanted sheet name to the actual name in the
// workbook. All absences are collected into one SheetNotFoundError so the
// user learns everything wrong with the file in a single run.
func (r *Reader) ResolveSheets(wanted ...string) (map[string]string, error) {
	present := r.file.GetSheetList()
	byKey := make(map[string]string, len(present))
	for _, name := range present {
		byKey[NormalizeName(name)] = name
	}

	resolved := make(map[string]string, len(wanted))
	var missing []string
	for _, w := range wanted {
		if actual, ok := byKey[NormalizeName(w)]; ok {
			resolved[w] = actual
		} else {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return nil, &SheetNotFoundError{Missing: missing, Present: present}
	}
	return resolved, nil
}

// ReadSheet streams one sheet into raw rows. The header row is the first row
// within the opening ten that has at least two non-blank cells; rows above it
// are discarded. Blank rows are skipped, blank cells inside a kept row are
// retained as empty variants.
func (r *Reader) ReadSheet(sheet string) ([]model.RawRow, error) {
	it, err := r.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer it.Close()

	var (
		headers []string
		rows    []model.RawRow
		rowNum  int
	)
	for it.Next() {
		rowNum++
		cols, err := it.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s row %d: %w", sheet, rowNum, err)
		}

		if headers == nil {
			if rowNum > 10 {
				break
			}
			if countNonBlank(cols) >= 2 {
				headers = buildHeaders(cols)
			}
			continue
		}

		if countNonBlank(cols) == 0 {
			continue
		}
		cells := make(map[string]model.CellValue, len(headers))
		for i, h := range headers {
			if i < len(cols) {
				cells[h] = classifyCell(cols[i])
			} else {
				cells[h] = model.EmptyCell()
			}
		}
		rows = append(rows, model.RawRow{Index: rowNum, Headers: headers, Cells: cells})
	}
	return rows, nil
}

func countNonBlank(cols []string) int {
	n := 0
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// buildHeaders names every column: blank headers become "Column<n>",
// duplicates get a " (2)"-style suffix so no data is shadowed.
func buildHeaders(cols []string) []string {
	seen := make(map[string]int, len(cols))
	headers := make([]string, len(cols))
	for i, c := range cols {
		h := strings.TrimSpace(c)
		if h == "" {
			h = fmt.Sprintf("Column%d", i+1)
		}
		key := NormalizeName(h)
		seen[key]++
		if n := seen[key]; n > 1 {
			h = fmt.Sprintf("%s (%d)", h, n)
		}
		headers[i] = h
	}
	return headers
}

// classifyCell tags a streamed cell. Clean numerics become numbers (thousands
// separators stripped); cells that already read as full dates become dates;
// year-less date labels stay text for the normalizers to complete; everything
// else stays text.
func classifyCell(raw string) model.CellValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.EmptyCell()
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return model.NumberCell(raw, v)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateCell(raw, midnight(t))
		}
	}
	return model.TextCell(raw)
}
