package model

import (
	"strings"
	"time"
)

// CellKind tags the variant held by a CellValue.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// CellValue is the typed cell representation at the raw-row boundary.
// The reader classifies each cell exactly once; the normalizers coerce and
// validate. Nothing downstream of normalization carries a CellValue.
type CellValue struct {
	Kind   CellKind
	Text   string // raw cell text as read, for every kind
	Number float64
	Time   time.Time
}

// EmptyCell returns the empty variant.
func EmptyCell() CellValue {
	return CellValue{Kind: CellEmpty}
}

// TextCell wraps a raw string cell.
func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// NumberCell wraps a numeric cell, keeping the raw text alongside the value.
func NumberCell(raw string, v float64) CellValue {
	return CellValue{Kind: CellNumber, Text: raw, Number: v}
}

// DateCell wraps a cell the reader could already resolve to a calendar date.
func DateCell(raw string, t time.Time) CellValue {
	return CellValue{Kind: CellDate, Text: raw, Time: t}
}

// IsEmpty reports whether the cell holds no usable content.
func (c CellValue) IsEmpty() bool {
	return c.Kind == CellEmpty || strings.TrimSpace(c.Text) == ""
}

// String returns the raw text form of the cell.
func (c CellValue) String() string {
	return c.Text
}

// RawRow is one source row keyed by column header, ordered by Headers.
// It lives only between the reader and the normalizers.
type RawRow struct {
	Index   int // 1-based row number in the source sheet
	Headers []string
	Cells   map[string]CellValue
}

// Get returns the cell under the given header, or the empty variant.
func (r RawRow) Get(header string) CellValue {
	if c, ok := r.Cells[header]; ok {
		return c
	}
	return EmptyCell()
}
