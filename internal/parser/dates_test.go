package parser

import (
	"testing"
	"time"
)

func TestInferYearFromFilename(t *testing.T) {
	t.Parallel()

	year, ok := InferYearFromFilename("Timesheet 9-7-25 thru 9-13-25.xlsx")
	if !ok || year != 2025 {
		t.Fatalf("want 2025, got %d ok=%v", year, ok)
	}
	year, ok = InferYearFromFilename("payroll 12-29-2024.xlsx")
	if !ok || year != 2024 {
		t.Fatalf("want 2024, got %d ok=%v", year, ok)
	}
	if _, ok := InferYearFromFilename("weekly report.xlsx"); ok {
		t.Fatalf("expected no year in plain filename")
	}
	// Month-day without a year is not a year hint.
	if _, ok := InferYearFromFilename("report 9-7.xlsx"); ok {
		t.Fatalf("expected no year from month-day token")
	}
}

func TestParseDate_ExplicitLayouts(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"2025-09-08", "9/8/2025", "9-8-25", "Sep 8, 2025", "8-Sep-2025"} {
		got, ok := ParseDate(s, 0)
		if !ok {
			t.Fatalf("parse %q failed", s)
		}
		want := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("parse %q: want %s got %s", s, want, got)
		}
	}
}

func TestParseDate_WeekdayPrefixAndDefaultYear(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate("Monday 9-8", 2025)
	if !ok {
		t.Fatalf("parse failed")
	}
	want := time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}

	if _, ok := ParseDate("Tue 9/9", 2025); !ok {
		t.Fatalf("abbreviated weekday should parse")
	}
}

func TestParseDate_Rejections(t *testing.T) {
	t.Parallel()

	cases := []string{"", "TBD", "2-30-2025", "13-40", "9-8"}
	for _, s := range cases {
		if s == "9-8" {
			// valid only with a default year
			if _, ok := ParseDate(s, 0); ok {
				t.Fatalf("parse %q without default year should fail", s)
			}
			continue
		}
		if _, ok := ParseDate(s, 2025); ok {
			t.Fatalf("parse %q should fail", s)
		}
	}
}

func TestDateWindow(t *testing.T) {
	t.Parallel()

	w := WindowForYear(2025)
	in := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	out := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !w.Contains(in) {
		t.Fatalf("adjacent-year date should be inside the window")
	}
	if w.Contains(out) {
		t.Fatalf("far date should be outside the window")
	}

	var zero DateWindow
	if !zero.Contains(out) {
		t.Fatalf("zero window must accept everything")
	}
}
