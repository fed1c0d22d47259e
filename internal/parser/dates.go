package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Accepted explicit layouts, tried in order. Month-day forms without a year
// are handled separately via the loose regex plus the inferred default year.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2 Jan 2006",
}

var (
	reLooseDate = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})(?:[-/](\d{2,4}))?`)
	reWeekday   = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)\.?\s+`)
)

// InferYearFromFilename guesses the report year from a workbook filename like
// "Timesheet 9-7-25 thru 9-13-25.xlsx". Returns false when no date-like token
// is present.
func InferYearFromFilename(name string) (int, bool) {
	m := reLooseDate.FindStringSubmatch(name)
	if m == nil || m[3] == "" {
		return 0, false
	}
	yr, _ := strconv.Atoi(m[3])
	if yr < 100 {
		yr += 2000
	}
	return yr, true
}

// ParseDate interprets a cell as a calendar date. Day-of-week prefixes are
// tolerated ("Monday 9-8"); month-day forms without a year are completed with
// defaultYear. The result is normalized to midnight UTC.
func ParseDate(s string, defaultYear int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = reWeekday.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}

	m := reLooseDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	mon, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yr := defaultYear
	if m[3] != "" {
		yr, _ = strconv.Atoi(m[3])
		if yr < 100 {
			yr += 2000
		}
	}
	if yr == 0 || mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(yr, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject that here.
	if int(t.Month()) != mon || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateWindow bounds the plausible work dates for one report. Dates outside
// the window are treated as parse failures, not silently accepted.
type DateWindow struct {
	Min time.Time
	Max time.Time
}

// WindowForYear builds the default window around a report year: anything
// within the year itself or one year to either side.
func WindowForYear(year int) DateWindow {
	return DateWindow{
		Min: time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC),
		Max: time.Date(year+1, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t falls inside the window. A zero window accepts
// everything.
func (w DateWindow) Contains(t time.Time) bool {
	if w.Min.IsZero() && w.Max.IsZero() {
		return true
	}
	return !t.Before(w.Min) && !t.After(w.Max)
}
