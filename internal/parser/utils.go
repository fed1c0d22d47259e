package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rbastia/amadaily/internal/model"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reFirstNum  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	rePunct     = regexp.MustCompile(`[^a-z0-9]+`)
	reNoiseCol  = regexp.MustCompile(`^column\s*\d+$`)
	reDigitsRun = regexp.MustCompile(`^\d+$`)
	reTruckSep  = regexp.MustCompile(`[,;/\s]+`)
)

// NormalizeName folds an employee spelling into its identity key: lower case,
// trimmed, internal whitespace collapsed. Matching is exact beyond that.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return reSpaces.ReplaceAllString(s, " ")
}

// DisplayName tidies an employee spelling for output without changing case.
func DisplayName(s string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeJobRef folds a job label into its matching key: lower case,
// punctuation replaced by spaces, runs collapsed. "JOB-104" and "job 104"
// share a key; "JOB-104" and "JOB-1040" never do.
func NormalizeJobRef(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rePunct.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// IsNoiseJob reports whether a job label is workbook noise rather than a real
// job: spreadsheet filler headers ("Column 3"), bare digit runs, or the
// truck-column spillover label.
func IsNoiseJob(s string) bool {
	key := NormalizeJobRef(s)
	if key == "" || key == "trk" {
		return true
	}
	if reNoiseCol.MatchString(key) {
		return true
	}
	return reDigitsRun.MatchString(key)
}

// ParseHours extracts an hour count from a cell. Clean numerics parse
// directly; annotated forms ("8 hrs") yield their first number; "N/A" and
// other non-numeric text yield false.
func ParseHours(c model.CellValue) (float64, bool) {
	if c.Kind == model.CellNumber {
		return c.Number, true
	}
	s := strings.TrimSpace(c.Text)
	if s == "" {
		return 0, false
	}
	if strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	m := reFirstNum.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitTruckIDs repairs truck columns that arrive as one concatenated digit
// run ("125126" for trucks 125 and 126) and joins distinct IDs with ", ".
func SplitTruckIDs(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",;/ ") {
		parts := reTruckSep.Split(s, -1)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return strings.Join(out, ", ")
	}
	if !reDigitsRun.MatchString(s) || len(s) <= 4 {
		return s
	}
	// Fleet IDs are three digits, so an undelimited run splits in threes
	// when possible, otherwise in two equal halves.
	if len(s)%3 == 0 {
		return joinChunks(s, 3)
	}
	if len(s)%2 == 0 {
		return joinChunks(s, len(s)/2)
	}
	return s
}

func joinChunks(s string, width int) string {
	var out []string
	for i := 0; i+width <= len(s); i += width {
		out = append(out, s[i:i+width])
	}
	return strings.Join(out, ", ")
}

// findColumn resolves the first header matching any alias, compared
// case-insensitively with whitespace collapsed. Returns "" when absent.
func findColumn(headers []string, aliases ...string) string {
	for _, h := range headers {
		key := NormalizeName(h)
		for _, a := range aliases {
			if key == NormalizeName(a) {
				return h
			}
		}
	}
	// Prefix fallback so "Employee Name" still resolves "Employee".
	for _, h := range headers {
		key := NormalizeName(h)
		for _, a := range aliases {
			if strings.HasPrefix(key, NormalizeName(a)) {
				return h
			}
		}
	}
	return ""
}
