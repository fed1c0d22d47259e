package parser

import (
	"testing"

	"github.com/rbastia/amadaily/internal/model"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	if got := NormalizeName("  Jane   DOE "); got != "jane doe" {
		t.Fatalf("got %q", got)
	}
	if NormalizeName("Jane Doe") != NormalizeName("JANE  DOE") {
		t.Fatalf("case and spacing variants must share a key")
	}
}

func TestNormalizeJobRef(t *testing.T) {
	t.Parallel()

	if NormalizeJobRef("JOB-104") != NormalizeJobRef("job 104") {
		t.Fatalf("punctuation variants must share a key")
	}
	if NormalizeJobRef("JOB-104") == NormalizeJobRef("JOB-1040") {
		t.Fatalf("distinct refs must not collide")
	}
	if got := NormalizeJobRef("  Main St.  Paving "); got != "main st paving" {
		t.Fatalf("got %q", got)
	}
}

func TestIsNoiseJob(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Column 3", "column12", "1234", "trk", "", "  "} {
		if !IsNoiseJob(s) {
			t.Fatalf("%q should be noise", s)
		}
	}
	for _, s := range []string{"JOB-104", "Main St Paving", "Route 9 Repave"} {
		if IsNoiseJob(s) {
			t.Fatalf("%q should not be noise", s)
		}
	}
}

func TestParseHours(t *testing.T) {
	t.Parallel()

	if v, ok := ParseHours(model.NumberCell("8", 8)); !ok || v != 8 {
		t.Fatalf("numeric cell: got %v ok=%v", v, ok)
	}
	if v, ok := ParseHours(model.TextCell("8 hrs")); !ok || v != 8 {
		t.Fatalf("annotated cell: got %v ok=%v", v, ok)
	}
	if v, ok := ParseHours(model.TextCell("4.5")); !ok || v != 4.5 {
		t.Fatalf("decimal cell: got %v ok=%v", v, ok)
	}
	if _, ok := ParseHours(model.TextCell("N/A")); ok {
		t.Fatalf("N/A must not parse")
	}
	if _, ok := ParseHours(model.TextCell("sick day")); ok {
		t.Fatalf("plain text must not parse")
	}
	if _, ok := ParseHours(model.EmptyCell()); ok {
		t.Fatalf("empty cell must not parse")
	}
}

func TestSplitTruckIDs(t *testing.T) {
	t.Parallel()

	if got := SplitTruckIDs("125126"); got != "125, 126" {
		t.Fatalf("got %q", got)
	}
	if got := SplitTruckIDs("125, 126"); got != "125, 126" {
		t.Fatalf("delimited input: got %q", got)
	}
	if got := SplitTruckIDs("125/126"); got != "125, 126" {
		t.Fatalf("slash delimited: got %q", got)
	}
	if got := SplitTruckIDs("125"); got != "125" {
		t.Fatalf("single ID: got %q", got)
	}
	if got := SplitTruckIDs(""); got != "" {
		t.Fatalf("empty: got %q", got)
	}
}

func TestFindColumn(t *testing.T) {
	t.Parallel()

	headers := []string{"Employee Name", "Date", "Job #", "Hours"}
	if got := findColumn(headers, "Employee", "Name"); got != "Employee Name" {
		t.Fatalf("got %q", got)
	}
	if got := findColumn(headers, "Job", "Job #"); got != "Job #" {
		t.Fatalf("got %q", got)
	}
	if got := findColumn(headers, "Truck"); got != "" {
		t.Fatalf("absent alias should yield empty, got %q", got)
	}
}
