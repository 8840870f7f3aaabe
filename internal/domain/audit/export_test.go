package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEscapeCSVField(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"has,comma", `"has,comma"`},
		{`has "quotes"`, `"has ""quotes"""`},
		{"has\nnewline", "\"has\nnewline\""},
		{"semi;colon", "semi;colon"},
	}
	for _, c := range cases {
		if got := escapeCSVField(c.in); got != c.want {
			t.Errorf("escapeCSVField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildGlobalCSV(t *testing.T) {
	intakeID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	details := `{"newStatus":"APPROVED"}`
	entries := []*Entry{
		{
			Action:    ActionStatusChanged,
			Details:   &details,
			CreatedAt: time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC),
			User:      &ActorSummary{Name: "Chen, Sarah", Email: "sarah@example.com"},
			Intake:    &IntakeSummary{ID: intakeID, ClientName: "Jane Martinez", Status: "APPROVED"},
		},
	}

	csv := BuildGlobalCSV(entries)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if lines[0] != "Timestamp,Activity,Reviewer Name,Reviewer Email,Application ID,Patient Name,Application Status,Details" {
		t.Errorf("header = %q", lines[0])
	}

	want := `2026-03-05T12:30:00Z,Status Changed,"Chen, Sarah",sarah@example.com,` +
		intakeID.String() + `,Jane Martinez,APPROVED,"{""newStatus"":""APPROVED""}"`
	if lines[1] != want {
		t.Errorf("row = %q\nwant  %q", lines[1], want)
	}
}

func TestBuildGlobalCSVActionLabels(t *testing.T) {
	entries := []*Entry{
		{Action: ActionCreated, CreatedAt: time.Unix(0, 0)},
		{Action: ActionViewModePrivileged, CreatedAt: time.Unix(0, 0)},
		{Action: "SOMETHING_NEW", CreatedAt: time.Unix(0, 0)},
	}
	csv := BuildGlobalCSV(entries)
	for _, label := range []string{"Application Submitted", "Viewed Full PII", "SOMETHING_NEW"} {
		if !strings.Contains(csv, label) {
			t.Errorf("csv missing label %q", label)
		}
	}
}

func TestBuildIntakeCSV(t *testing.T) {
	entries := []*Entry{
		{
			Action:    ActionViewed,
			CreatedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
			User:      &ActorSummary{Name: "Rev", Email: "rev@example.com"},
		},
		{
			Action:    ActionViewModeRedacted,
			CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
			User:      &ActorSummary{Name: "Rev", Email: "rev@example.com"},
		},
	}

	csv := BuildIntakeCSV(entries)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if lines[0] != "Timestamp,Activity,Reviewer Name,Reviewer Email,Details" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2026-01-01T08:00:00Z,Viewed") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2026-01-01T09:00:00Z,Switched to Redacted") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestCSVFilenames(t *testing.T) {
	now := time.Date(2026, 3, 5, 23, 30, 0, 0, time.UTC)
	if got := GlobalCSVFilename(now); got != "audit-trail-2026-03-05.csv" {
		t.Errorf("global filename = %q", got)
	}
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	want := "audit-log-11111111-2222-3333-4444-555555555555-2026-03-05.csv"
	if got := IntakeCSVFilename(id, now); got != want {
		t.Errorf("intake filename = %q", got)
	}
}

func TestCSVTimestampUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, 3, 5, 19, 0, 0, 0, loc)
	if got := csvTimestamp(local); got != "2026-03-06T00:00:00Z" {
		t.Errorf("timestamp = %q, want UTC rendering", got)
	}
}
