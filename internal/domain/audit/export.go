package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CSV export for audit trails. Fields are quoted only when they contain a
// comma, quote, or newline, with internal quotes doubled. Timestamps are
// RFC 3339 in UTC.

var globalCSVHeader = []string{
	"Timestamp", "Activity", "Reviewer Name", "Reviewer Email",
	"Application ID", "Patient Name", "Application Status", "Details",
}

var intakeCSVHeader = []string{
	"Timestamp", "Activity", "Reviewer Name", "Reviewer Email", "Details",
}

func escapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVField(f))
	}
	b.WriteByte('\n')
}

func csvTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func detailsField(e *Entry) string {
	if e.Details == nil {
		return ""
	}
	return *e.Details
}

// BuildGlobalCSV renders the filtered global trail, one row per entry in
// the order given.
func BuildGlobalCSV(entries []*Entry) string {
	var b strings.Builder
	writeCSVRow(&b, globalCSVHeader)
	for _, e := range entries {
		row := []string{
			csvTimestamp(e.CreatedAt),
			LabelFor(e.Action),
			"", "", "", "", "",
			detailsField(e),
		}
		if e.User != nil {
			row[2] = e.User.Name
			row[3] = e.User.Email
		}
		if e.Intake != nil {
			row[4] = e.Intake.ID.String()
			row[5] = e.Intake.ClientName
			row[6] = e.Intake.Status
		}
		writeCSVRow(&b, row)
	}
	return b.String()
}

// BuildIntakeCSV renders a single intake's trail, one row per entry in the
// order given.
func BuildIntakeCSV(entries []*Entry) string {
	var b strings.Builder
	writeCSVRow(&b, intakeCSVHeader)
	for _, e := range entries {
		row := []string{
			csvTimestamp(e.CreatedAt),
			LabelFor(e.Action),
			"", "",
			detailsField(e),
		}
		if e.User != nil {
			row[2] = e.User.Name
			row[3] = e.User.Email
		}
		writeCSVRow(&b, row)
	}
	return b.String()
}

// GlobalCSVFilename names a global export after the day it was produced.
func GlobalCSVFilename(now time.Time) string {
	return fmt.Sprintf("audit-trail-%s.csv", now.UTC().Format("2006-01-02"))
}

// IntakeCSVFilename names a per-intake export after the intake and the day.
func IntakeCSVFilename(intakeID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("audit-log-%s-%s.csv", intakeID, now.UTC().Format("2006-01-02"))
}
