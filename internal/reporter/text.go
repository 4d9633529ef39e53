package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from a completed scan
func (r *TextReporter) Generate(report *models.Report) error {
	// Header
	r.printHeader()
	r.printf("Entity Type: %s\n", report.EntityType)
	r.printf("Timestamp: %s\n\n", formatTimestamp(report.Timestamp))

	// Overall Summary
	r.printSummary(report)

	// Per-document details
	if len(report.Details) > 0 {
		r.printDetails(report.Details)
	}

	// Errors
	if len(report.Errors) > 0 {
		r.printErrors(report.Errors)
	}

	return nil
}

// GenerateStatus prints the current consistency status for an entity type
func (r *TextReporter) GenerateStatus(status *models.Status) error {
	r.printf("Entity Type: %s\n", status.EntityType)
	r.printf("Consistent: %s\n", formatVerdict(status.IsConsistent))
	r.printf("Last Check: %s\n", formatTimestamp(status.LastCheckTime))
	if !status.LastConsistentTime.IsZero() {
		r.printf("Last Consistent: %s\n", formatTimestamp(status.LastConsistentTime))
	} else {
		r.printf("Last Consistent: never\n")
	}
	if status.ReportID != "" {
		r.printf("Report: %s\n", status.ReportID)
	}
	return nil
}

// GenerateList prints a compact one-line-per-report listing
func (r *TextReporter) GenerateList(reports []models.Report) error {
	if len(reports) == 0 {
		r.printf("No reports found.\n")
		return nil
	}

	r.printf("%-20s  %-12s  %6s  %6s  %6s  %6s  %s\n",
		"TIMESTAMP", "ENTITY", "DOCS", "FOUND", "FIXED", "DEL", "RESULT")
	for i := range reports {
		rep := &reports[i]
		r.printf("%-20s  %-12s  %6d  %6d  %6d  %6d  %s\n",
			formatTimestamp(rep.Timestamp),
			rep.EntityType,
			rep.TotalDocuments,
			rep.InconsistenciesFound,
			rep.RepairsApplied,
			rep.DocumentsDeleted,
			formatVerdict(rep.Resolved()))
	}
	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║            Docsweep Scan Report            ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printSummary prints the overall summary section
func (r *TextReporter) printSummary(report *models.Report) {
	r.printf("Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Documents Scanned: %d\n", report.TotalDocuments)
	r.printf("  Inconsistencies Found: %d\n", report.InconsistenciesFound)
	r.printf("  Repairs Applied: %d\n", report.RepairsApplied)
	r.printf("  Documents Deleted: %d\n", report.DocumentsDeleted)
	r.printf("  Duration: %s\n", report.Duration.Round(time.Millisecond))
	r.printf("  Result: %s\n\n", formatVerdict(report.Resolved()))
}

// printDetails prints one line per document-level action
func (r *TextReporter) printDetails(details []models.DetailEntry) {
	r.printf("Details:\n")
	r.printf("--------------------------------------------------\n")

	for _, d := range details {
		switch d.Action {
		case models.ActionDeleted:
			r.printf("  [DELETED] %s: %s\n", d.DocumentID, d.Details)
		case models.ActionNone:
			r.printf("  [UNREPAIRED] %s: %s\n", d.DocumentID, d.Details)
		default:
			r.printf("  [%s] %s field %q: %v → %v\n",
				strings.ToUpper(string(d.Action)), d.DocumentID, d.Field, d.OldValue, d.NewValue)
		}
	}
	r.printf("\n")
}

// printErrors prints scan-level and per-document errors
func (r *TextReporter) printErrors(errs []string) {
	r.printf("Errors:\n")
	r.printf("--------------------------------------------------\n")
	for i, e := range errs {
		r.printf("  %d. %s\n", i+1, e)
	}
	r.printf("\n")
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatVerdict renders a binary consistency verdict
func formatVerdict(ok bool) string {
	if ok {
		return "CONSISTENT"
	}
	return "INCONSISTENT"
}
