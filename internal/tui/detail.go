package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 7

// maxDetailLines caps how many per-document entries the panel shows.
const maxDetailLines = 4

// renderDetail produces the detail view for a selected report.
func renderDetail(report *models.Report, width int) string {
	if report == nil {
		return styleDetailPanel.Width(width).Render("No report selected")
	}

	var b strings.Builder

	verdict := verdictStyle(report.Resolved()).Render(verdictLabel(report.Resolved()))
	b.WriteString(fmt.Sprintf("%s  %s  %d docs in %s\n",
		verdict, report.EntityType, report.TotalDocuments, report.Duration.Round(time.Millisecond)))

	b.WriteString(fmt.Sprintf("Found: %d  Repaired: %d  Deleted: %d",
		report.InconsistenciesFound, report.RepairsApplied, report.DocumentsDeleted))
	if len(report.Errors) > 0 {
		b.WriteString(fmt.Sprintf("  Errors: %d", len(report.Errors)))
	}
	b.WriteString("\n")

	for i, d := range report.Details {
		if i >= maxDetailLines {
			b.WriteString(fmt.Sprintf("… %d more", len(report.Details)-maxDetailLines))
			break
		}
		b.WriteString(detailLine(d))
		b.WriteString("\n")
	}

	return styleDetailPanel.Width(width).Render(b.String())
}

func detailLine(d models.DetailEntry) string {
	switch d.Action {
	case models.ActionDeleted, models.ActionNone:
		return fmt.Sprintf("%s %s: %s", strings.ToUpper(string(d.Action)), d.DocumentID, d.Details)
	default:
		return fmt.Sprintf("%s %s.%s: %v → %v", string(d.Action), d.DocumentID, d.Field, d.OldValue, d.NewValue)
	}
}
