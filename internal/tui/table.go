package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/ndmitriev/docsweep/internal/models"
)

var tableColumns = []table.Column{
	{Title: "Time", Width: 19},
	{Title: "Entity", Width: 14},
	{Title: "Docs", Width: 6},
	{Title: "Found", Width: 7},
	{Title: "Fixed", Width: 7},
	{Title: "Del", Width: 5},
	{Title: "Result", Width: 14},
}

// buildRows converts scan reports to table rows.
func buildRows(reports []models.Report) []table.Row {
	rows := make([]table.Row, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, table.Row{
			report.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(report.EntityType, tableColumns[1].Width),
			fmt.Sprintf("%d", report.TotalDocuments),
			fmt.Sprintf("%d", report.InconsistenciesFound),
			fmt.Sprintf("%d", report.RepairsApplied),
			fmt.Sprintf("%d", report.DocumentsDeleted),
			verdictLabel(report.Resolved()),
		})
	}
	return rows
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
