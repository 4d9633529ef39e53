package tui

import (
	"fmt"
	"strings"

	"github.com/ndmitriev/docsweep/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from status and report data.
func renderHeader(statuses []models.Status, reports []models.Report, width int) string {
	var b strings.Builder

	// Line 1: title and overall verdict
	consistent := 0
	for _, st := range statuses {
		if st.IsConsistent {
			consistent++
		}
	}
	allConsistent := len(statuses) > 0 && consistent == len(statuses)
	verdict := verdictStyle(allConsistent).Render(verdictLabel(allConsistent))
	b.WriteString(fmt.Sprintf("Docsweep  Overall: %s", verdict))
	if len(statuses) > 0 {
		b.WriteString(fmt.Sprintf("  (%d/%d entity types consistent)", consistent, len(statuses)))
	}
	b.WriteString("\n")

	// Line 2: scan totals
	var found, repaired, deleted int
	for _, r := range reports {
		found += r.InconsistenciesFound
		repaired += r.RepairsApplied
		deleted += r.DocumentsDeleted
	}
	b.WriteString(fmt.Sprintf("Scans: %d  Found: %d  Repaired: %d  Deleted: %d",
		len(reports), found, repaired, deleted))
	b.WriteString("\n")

	// Line 3: per-entity verdicts
	entParts := make([]string, 0, len(statuses))
	for _, st := range statuses {
		label := fmt.Sprintf("%s:%s", st.EntityType, shortVerdict(st.IsConsistent))
		entParts = append(entParts, verdictStyle(st.IsConsistent).Render(label))
	}
	if len(entParts) > 0 {
		b.WriteString(strings.Join(entParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: sparkline of inconsistency counts, oldest to newest
	if len(reports) > 1 {
		values := make([]int, 0, len(reports))
		for i := len(reports) - 1; i >= 0; i-- {
			values = append(values, reports[i].InconsistenciesFound)
		}
		b.WriteString("Trend: ")
		b.WriteString(renderSparkline(values))
	}

	return styleHeader.Width(width).Render(b.String())
}

func verdictLabel(consistent bool) string {
	if consistent {
		return "CONSISTENT"
	}
	return "INCONSISTENT"
}

func shortVerdict(consistent bool) string {
	if consistent {
		return "ok"
	}
	return "BAD"
}

// renderSparkline converts an int slice to a unicode sparkline string.
func renderSparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		if max == min {
			b.WriteRune(bars[len(bars)/2])
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(bars)-1))
			b.WriteRune(bars[idx])
		}
	}

	b.WriteString(fmt.Sprintf(" [%d→%d]", values[0], values[len(values)-1]))
	return b.String()
}
